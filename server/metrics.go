package server

import (
	"sync"

	"github.com/jsphweid/chordtext/audio"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	Requests     *prometheus.CounterVec
	Triggers     *prometheus.CounterVec
	ParsedChords prometheus.Counter
	AudioRecords *prometheus.CounterVec
	OpenSessions prometheus.Gauge
}

var (
	m        *metrics
	initOnce sync.Once
)

// initMetrics registers the collectors with the default registry once per
// process.
func initMetrics() *metrics {
	initOnce.Do(func() {
		m = &metrics{
			Requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chordtext_http_requests_total",
					Help: "HTTP requests by route and status code",
				},
				[]string{"route", "code"},
			),
			Triggers: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chordtext_triggers_total",
					Help: "Chords triggered by playback mode",
				},
				[]string{"mode"},
			),
			ParsedChords: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "chordtext_parsed_chords_total",
					Help: "Chord words found by parse requests",
				},
			),
			AudioRecords: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chordtext_audio_records_total",
					Help: "Audio records sent to clients by type",
				},
				[]string{"type"},
			),
			OpenSessions: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "chordtext_sessions_open",
					Help: "Sessions currently held by the server",
				},
			),
		}
	})
	return m
}

// recordCounter is the sink of server sessions. Batches reach clients in
// the responses, so it only counts them.
type recordCounter struct {
	m *metrics
}

func (c recordCounter) Send(batch []audio.Record) error {
	for _, rec := range batch {
		c.m.AudioRecords.WithLabelValues(rec.Kind()).Inc()
	}
	return nil
}
