package session

import (
	"io"
	"sync"

	"github.com/jsphweid/chordtext/audio"
	"github.com/pkg/errors"
)

// WriterSink writes each batch as one JSON line.
type WriterSink struct {
	W io.Writer
}

func (w WriterSink) Send(batch []audio.Record) error {
	b, err := audio.Marshal(batch)
	if err != nil {
		return err
	}
	if _, err := w.W.Write(append(b, '\n')); err != nil {
		return errors.Wrap(err, "could not write audio batch")
	}
	return nil
}

// Collector keeps batches until they are drained.
type Collector struct {
	mu      sync.Mutex
	batches [][]audio.Record
}

func (c *Collector) Send(batch []audio.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, batch)
	return nil
}

func (c *Collector) Drain() [][]audio.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := c.batches
	c.batches = nil
	return res
}
