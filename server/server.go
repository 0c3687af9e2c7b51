package server

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/chordtext/audio"
	"github.com/jsphweid/chordtext/model"
	"github.com/jsphweid/chordtext/session"
	"github.com/jsphweid/chordtext/sheet"
	json "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type entry struct {
	session *session.Session
	clock   *clientClock
	cancel  context.CancelFunc
	done    chan struct{}
}

// Server keeps editing sessions in memory and exposes them over HTTP.
// The audio batch a request produces is returned in its response. Each
// session ticks itself every frame while its player can still change.
type Server struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	defaults session.Options
	origins  []string
	frame    time.Duration
	wall     func() time.Time
	base     context.Context
	stop     context.CancelFunc
	log      *zap.Logger
	metrics  *metrics
}

func New(defaults session.Options, origins []string, frame time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	base, stop := context.WithCancel(context.Background())
	return &Server{
		sessions: make(map[string]*entry),
		defaults: defaults,
		origins:  origins,
		frame:    frame,
		wall:     time.Now,
		base:     base,
		stop:     stop,
		log:      log,
		metrics:  initMetrics(),
	}
}

// Close stops the tick loops of every session.
func (s *Server) Close() {
	s.stop()
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/parse", s.instrument("parse", s.handleParse)).Methods("POST")
	router.HandleFunc("/sessions", s.instrument("create", s.handleCreate)).Methods("POST")
	router.HandleFunc("/sessions/{id}", s.instrument("delete", s.handleDelete)).Methods("DELETE")
	router.HandleFunc("/sessions/{id}/text", s.instrument("text", s.handleText)).Methods("PUT")
	router.HandleFunc("/sessions/{id}/sheet", s.instrument("sheet", s.handleSheet)).Methods("GET")
	router.HandleFunc("/sessions/{id}/trigger", s.instrument("trigger", s.handleTrigger)).Methods("POST")
	router.HandleFunc("/sessions/{id}/stop", s.instrument("stop", s.handleStop)).Methods("POST")
	router.HandleFunc("/sessions/{id}/key", s.instrument("key", s.handleKey)).Methods("POST")
	router.HandleFunc("/sessions/{id}/toggle", s.instrument("toggle", s.handleToggle)).Methods("POST")
	router.HandleFunc("/sessions/{id}/tick", s.instrument("tick", s.handleTick)).Methods("POST")
	router.HandleFunc("/sessions/{id}/status", s.instrument("status", s.handleStatus)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(router)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		h(rec, r)
		s.metrics.Requests.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		s.log.Debug("request",
			zap.String("route", route),
			zap.Int("code", rec.code),
			zap.Duration("took", time.Since(start)),
		)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, model.ErrorResponse{Error: err.Error()})
}

func readBody(r *http.Request, v any) error {
	reqBody, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(err, "could not read request body")
	}
	if len(reqBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(reqBody, v); err != nil {
		return errors.Wrap(err, "could not unmarshal request body")
	}
	return nil
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	id := mux.Vars(r)["id"]
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, errors.Errorf("no session %s", id))
	}
	return e, ok
}

func parseResult(sh *sheet.Sheet) model.ParseResult {
	res := model.ParseResult{Words: []model.WordResult{}, Chords: sh.Chords()}
	for _, w := range sh.Words() {
		res.Words = append(res.Words, wordResult(w))
	}
	return res
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var input model.ParseRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res := parseResult(sheet.Parse(input.Text))
	s.metrics.ParsedChords.Add(float64(len(res.Chords)))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) options(input model.SessionRequestBody) (session.Options, error) {
	opts := s.defaults
	if input.Mode != "" {
		mode, err := session.ParseMode(input.Mode)
		if err != nil {
			return opts, err
		}
		opts.Mode = mode
	}
	if input.BPM < 0 {
		return opts, errors.Errorf("bpm must be positive, got %v", input.BPM)
	}
	if input.BPM > 0 {
		opts.BPM = input.BPM
	}
	if input.StrumInterval > 0 {
		opts.StrumInterval = input.StrumInterval
	}
	if input.LowestNote > 0 {
		opts.LowestNote = input.LowestNote
	}
	return opts, nil
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input model.SessionRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts, err := s.options(input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess := session.New(recordCounter{m: s.metrics}, opts, s.log)
	sess.SetText(input.Text)
	sh := sess.Flush()

	ctx, cancel := context.WithCancel(s.base)
	e := &entry{session: sess, clock: newClientClock(s.wall), cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(e.done)
		err := sess.Run(ctx, e.clock.Now, s.frame)
		s.log.Debug("tick loop stopped", zap.String("session", sess.ID), zap.Error(err))
	}()

	s.mu.Lock()
	s.sessions[sess.ID] = e
	s.mu.Unlock()
	s.metrics.OpenSessions.Inc()

	writeJSON(w, http.StatusCreated, model.SessionResult{
		ID:     sess.ID,
		Parse:  parseResult(sh),
		Status: sess.Status(),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	e, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, errors.Errorf("no session %s", id))
		return
	}
	e.cancel()
	s.metrics.OpenSessions.Dec()
	w.WriteHeader(http.StatusNoContent)
}

// handleText stores the text and lets the session re-parse it once edits
// pause. Pass ?flush=true to parse before responding.
func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var input model.TextRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e.session.SetText(input.Text)
	if r.URL.Query().Get("flush") != "true" {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, parseResult(e.session.Flush()))
}

func wordResult(w sheet.Word) model.WordResult {
	return model.WordResult{
		Text:  w.Text,
		Start: w.Start,
		End:   w.End,
		Line:  w.Line,
		Kind:  w.Kind.String(),
		ID:    w.ID,
		Chord: w.Chord,
	}
}

// handleSheet returns the parsed sheet, or with ?offset=N only the word
// under that byte offset.
func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sh := e.session.Sheet()
	raw := r.URL.Query().Get("offset")
	if raw == "" {
		writeJSON(w, http.StatusOK, parseResult(sh))
		return
	}
	offset, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "bad offset"))
		return
	}
	word, ok := sh.WordAt(offset)
	if !ok {
		writeError(w, http.StatusNotFound, errors.Errorf("no word at offset %d", offset))
		return
	}
	writeJSON(w, http.StatusOK, wordResult(word))
}

func respondBatch(w http.ResponseWriter, batch []audio.Record) {
	if batch == nil {
		batch = []audio.Record{}
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var input model.TriggerRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e.clock.observe(input.Now)
	batch, err := e.session.Trigger(input.ID, input.Now)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, session.ErrUnknownChord) {
			code = http.StatusNotFound
		}
		writeError(w, code, err)
		return
	}
	s.metrics.Triggers.WithLabelValues(string(e.session.Options().Mode)).Inc()
	respondBatch(w, batch)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var input model.TimeRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e.clock.observe(input.Now)
	batch, err := e.session.Stop(input.Now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	respondBatch(w, batch)
}

// handleKey previews one keyboard key over whatever is playing.
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var input model.KeyRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e.clock.observe(input.Now)
	batch, err := e.session.PlayKey(input.Key, input.Now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	respondBatch(w, batch)
}

// handleToggle adds or removes a keyboard key from a chord and returns the
// rewritten text.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var input model.ToggleRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	text, err := e.session.ToggleKey(input.ID, input.Key)
	switch {
	case errors.Is(err, session.ErrUnknownChord):
		writeError(w, http.StatusNotFound, err)
		return
	case errors.Is(err, session.ErrNoCode):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ToggleResult{Text: text, Parse: parseResult(e.session.Sheet())})
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var input model.TimeRequestBody
	if err := readBody(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	e.clock.observe(input.Now)
	finished := e.session.Tick(input.Now)
	writeJSON(w, http.StatusOK, model.TickResult{Finished: finished, Status: e.session.Status()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, e.session.Status())
}
