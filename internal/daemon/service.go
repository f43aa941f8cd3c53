// Package daemon provides the long-running payload watcher and its HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/theirongolddev/footprint/internal/config"
	"github.com/theirongolddev/footprint/internal/log"
	"github.com/theirongolddev/footprint/internal/model"
	"github.com/theirongolddev/footprint/internal/pipeline"
	"github.com/theirongolddev/footprint/internal/source"
	"github.com/theirongolddev/footprint/internal/store"
)

// Event types.
const (
	EventSnapshot   = "snapshot"
	EventRecomputed = "recomputed"
)

// Delivery sources.
const (
	SourceFile = "file"
	SourceHTTP = "http"
)

const maxPostBytes = 16 << 20

// Publisher forwards events to an external broker.
type Publisher interface {
	PublishSnapshot(ctx context.Context, eventID int64, eventType, source string, snap model.Snapshot) error
}

// Config controls the daemon runtime behavior.
type Config struct {
	// PayloadPath pins one payload file. When empty the newest payload in
	// DataDir is watched.
	PayloadPath      string
	DataDir          string
	Interval         time.Duration
	Addr             string
	EventsBuffer     int
	TopSubcategories int
	Options          pipeline.Options

	Publisher Publisher    // optional
	History   *store.Cache // optional
	Logger    *log.Logger
}

// Delta captures the change between two consecutive snapshots.
type Delta struct {
	TotalAmount   float64 `json:"total_amount"`
	Actual        float64 `json:"actual"`
	AfterActual   float64 `json:"after_actual"`
	OffsetKg      float64 `json:"offset_kg"`
	CreditCostUSD float64 `json:"credit_cost_usd"`
	Trees         int     `json:"trees"`
	OverBudget    int     `json:"over_budget"`
}

func (d Delta) isZero() bool {
	return d.TotalAmount == 0 &&
		d.Actual == 0 &&
		d.AfterActual == 0 &&
		d.OffsetKg == 0 &&
		d.CreditCostUSD == 0 &&
		d.Trees == 0 &&
		d.OverBudget == 0
}

// Event is emitted whenever the held derived state is replaced.
type Event struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Snapshot  model.Snapshot `json:"snapshot"`
	Delta     Delta          `json:"delta"`
	Changed   bool           `json:"changed"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time      `json:"started_at"`
	LastPollAt      time.Time      `json:"last_poll_at"`
	PollIntervalSec int            `json:"poll_interval_sec"`
	PollCount       int64          `json:"poll_count"`
	RecomputeCount  int64          `json:"recompute_count"`
	PayloadPath     string         `json:"payload_path,omitempty"`
	DataDir         string         `json:"data_dir,omitempty"`
	HasState        bool           `json:"has_state"`
	Summary         model.Snapshot `json:"summary"`
	LastError       string         `json:"last_error,omitempty"`
	EventCount      int            `json:"event_count"`
	SubscriberCount int            `json:"subscriber_count"`
}

// fileStamp identifies one version of a payload file.
type fileStamp struct {
	path    string
	mtimeNs int64
	size    int64
}

// Service holds the most recent derived state and serves it over HTTP.
type Service struct {
	cfg Config
	log *log.Logger

	mu             sync.RWMutex
	startedAt      time.Time
	lastPollAt     time.Time
	pollCount      int64
	recomputeCount int64
	lastError      string
	lastFile       fileStamp
	hasState       bool
	state          model.DerivedState
	snapshot       model.Snapshot
	nextEventID    int64
	events         []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8797"
	}
	if cfg.TopSubcategories < 1 {
		cfg.TopSubcategories = config.SubcategoryChartLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}

	return &Service{
		cfg:       cfg,
		log:       logger.WithComponent("daemon"),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/derived", s.handleDerived)
	mux.HandleFunc("/v1/subcategories/top", s.handleTopSubcategories)
	mux.HandleFunc("/v1/payload", s.handlePayload)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening", "addr", s.cfg.Addr, "interval", s.cfg.Interval.String())

	// Seed initial state so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// resolveTarget picks the payload file to watch.
func (s *Service) resolveTarget() (source.DiscoveredFile, error) {
	return pipeline.Resolve(s.cfg.PayloadPath, s.cfg.DataDir)
}

// pollOnce re-parses the watched file when its mtime or size changed.
func (s *Service) pollOnce(ctx context.Context) {
	now := time.Now()

	df, err := s.resolveTarget()
	if err != nil {
		s.recordPoll(now, err)
		s.log.Warn("poll failed", "error", err)
		return
	}

	stamp := fileStamp{path: df.Path, mtimeNs: df.ModTimeNs, size: df.SizeBytes}
	s.mu.RLock()
	unchanged := s.hasState && s.lastFile == stamp
	s.mu.RUnlock()
	if unchanged {
		s.recordPoll(now, nil)
		return
	}

	pr := source.ParseFile(df)
	if pr.Err != nil {
		s.recordPoll(now, pr.Err)
		s.log.Warn("payload parse failed", "path", df.Path, "error", pr.Err)
		return
	}

	s.mu.Lock()
	s.lastFile = stamp
	s.mu.Unlock()
	s.recordPoll(now, nil)

	ev := s.deliver(ctx, pr.Payload, SourceFile, df.Path, pipeline.AnalyzedAt(df))
	if s.cfg.History != nil {
		fi := store.FileInfo{
			MtimeNs:     df.ModTimeNs,
			SizeBytes:   df.SizeBytes,
			Fingerprint: s.cfg.Options.Fingerprint(),
		}
		if err := s.cfg.History.SaveSnapshot(ev.Snapshot, fi); err != nil {
			s.log.Warn("saving snapshot failed", "error", err)
		}
	}
}

func (s *Service) recordPoll(at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPollAt = at
	s.pollCount++
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
}

// Deliver recomputes derived state from p and replaces the held state
// wholesale. The resulting event is buffered, fanned out to subscribers and
// forwarded to the publisher.
func (s *Service) Deliver(ctx context.Context, p model.Payload, src, filePath string) Event {
	return s.deliver(ctx, p, src, filePath, time.Now())
}

// deliver stamps the snapshot with analyzedAt. Event IDs are assigned, buffered
// and fanned out under one lock so subscribers see them in ID order.
func (s *Service) deliver(ctx context.Context, p model.Payload, src, filePath string, analyzedAt time.Time) Event {
	derived := s.cfg.Options.Derive(p)
	snap := pipeline.Summarize(derived, filePath, analyzedAt)

	s.mu.Lock()
	prev, prevExists := s.snapshot, s.hasState

	s.hasState = true
	s.state = derived
	s.snapshot = snap
	s.recomputeCount++
	s.nextEventID++

	ev := Event{
		ID:        s.nextEventID,
		Type:      EventSnapshot,
		Source:    src,
		Timestamp: time.Now(),
		Snapshot:  snap,
	}
	if prevExists {
		ev.Type = EventRecomputed
		ev.Delta = diffSnapshots(prev, snap)
		ev.Changed = !ev.Delta.isZero() || prev.StatementID != snap.StatementID
	}
	s.bufferEvent(ev)
	s.mu.Unlock()

	s.log.Info("recomputed",
		"source", src,
		"statement_id", snap.StatementID,
		"categories", snap.Categories,
		"actual_kg", snap.Actual,
		"offset_kg", snap.OffsetKg)

	s.forward(ctx, ev)
	return ev
}

func diffSnapshots(prev, curr model.Snapshot) Delta {
	return Delta{
		TotalAmount:   curr.TotalAmount - prev.TotalAmount,
		Actual:        curr.Actual - prev.Actual,
		AfterActual:   curr.AfterActual - prev.AfterActual,
		OffsetKg:      curr.OffsetKg - prev.OffsetKg,
		CreditCostUSD: curr.CreditCostUSD - prev.CreditCostUSD,
		Trees:         curr.Trees - prev.Trees,
		OverBudget:    curr.OverBudget - prev.OverBudget,
	}
}

// bufferEvent appends ev to the ring and sends it to subscribers. The caller
// holds s.mu.
func (s *Service) bufferEvent(ev Event) {
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// forward hands ev to the external publisher, if any.
func (s *Service) forward(ctx context.Context, ev Event) {
	if s.cfg.Publisher == nil {
		return
	}
	if err := s.cfg.Publisher.PublishSnapshot(ctx, ev.ID, ev.Type, ev.Source, ev.Snapshot); err != nil {
		s.log.Error("publish failed", "event_id", ev.ID, "error", err)
	}
}

// State returns the held derived state and whether one exists.
func (s *Service) State() (model.DerivedState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.hasState
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		RecomputeCount:  s.recomputeCount,
		PayloadPath:     s.lastFile.path,
		DataDir:         s.cfg.DataDir,
		HasState:        s.hasState,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleDerived(w http.ResponseWriter, _ *http.Request) {
	state, ok := s.State()
	if !ok {
		writeError(w, http.StatusNotFound, "no payload delivered yet")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Service) handleTopSubcategories(w http.ResponseWriter, r *http.Request) {
	n := s.cfg.TopSubcategories
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = v
	}

	state, ok := s.State()
	if !ok {
		writeError(w, http.StatusNotFound, "no payload delivered yet")
		return
	}
	writeJSON(w, http.StatusOK, pipeline.TopSubcategories(state.Subcategories, n))
}

func (s *Service) handlePayload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}

	p, err := source.ParsePayload(io.LimitReader(r.Body, maxPostBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ev := s.Deliver(r.Context(), p, SourceHTTP, "")
	writeJSON(w, http.StatusOK, ev)
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
