package daemon

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/footprint/internal/model"
	"github.com/theirongolddev/footprint/internal/pipeline"
	"github.com/theirongolddev/footprint/internal/source"
	"github.com/theirongolddev/footprint/internal/store"
)

const foodPayload = `{"statement_id": "s1", "summary": {"Food": {"Groceries": {"amount": 100, "emission": 10}}}}`

const travelPayload = `{"statement_id": "s2", "summary": {
  "Travel": {"Fuel": {"amount": 60, "emission": 30}, "Bus": {"amount": 5, "emission": 1}},
  "Food": {"Groceries": {"amount": 100, "emission": 10}}
}}`

type recordingPublisher struct {
	mu     sync.Mutex
	events []int64
}

func (p *recordingPublisher) PublishSnapshot(_ context.Context, id int64, _, _ string, _ model.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, id)
	return nil
}

func mustParse(t *testing.T, body string) model.Payload {
	t.Helper()
	p, err := source.ParsePayload(strings.NewReader(body))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	return p
}

func TestDiffSnapshots(t *testing.T) {
	prev := model.Snapshot{TotalAmount: 100, Actual: 10, AfterActual: 8.5, OffsetKg: 8.5, CreditCostUSD: 0.085, Trees: 1}
	curr := model.Snapshot{TotalAmount: 165, Actual: 41, AfterActual: 27.35, OffsetKg: 27.35, CreditCostUSD: 0.2735, Trees: 2, OverBudget: 1}

	delta := diffSnapshots(prev, curr)
	if math.Abs(delta.TotalAmount-65) > 1e-9 {
		t.Fatalf("TotalAmount delta = %.2f, want 65", delta.TotalAmount)
	}
	if math.Abs(delta.Actual-31) > 1e-9 {
		t.Fatalf("Actual delta = %.2f, want 31", delta.Actual)
	}
	if delta.Trees != 1 || delta.OverBudget != 1 {
		t.Fatalf("Trees/OverBudget delta = %d/%d, want 1/1", delta.Trees, delta.OverBudget)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should produce a zero delta")
	}
}

func TestBufferEventRingBuffer(t *testing.T) {
	s := New(Config{
		DataDir:      ".",
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.mu.Lock()
	s.bufferEvent(Event{ID: 1})
	s.bufferEvent(Event{ID: 2})
	s.bufferEvent(Event{ID: 3})
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestConcurrentDeliveriesStayInIDOrder(t *testing.T) {
	const n = 50
	s := New(Config{EventsBuffer: n})
	ch := make(chan Event, n)
	s.addSubscriber(ch)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Deliver(ctx, model.Payload{}, SourceHTTP, "")
		}()
	}
	wg.Wait()

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()
	if len(events) != n {
		t.Fatalf("buffered %d events, want %d", len(events), n)
	}
	for i, ev := range events {
		if ev.ID != int64(i+1) {
			t.Fatalf("buffered event %d has ID %d, want %d", i, ev.ID, i+1)
		}
	}

	for i := 1; i <= n; i++ {
		ev := <-ch
		if ev.ID != int64(i) {
			t.Fatalf("subscriber got ID %d at position %d, want %d", ev.ID, i, i)
		}
	}
}

func TestDeliverReplacesState(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(Config{Publisher: pub})
	ctx := context.Background()

	first := s.Deliver(ctx, mustParse(t, foodPayload), SourceHTTP, "")
	if first.Type != EventSnapshot {
		t.Fatalf("first event type = %s, want snapshot", first.Type)
	}

	second := s.Deliver(ctx, mustParse(t, travelPayload), SourceHTTP, "")
	if second.Type != EventRecomputed || !second.Changed {
		t.Fatalf("second event = %+v, want changed recompute", second)
	}

	state, ok := s.State()
	if !ok {
		t.Fatal("no state after deliveries")
	}
	if state.StatementID != "s2" || len(state.Categories) != 2 {
		t.Fatalf("state = %s with %d categories, want s2 with 2", state.StatementID, len(state.Categories))
	}

	third := s.Deliver(ctx, mustParse(t, `{}`), SourceHTTP, "")
	state, _ = s.State()
	if len(state.Categories) != 0 || len(state.Subcategories) != 0 {
		t.Fatalf("empty delivery kept old data: %+v", state)
	}
	if third.Snapshot.StatementID != "" {
		t.Fatalf("StatementID = %q, want empty", third.Snapshot.StatementID)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.events) != 3 || pub.events[2] != 3 {
		t.Fatalf("published = %v, want [1 2 3]", pub.events)
	}
}

func TestPollOnce_RecomputesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.json")
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	write := func(body string, at time.Time) {
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, at, at); err != nil {
			t.Fatal(err)
		}
	}

	write(foodPayload, base)
	s := New(Config{DataDir: dir})
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx)
	st := s.snapshotStatus()
	if st.RecomputeCount != 1 || st.PollCount != 2 {
		t.Fatalf("after unchanged poll: recomputes=%d polls=%d, want 1 and 2", st.RecomputeCount, st.PollCount)
	}
	if st.PayloadPath != path {
		t.Fatalf("PayloadPath = %q, want %q", st.PayloadPath, path)
	}

	write(travelPayload, base.Add(time.Minute))
	s.pollOnce(ctx)
	st = s.snapshotStatus()
	if st.RecomputeCount != 2 {
		t.Fatalf("RecomputeCount = %d, want 2", st.RecomputeCount)
	}
	if st.Summary.StatementID != "s2" {
		t.Fatalf("Summary.StatementID = %q, want s2", st.Summary.StatementID)
	}
}

func TestPollOnce_SavesFileTimeToHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "s.json")
	mtime := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := os.WriteFile(path, []byte(foodPayload), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	history, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer func() { _ = history.Close() }()

	s := New(Config{DataDir: dir, History: history})
	s.pollOnce(context.Background())

	snaps, err := history.LoadSnapshots()
	if err != nil {
		t.Fatalf("LoadSnapshots: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("saved %d snapshots, want 1", len(snaps))
	}
	if !snaps[0].AnalyzedAt.Equal(mtime) {
		t.Errorf("AnalyzedAt = %v, want file mtime %v", snaps[0].AnalyzedAt, mtime)
	}

	tracked, err := history.GetTrackedFiles()
	if err != nil {
		t.Fatalf("GetTrackedFiles: %v", err)
	}
	if got, want := tracked[path].Fingerprint, (pipeline.Options{}).Fingerprint(); got != want {
		t.Errorf("Fingerprint = %q, want %q", got, want)
	}
}

func TestPollOnce_MissingDir(t *testing.T) {
	s := New(Config{DataDir: filepath.Join(t.TempDir(), "nope")})
	s.pollOnce(context.Background())

	st := s.snapshotStatus()
	if st.LastError == "" || st.HasState {
		t.Fatalf("status = %+v, want error and no state", st)
	}
}

func TestHandlers(t *testing.T) {
	s := New(Config{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/derived")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET /v1/derived before payload = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/v1/payload", "application/json", strings.NewReader(travelPayload))
	if err != nil {
		t.Fatal(err)
	}
	var ev Event
	if err := json.NewDecoder(resp.Body).Decode(&ev); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || ev.Snapshot.StatementID != "s2" {
		t.Fatalf("POST /v1/payload = %d %+v", resp.StatusCode, ev)
	}

	resp, err = http.Get(srv.URL + "/v1/derived")
	if err != nil {
		t.Fatal(err)
	}
	var state model.DerivedState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if len(state.Projection.Categories) != 2 || state.Projection.Categories[0].Name != "Travel" {
		t.Fatalf("projection = %+v, want Travel first", state.Projection.Categories)
	}

	resp, err = http.Get(srv.URL + "/v1/subcategories/top?n=1")
	if err != nil {
		t.Fatal(err)
	}
	var top []model.AggregatedSubcategory
	if err := json.NewDecoder(resp.Body).Decode(&top); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if len(top) != 1 || top[0].Name != "Groceries" {
		t.Fatalf("top = %+v, want [Groceries]", top)
	}

	resp, err = http.Get(srv.URL + "/v1/subcategories/top?n=zero")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad n status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/payload")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET /v1/payload = %d, want 405", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/v1/payload", "application/json", strings.NewReader(`{"summary":`))
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad payload status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/events")
	if err != nil {
		t.Fatal(err)
	}
	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if len(events) != 1 || events[0].Source != SourceHTTP {
		t.Fatalf("events = %+v, want one http event", events)
	}

	resp, err = http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if !st.HasState || st.RecomputeCount != 1 {
		t.Fatalf("status = %+v", st)
	}
}
