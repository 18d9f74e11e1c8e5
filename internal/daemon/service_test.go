package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/cardperks/internal/model"
	"github.com/theirongolddev/cardperks/internal/summary"
)

func testReport(posted, total int, benefit float64) summary.Report {
	return summary.Report{
		Nights: model.NightsSummary{NightsPosted: posted, NightsTotal: total, CCNightsPending: total - posted},
		Cards: []summary.CardReport{{
			CardKey: "test_card_2025",
			Name:    "Test Card",
			Year:    2025,
			Fee:     695,
			Summary: model.YearSummary{TotalPosted: benefit, TotalPotential: 1000, NetValuePosted: benefit - 695},
		}},
	}
}

// sequence returns a loader that yields reports in order, repeating the last.
func sequence(reports ...summary.Report) LoadFunc {
	i := 0
	return func(context.Context) (summary.Report, error) {
		r := reports[min(i, len(reports)-1)]
		i++
		return r, nil
	}
}

func TestDiffSnapshots(t *testing.T) {
	prev := snapshotFromReport(testReport(10, 12, 100), time.Now())
	curr := snapshotFromReport(testReport(14, 20, 350), time.Now())

	delta := diffSnapshots(prev, curr)
	if delta.NightsPosted != 4 {
		t.Fatalf("NightsPosted delta = %d, want 4", delta.NightsPosted)
	}
	if delta.NightsTotal != 8 {
		t.Fatalf("NightsTotal delta = %d, want 8", delta.NightsTotal)
	}
	if delta.CCNightsPending != 4 {
		t.Fatalf("CCNightsPending delta = %d, want 4", delta.CCNightsPending)
	}
	if delta.BenefitsPosted != 250 {
		t.Fatalf("BenefitsPosted delta = %.2f, want 250", delta.BenefitsPosted)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should diff to zero")
	}
}

func TestSnapshotFromReport(t *testing.T) {
	r := testReport(5, 9, 200)
	r.Cards = append(r.Cards, summary.CardReport{
		CardKey: "other_2025",
		Summary: model.YearSummary{TotalPosted: 50, TotalPotential: 300},
	})
	snap := snapshotFromReport(r, time.Now())

	if snap.BenefitsPosted != 250 || snap.BenefitsPotential != 1300 {
		t.Fatalf("benefits = %.0f/%.0f, want 250/1300", snap.BenefitsPosted, snap.BenefitsPotential)
	}
	if len(snap.Cards) != 2 || snap.Cards[0].NetPosted != -495 {
		t.Fatalf("cards = %+v", snap.Cards)
	}
}

func TestBrokerRing(t *testing.T) {
	b := newBroker(2)
	now := time.Now()
	for range 3 {
		b.emit("summary_delta", now, Snapshot{}, Delta{})
	}

	evs := b.recent()
	if len(evs) != 2 {
		t.Fatalf("events len = %d, want 2", len(evs))
	}
	if evs[0].ID != 2 || evs[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", evs[0].ID, evs[1].ID)
	}
}

func TestBrokerSubscribe(t *testing.T) {
	b := newBroker(10)
	ch, unsubscribe := b.subscribe(1)
	if _, subs := b.counts(); subs != 1 {
		t.Fatalf("subscribers = %d, want 1", subs)
	}

	b.emit("snapshot", time.Now(), Snapshot{NightsPosted: 4}, Delta{})
	// The buffer is full, so this one is dropped for the subscriber.
	b.emit("summary_delta", time.Now(), Snapshot{NightsPosted: 5}, Delta{NightsPosted: 1})

	got := <-ch
	if got.Type != "snapshot" || got.Snapshot.NightsPosted != 4 {
		t.Fatalf("received %+v", got)
	}
	select {
	case ev := <-ch:
		t.Fatalf("unexpected second event %+v", ev)
	default:
	}

	unsubscribe()
	if events, subs := b.counts(); subs != 0 || events != 2 {
		t.Fatalf("counts = %d events, %d subscribers", events, subs)
	}
}

func TestPollOnceEvents(t *testing.T) {
	s := New(Config{Load: sequence(
		testReport(5, 9, 100),
		testReport(5, 9, 100),
		testReport(7, 9, 100),
	)})
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx)
	s.pollOnce(ctx)

	st := s.Status()
	if st.PollCount != 3 {
		t.Fatalf("PollCount = %d, want 3", st.PollCount)
	}
	if st.EventCount != 2 {
		t.Fatalf("EventCount = %d, want 2 (snapshot + one delta)", st.EventCount)
	}
	if st.Summary.NightsPosted != 7 {
		t.Fatalf("NightsPosted = %d, want 7", st.Summary.NightsPosted)
	}

	evs := s.bus.recent()
	if evs[0].Type != "snapshot" || evs[1].Type != "summary_delta" {
		t.Fatalf("event types = %q, %q", evs[0].Type, evs[1].Type)
	}
	if evs[1].Delta.NightsPosted != 2 || evs[1].Delta.CCNightsPending != -2 {
		t.Fatalf("delta = %+v", evs[1].Delta)
	}
}

func TestPollOnceError(t *testing.T) {
	s := New(Config{Load: func(context.Context) (summary.Report, error) {
		return summary.Report{}, errors.New("benefits file unreadable")
	}})
	s.pollOnce(context.Background())

	st := s.Status()
	if st.LastError != "benefits file unreadable" {
		t.Fatalf("LastError = %q", st.LastError)
	}
	if st.PollCount != 1 || st.EventCount != 0 {
		t.Fatalf("PollCount=%d EventCount=%d, want 1/0", st.PollCount, st.EventCount)
	}
}

func TestHandlers(t *testing.T) {
	s := New(Config{DataDir: "/data", Load: sequence(testReport(5, 9, 100))})
	h := s.Handler()

	get := func(t *testing.T, path string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("healthz", func(t *testing.T) {
		rec := get(t, "/healthz")
		if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
			t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("report before first poll", func(t *testing.T) {
		if rec := get(t, "/v1/report"); rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("report status = %d, want 503", rec.Code)
		}
	})

	s.pollOnce(context.Background())

	t.Run("status", func(t *testing.T) {
		rec := get(t, "/v1/status")
		var st Status
		if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
			t.Fatal(err)
		}
		if st.DataDir != "/data" || st.Summary.NightsTotal != 9 || st.PollCount != 1 {
			t.Fatalf("status = %+v", st)
		}
	})

	t.Run("report", func(t *testing.T) {
		rec := get(t, "/v1/report")
		var r summary.Report
		if err := json.Unmarshal(rec.Body.Bytes(), &r); err != nil {
			t.Fatal(err)
		}
		if len(r.Cards) != 1 || r.Cards[0].CardKey != "test_card_2025" {
			t.Fatalf("report cards = %+v", r.Cards)
		}
	})

	t.Run("events", func(t *testing.T) {
		rec := get(t, "/v1/events")
		var evs []Event
		if err := json.Unmarshal(rec.Body.Bytes(), &evs); err != nil {
			t.Fatal(err)
		}
		if len(evs) != 1 || evs[0].Type != "snapshot" {
			t.Fatalf("events = %+v", evs)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		body := get(t, "/metrics").Body.String()
		for _, want := range []string{
			`cardperks_elite_nights{state="posted"} 5`,
			`cardperks_elite_nights{state="total"} 9`,
			`cardperks_benefits_posted_dollars{card="test_card_2025"} 100`,
			`cardperks_daemon_polls_total 1`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("metrics missing %q", want)
			}
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		if rec := get(t, "/v1/nope"); rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	})
}

func TestStreamSendsSnapshotThenEvents(t *testing.T) {
	s := New(Config{Load: sequence(testReport(5, 9, 100), testReport(6, 9, 100))})
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	first := readSSE(t, r)
	if first.Type != "snapshot" || first.Snapshot.NightsPosted != 5 {
		t.Fatalf("first event = %+v", first)
	}

	// Wait for the subscriber to register before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for s.Status().SubscriberCount == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	s.pollOnce(context.Background())

	next := readSSE(t, r)
	if next.Type != "summary_delta" || next.Delta.NightsPosted != 1 {
		t.Fatalf("second event = %+v", next)
	}
}

func readSSE(t *testing.T, r *bufio.Reader) Event {
	t.Helper()
	var data string
	for {
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			t.Fatalf("reading stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
		}
		if line == "" && data != "" {
			break
		}
		if errors.Is(err, io.EOF) {
			t.Fatal("stream closed before event")
		}
	}
	var ev Event
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	return ev
}
