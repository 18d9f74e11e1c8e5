// Package daemon keeps a summary snapshot warm and serves it over a local HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/cardperks/internal/summary"

	"github.com/rs/zerolog/log"
)

// LoadFunc produces a fresh report. It is called once per poll.
type LoadFunc func(ctx context.Context) (summary.Report, error)

// Config controls the daemon runtime behavior.
type Config struct {
	DataDir      string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Load         LoadFunc
}

// CardSnapshot is the benefit value of one card in its current year.
type CardSnapshot struct {
	CardKey   string  `json:"card_key"`
	Name      string  `json:"name"`
	Year      int     `json:"year"`
	Posted    float64 `json:"posted"`
	Potential float64 `json:"potential"`
	NetPosted float64 `json:"net_posted"`
}

// Snapshot is a compact summary for status and event payloads.
type Snapshot struct {
	At                time.Time      `json:"at"`
	NightsPosted      int            `json:"nights_posted"`
	NightsTotal       int            `json:"nights_total"`
	CCNightsPending   int            `json:"cc_nights_pending"`
	BenefitsPosted    float64        `json:"benefits_posted"`
	BenefitsPotential float64        `json:"benefits_potential"`
	Cards             []CardSnapshot `json:"cards"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	NightsPosted    int     `json:"nights_posted"`
	NightsTotal     int     `json:"nights_total"`
	CCNightsPending int     `json:"cc_nights_pending"`
	BenefitsPosted  float64 `json:"benefits_posted"`
}

func (d Delta) isZero() bool {
	return d.NightsPosted == 0 &&
		d.NightsTotal == 0 &&
		d.CCNightsPending == 0 &&
		math.Abs(d.BenefitsPosted) < 0.005
}

// Event is emitted whenever the snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DataDir         string    `json:"data_dir"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service polls Load on an interval and serves the latest result.
type Service struct {
	cfg     Config
	metrics *metrics
	bus     *broker

	mu         sync.RWMutex
	startedAt  time.Time
	lastPollAt time.Time
	pollCount  int64
	lastError  string
	snapshot   Snapshot
	latest     *summary.Report // nil until the first successful poll
}

// New returns a service for cfg, filling in defaults for an interval under
// two seconds, an empty address and a non-positive event buffer.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8797"
	}
	return &Service{
		cfg:       cfg,
		metrics:   newMetrics(),
		bus:       newBroker(cfg.EventsBuffer),
		startedAt: time.Now(),
	}
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
	log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("daemon listening")

	// Seed initial snapshot so status is useful immediately.
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

func (s *Service) pollOnce(ctx context.Context) {
	if s.cfg.Load == nil {
		s.recordError(errors.New("no loader configured"))
		return
	}
	start := time.Now()
	report, err := s.cfg.Load(ctx)
	if err != nil {
		s.recordError(err)
		log.Error().Err(err).Msg("daemon poll failed")
		return
	}

	now := time.Now()
	snap := snapshotFromReport(report, now)

	s.mu.Lock()
	first, prev := s.latest == nil, s.snapshot
	s.latest = &report
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	s.mu.Unlock()

	s.metrics.observe(snap, time.Since(start))

	var ev Event
	switch delta := diffSnapshots(prev, snap); {
	case first:
		ev = s.bus.emit("snapshot", now, snap, Delta{})
	case !delta.isZero():
		ev = s.bus.emit("summary_delta", now, snap, delta)
	default:
		return
	}
	log.Debug().Str("type", ev.Type).Int64("id", ev.ID).Int("nights_total", snap.NightsTotal).Msg("daemon event")
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.lastPollAt = time.Now()
	s.pollCount++
	s.mu.Unlock()
	s.metrics.pollErrors.Inc()
}

func snapshotFromReport(r summary.Report, at time.Time) Snapshot {
	snap := Snapshot{
		At:              at,
		NightsPosted:    r.Nights.NightsPosted,
		NightsTotal:     r.Nights.NightsTotal,
		CCNightsPending: r.Nights.CCNightsPending,
		Cards:           make([]CardSnapshot, 0, len(r.Cards)),
	}
	for _, c := range r.Cards {
		snap.BenefitsPosted += c.Summary.TotalPosted
		snap.BenefitsPotential += c.Summary.TotalPotential
		snap.Cards = append(snap.Cards, CardSnapshot{
			CardKey:   c.CardKey,
			Name:      c.Name,
			Year:      c.Year,
			Posted:    c.Summary.TotalPosted,
			Potential: c.Summary.TotalPotential,
			NetPosted: c.Summary.NetValuePosted,
		})
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		NightsPosted:    curr.NightsPosted - prev.NightsPosted,
		NightsTotal:     curr.NightsTotal - prev.NightsTotal,
		CCNightsPending: curr.CCNightsPending - prev.CCNightsPending,
		BenefitsPosted:  curr.BenefitsPosted - prev.BenefitsPosted,
	}
}

// Status returns the current runtime status.
func (s *Service) Status() Status {
	events, subs := s.bus.counts()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DataDir:         s.cfg.DataDir,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      events,
		SubscriberCount: subs,
	}
}

// Report returns the latest report, or false before the first successful
// poll.
func (s *Service) Report() (summary.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return summary.Report{}, false
	}
	return *s.latest, true
}
