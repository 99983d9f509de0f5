package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/thunderoad/setlistd/src/setlist"
)

var (
	songsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "setlistd_songs_total",
		Help: "Number of songs in the catalog.",
	})
	showsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "setlistd_shows_total",
		Help: "Number of shows in the catalog.",
	})
	performancesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "setlistd_performances_total",
		Help: "Number of recorded performances.",
	})
	recomputeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "setlistd_stats_recompute_total",
		Help: "Number of global statistics recomputations.",
	})
	recomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "setlistd_stats_recompute_duration_seconds",
		Help:    "Duration of global statistics recomputations.",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveRecompute records one completed global statistics recomputation.
func ObserveRecompute(d time.Duration) {
	recomputeTotal.Inc()
	recomputeDuration.Observe(d.Seconds())
}

// Service refreshes the catalog size gauges.
type Service struct {
	catalog setlist.Catalog
}

// NewService creates a new metrics service.
func NewService(catalog setlist.Catalog) *Service {
	return &Service{catalog: catalog}
}

// Refresh updates the catalog size gauges from the database.
func (s *Service) Refresh(ctx context.Context) error {
	songs, err := s.catalog.CountSongs(ctx)
	if err != nil {
		return err
	}
	shows, err := s.catalog.CountShows(ctx)
	if err != nil {
		return err
	}
	performances, err := s.catalog.CountPerformances(ctx)
	if err != nil {
		return err
	}

	songsTotal.Set(float64(songs))
	showsTotal.Set(float64(shows))
	performancesTotal.Set(float64(performances))
	slog.Debug("Catalog gauges refreshed", "songs", songs, "shows", shows, "performances", performances)
	return nil
}
