package observability

import (
	"context"
	"errors"
	"strconv"

	"github.com/aretw0/fieldform/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by session events.
type Metrics struct {
	ScreenOpens    *prometheus.CounterVec
	Commits        *prometheus.CounterVec
	Navigations    *prometheus.CounterVec
	InstancesAdded *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ScreenOpens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldform_screen_opens_total",
				Help: "Screens opened, by whether the node was restored from the session tree",
			},
			[]string{"restored"},
		),
		Commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldform_commits_total",
				Help: "Field commits, by attribute kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		Navigations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldform_navigations_total",
				Help: "Previous/next moves across attribute instances",
			},
			[]string{"direction"},
		),
		InstancesAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fieldform_instances_added_total",
				Help: "Attribute instances created by navigating past the last one",
			},
			[]string{"definition_id"},
		),
	}
	for _, c := range []**prometheus.CounterVec{&m.ScreenOpens, &m.Commits, &m.Navigations, &m.InstancesAdded} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// register reuses an identical collector that is already registered, so a
// process can build Metrics more than once against the default registry.
func register(reg prometheus.Registerer, c **prometheus.CounterVec) error {
	err := reg.Register(*c)
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			*c = existing
			return nil
		}
	}
	return err
}

// Hooks returns the hook set that records into m.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnScreenOpen: func(_ context.Context, e *domain.ScreenEvent) {
			m.ScreenOpens.WithLabelValues(strconv.FormatBool(e.Restored)).Inc()
		},
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			m.Commits.WithLabelValues(string(e.Kind), commitOutcome(e)).Inc()
		},
		OnNavigate: func(_ context.Context, e *domain.NavigateEvent) {
			dir := "next"
			if e.To < e.From {
				dir = "previous"
			}
			m.Navigations.WithLabelValues(dir).Inc()
			if e.Grew {
				m.InstancesAdded.WithLabelValues(strconv.Itoa(e.DefinitionID)).Inc()
			}
		},
	}
}

func commitOutcome(e *domain.CommitEvent) string {
	var cerr *domain.CommitError
	switch {
	case errors.As(e.Err, &cerr):
		return string(cerr.Kind)
	case e.Err != nil:
		return "error"
	case e.Written:
		return "written"
	default:
		return "empty"
	}
}
