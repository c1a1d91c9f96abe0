package sessions

import (
	"context"
	"fmt"

	"github.com/2beens/trainingapp/internal/telemetry/metrics"
	"github.com/2beens/trainingapp/internal/telemetry/tracing"
	"github.com/2beens/trainingapp/internal/training"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type Service struct {
	repo           *Repo
	csvMirror      *CSVMirror
	metricsManager *metrics.Manager
}

// NewService creates the persistence service. csvMirror may be nil when
// mirroring is disabled.
func NewService(repo *Repo, csvMirror *CSVMirror, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		csvMirror:      csvMirror,
		metricsManager: metricsManager,
	}
}

// Save validates and stores the session, returning its position in the log.
// A failing CSV mirror is logged and counted but does not fail the save.
func (s *Service) Save(ctx context.Context, summary training.Summary) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.save")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// browser clients send exercises with a comment but no sets
	summary = summary.WithoutEmptyResults()
	if err := summary.Validate(); err != nil {
		return 0, err
	}

	id, err := s.repo.Append(ctx, summary)
	if err != nil {
		s.metricsManager.CounterSessionSaveErrors.Inc()
		return 0, fmt.Errorf("append session: %w", err)
	}
	s.metricsManager.CounterSessionsSaved.Inc()
	s.metricsManager.GaugeHistorySize.Set(float64(id))

	if s.csvMirror != nil {
		if err := s.csvMirror.Append(ctx, summary); err != nil {
			s.metricsManager.CounterCSVMirrorErrors.Inc()
			log.Errorf("sessions: mirror session %d to csv: %s", id, err)
		}
	}

	log.Infof("sessions: saved session %d [%s] from %s, %d sets", id, summary.Complex, summary.Date, summary.TotalSets())
	return id, nil
}

func (s *Service) History(ctx context.Context) (_ []training.Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.sessions.history")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	summaries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	s.metricsManager.GaugeHistorySize.Set(float64(len(summaries)))
	return summaries, nil
}
