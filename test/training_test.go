package test

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/2beens/trainingapp/internal/client"
	"github.com/2beens/trainingapp/internal/trainer"
	"github.com/2beens/trainingapp/internal/training"
)

func (s *IntegrationTestSuite) newApp() *trainer.App {
	cfg := *s.cfg
	cfg.HistorySnapshotPath = filepath.Join(s.T().TempDir(), "history_snapshot.json")
	app := trainer.NewAppFromConfig(&cfg)
	s.T().Cleanup(app.Close)
	return app
}

func (s *IntegrationTestSuite) TestComplexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cat, err := client.NewClient(serverEndpoint, nil).FetchCatalog(ctx)
	s.Require().NoError(err)
	s.Require().Equal(2, cat.Len())

	push, ok := cat.Complex("1")
	s.Require().True(ok)
	s.Equal("Push Day", push.Name)
	s.Equal(5, push.TotalTargetSets())
	s.Equal("bodyweight", push.Exercises[1].Weight.String())
}

func (s *IntegrationTestSuite) TestTrainingSession_SaveAndHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	historyBefore, err := client.NewClient(serverEndpoint, nil).FetchHistory(ctx)
	s.Require().NoError(err)

	app := s.newApp()
	s.Require().NoError(app.Start(ctx))
	s.Len(app.Complexes(), 2)
	s.Len(app.History(), len(historyBefore))

	s.Require().NoError(app.SelectComplex("1"))
	s.Require().NoError(app.RecordSetInput("60", "10"))
	s.Require().NoError(app.RecordSetInput("62,5", "8"))
	s.Require().NoError(app.SetComment(0, "last set was heavy"))
	s.Require().NoError(app.Navigate(training.Next))
	s.Require().NoError(app.RecordSetInput("20", "12"))

	snapshot, err := app.Snapshot()
	s.Require().NoError(err)
	s.Equal(3, snapshot.TotalRecordedSets)
	s.Equal(5, snapshot.TotalTargetSets)
	s.InDelta(60.0, snapshot.ProgressPercent, 0.001)
	s.Positive(snapshot.RestRemaining)

	s.Require().NoError(app.FinishTraining())
	s.Require().NoError(app.Rate(8, 7, "good pump"))

	summary, err := app.Save(ctx)
	s.Require().NoError(err)
	s.Equal(trainer.SaveStatusSuccess, app.SaveStatus())
	s.Equal("Push Day", summary.Complex)
	s.Equal(3, summary.TotalSets())
	s.Equal(training.RussianShortDate(time.Now()), summary.Date)

	// the local history is updated before the server answers
	s.Require().Len(app.History(), len(historyBefore)+1)
	s.Equal(summary, app.History()[0])

	historyAfter, err := client.NewClient(serverEndpoint, nil).FetchHistory(ctx)
	s.Require().NoError(err)
	s.Require().Len(historyAfter, len(historyBefore)+1)
	saved := historyAfter[len(historyAfter)-1]
	s.Equal(summary.Complex, saved.Complex)
	s.Equal(8, saved.TrainingRating)
	s.Equal(7, saved.ConditionRating)
	s.Equal("good pump", saved.TrainingComment)
	s.Require().Contains(saved.Results, "Bench press")
	s.Equal([]training.SetRecord{{Weight: 60, Reps: 10}, {Weight: 62.5, Reps: 8}}, saved.Results["Bench press"].Sets)
	s.Equal("last set was heavy", saved.Results["Bench press"].Comment)
	s.Equal([]training.SetRecord{{Weight: 20, Reps: 12}}, saved.Results["Dips"].Sets)

	// a restarted app picks the saved session up from the server
	restarted := s.newApp()
	s.Require().NoError(restarted.Start(ctx))
	s.Require().Len(restarted.History(), len(historyAfter))
	s.Equal(summary.Complex, restarted.History()[0].Complex)

	f, err := os.Open(s.cfg.CSVMirrorPath)
	s.Require().NoError(err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, len(historyAfter)+1)
	s.Equal("date", rows[0][0])
	last := rows[len(rows)-1]
	s.Equal("Push Day", last[1])
	s.Contains(last[len(last)-1], "Bench press: 60x10, 62.5x8")
}

func (s *IntegrationTestSuite) TestSaveTraining_InvalidRating() {
	req, err := http.NewRequest(
		http.MethodPost,
		serverEndpoint+"/api/save-training",
		strings.NewReader(`{"trainingData": {"date": "15 окт. 2026 г.", "complex": "Leg Day", "results": {"Squat": {"name": "Squat", "sets": [{"weight": 100, "reps": 5}]}}, "trainingRating": 11, "conditionRating": 5}}`),
	)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestStaticFiles() {
	resp, err := http.Get(serverEndpoint + "/training_program.json")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp404, err := http.Get(serverEndpoint + "/api/nope")
	s.Require().NoError(err)
	defer resp404.Body.Close()
	s.Equal(http.StatusNotFound, resp404.StatusCode)
}

func (s *IntegrationTestSuite) TestMetricsEndpoint() {
	resp, err := http.Get(fmt.Sprintf("http://%s:%d/metrics", serverHost, metricsPort))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}
