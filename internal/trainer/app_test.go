package trainer_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/2beens/trainingapp/internal/catalog"
	"github.com/2beens/trainingapp/internal/config"
	"github.com/2beens/trainingapp/internal/history"
	"github.com/2beens/trainingapp/internal/trainer"
	"github.com/2beens/trainingapp/internal/training"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func silentTicker(time.Duration) (<-chan time.Time, func()) {
	return make(chan time.Time), func() {}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Complex{
		{
			ID:   "1",
			Name: "Push Day",
			Exercises: []catalog.Exercise{
				{Name: "A", Sets: 3, Reps: "10", Weight: "60"},
				{Name: "B", Sets: 2, Reps: "12", Weight: "20"},
			},
		},
	})
	require.NoError(t, err)
	return c
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func newTestApp(t *testing.T, backend trainer.Backend, clock *testClock) *trainer.App {
	t.Helper()
	app := trainer.NewApp(backend, history.NewStore(),
		trainer.WithClock(clock.Now),
		trainer.WithSessionOptions(
			training.WithTickerFactory(silentTicker),
			training.WithClock(clock.Now),
		),
	)
	t.Cleanup(app.Close)
	return app
}

func TestApp_NotStarted(t *testing.T) {
	ctrl := gomock.NewController(t)
	app := newTestApp(t, NewMockBackend(ctrl), &testClock{now: time.Now()})

	assert.ErrorIs(t, app.CatalogError(), trainer.ErrNotStarted)
	assert.ErrorIs(t, app.SelectComplex("1"), trainer.ErrNotStarted)
	_, err := app.Snapshot()
	assert.ErrorIs(t, err, trainer.ErrNotStarted)
	assert.Empty(t, app.Complexes())
}

func TestApp_StartCatalogFailureBlocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	app := newTestApp(t, backend, &testClock{now: time.Now()})

	loadErr := &catalog.CatalogLoadError{Reason: "decode", Err: errors.New("unexpected EOF")}
	backend.EXPECT().FetchCatalog(gomock.Any()).Return(nil, loadErr)

	err := app.Start(context.Background())
	require.ErrorIs(t, err, catalog.ErrCatalogLoad)
	assert.ErrorIs(t, app.CatalogError(), catalog.ErrCatalogLoad)
	assert.ErrorIs(t, app.SelectComplex("1"), catalog.ErrCatalogLoad)
	assert.ErrorIs(t, app.RecordSetInput("60", "10"), catalog.ErrCatalogLoad)
}

func TestApp_StartHistoryFailureDoesNotBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	app := newTestApp(t, backend, &testClock{now: time.Now()})

	backend.EXPECT().FetchCatalog(gomock.Any()).Return(testCatalog(t), nil)
	backend.EXPECT().FetchHistory(gomock.Any()).Return(nil, errors.New("connection refused"))

	require.NoError(t, app.Start(context.Background()))
	assert.NoError(t, app.CatalogError())
	assert.Len(t, app.Complexes(), 1)
	assert.Empty(t, app.History())
	assert.NoError(t, app.SelectComplex("1"))
}

func TestApp_TrainingFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	clock := &testClock{now: time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)}
	app := newTestApp(t, backend, clock)

	previous := training.Summary{Date: "14 окт. 2026 г.", Complex: "Push Day", TrainingRating: 5, ConditionRating: 5}
	backend.EXPECT().FetchCatalog(gomock.Any()).Return(testCatalog(t), nil)
	backend.EXPECT().FetchHistory(gomock.Any()).Return([]training.Summary{previous}, nil)
	require.NoError(t, app.Start(context.Background()))

	require.NoError(t, app.SelectComplex("1"))
	require.NoError(t, app.RecordSetInput("60", "10"))
	require.NoError(t, app.RecordSetInput("62,5", "8"))
	assert.ErrorIs(t, app.RecordSetInput("", "8"), training.ErrValidation)

	require.NoError(t, app.BeginEditSet(0, 1))
	require.NoError(t, app.RecordSet(0, 65, 6))
	require.NoError(t, app.RecordSetInput("60", "10"))
	require.NoError(t, app.DeleteSet(0, 2))
	require.NoError(t, app.SetComment(0, "heavy"))
	require.NoError(t, app.BeginEditSet(0, 0))
	require.NoError(t, app.CancelEdit())
	require.NoError(t, app.GoToExercise(1))
	require.NoError(t, app.Navigate(training.Previous))

	snap, err := app.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalRecordedSets)
	assert.Equal(t, 40.0, snap.ProgressPercent)
	assert.Nil(t, snap.EditTarget)

	require.NoError(t, app.FinishTraining())
	require.NoError(t, app.Rate(8, 7, "good"))

	backend.EXPECT().SaveSession(gomock.Any(), gomock.Any()).Return(nil)
	summary, err := app.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "15 окт. 2026 г.", summary.Date)
	assert.Equal(t, []training.SetRecord{{Weight: 60, Reps: 10}, {Weight: 65, Reps: 6}}, summary.Results["A"].Sets)
	assert.Equal(t, "heavy", summary.Results["A"].Comment)

	assert.Equal(t, trainer.SaveStatusSuccess, app.SaveStatus())
	assert.Equal(t, []training.Summary{summary, previous}, app.History())

	clock.now = clock.now.Add(5 * time.Second)
	assert.Equal(t, trainer.SaveStatusNone, app.SaveStatus())
}

func TestApp_SaveFailureStillRecordsHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	app := newTestApp(t, backend, &testClock{now: time.Now()})

	backend.EXPECT().FetchCatalog(gomock.Any()).Return(testCatalog(t), nil)
	backend.EXPECT().FetchHistory(gomock.Any()).Return(nil, nil)
	require.NoError(t, app.Start(context.Background()))

	require.NoError(t, app.SelectComplex("1"))
	require.NoError(t, app.RecordSet(1, 20, 12))
	require.NoError(t, app.Navigate(training.Next))
	require.NoError(t, app.Navigate(training.Next))

	backend.EXPECT().SaveSession(gomock.Any(), gomock.Any()).Return(errors.New("status 500"))
	summary, err := app.Save(context.Background())
	require.ErrorIs(t, err, training.ErrPersistence)
	assert.Equal(t, trainer.SaveStatusError, app.SaveStatus())
	assert.Equal(t, []training.Summary{summary}, app.History())

	snap, err := app.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, training.StateNoComplexSelected, snap.State)
}

func TestApp_SaveBeforeFinishKeepsStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend := NewMockBackend(ctrl)
	app := newTestApp(t, backend, &testClock{now: time.Now()})

	backend.EXPECT().FetchCatalog(gomock.Any()).Return(testCatalog(t), nil)
	backend.EXPECT().FetchHistory(gomock.Any()).Return(nil, nil)
	require.NoError(t, app.Start(context.Background()))
	require.NoError(t, app.SelectComplex("1"))

	_, err := app.Save(context.Background())
	require.ErrorIs(t, err, training.ErrInvalidState)
	assert.Equal(t, trainer.SaveStatusNone, app.SaveStatus())
}

func TestNewAppFromConfig(t *testing.T) {
	snapshotPath := filepath.Join(t.TempDir(), "history.json")
	app := trainer.NewAppFromConfig(&config.Config{
		PersistenceBaseURL:  "http://localhost:1",
		RestSeconds:         90,
		DateLocale:          "en",
		HistorySnapshotPath: snapshotPath,
	})
	defer app.Close()

	assert.ErrorIs(t, app.CatalogError(), trainer.ErrNotStarted)
	assert.Empty(t, app.History())
}
