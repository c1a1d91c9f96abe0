package trainer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/2beens/trainingapp/internal/catalog"
	"github.com/2beens/trainingapp/internal/client"
	"github.com/2beens/trainingapp/internal/config"
	"github.com/2beens/trainingapp/internal/history"
	"github.com/2beens/trainingapp/internal/training"

	log "github.com/sirupsen/logrus"
)

const saveStatusTTL = 4 * time.Second

var ErrNotStarted = errors.New("trainer app not started")

type SaveStatus string

const (
	SaveStatusNone    SaveStatus = ""
	SaveStatusSuccess SaveStatus = "success"
	SaveStatusError   SaveStatus = "error"
)

//go:generate mockgen -source=$GOFILE -destination=app_mocks_test.go -package=trainer_test

// Backend is the persistence service as seen from the client, see *client.Client.
type Backend interface {
	FetchCatalog(ctx context.Context) (*catalog.Catalog, error)
	FetchHistory(ctx context.Context) ([]training.Summary, error)
	SaveSession(ctx context.Context, summary training.Summary) error
}

type Option func(a *App)

func WithSessionOptions(opts ...training.Option) Option {
	return func(a *App) {
		a.sessionOpts = append(a.sessionOpts, opts...)
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// App is the single entry point of a presentation layer: it owns the
// catalog, the session state machine and the local history.
type App struct {
	backend     Backend
	history     *history.Store
	sessionOpts []training.Option
	now         func() time.Time

	mu           sync.RWMutex
	catalog      *catalog.Catalog
	catalogErr   error
	session      *training.Session
	saveStatus   SaveStatus
	saveStatusAt time.Time
}

func NewApp(backend Backend, store *history.Store, opts ...Option) *App {
	a := &App{
		backend:    backend,
		history:    store,
		now:        time.Now,
		catalogErr: ErrNotStarted,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewAppFromConfig wires the persistence client, the history store and the
// session settings from the client side part of the config.
func NewAppFromConfig(cfg *config.Config) *App {
	var storeOpts []history.Option
	if cfg.HistorySnapshotPath != "" {
		storeOpts = append(storeOpts, history.WithSnapshotFile(cfg.HistorySnapshotPath))
	}
	return NewApp(
		client.NewClient(cfg.PersistenceBaseURL, nil),
		history.NewStore(storeOpts...),
		WithSessionOptions(
			training.WithRestDuration(cfg.RestSeconds),
			training.WithDateFormatter(training.DateFormatterFor(cfg.DateLocale)),
		),
	)
}

// Start loads the catalog and bootstraps the history. A catalog failure is
// returned and kept: no complex can be selected until Start succeeds.
// A history failure only leaves the local history as it was.
func (a *App) Start(ctx context.Context) error {
	cat, err := a.backend.FetchCatalog(ctx)

	a.mu.Lock()
	if err != nil {
		a.catalogErr = err
		a.mu.Unlock()
		log.Errorf("trainer: load catalog: %s", err)
		return err
	}
	if a.session != nil {
		a.session.Close()
	}
	a.catalog = cat
	a.catalogErr = nil
	a.session = training.NewSession(cat, a.backend, a.history, a.sessionOpts...)
	a.mu.Unlock()

	log.Debugf("trainer: catalog loaded, %d complexes", cat.Len())

	if err := a.history.Bootstrap(ctx, a.backend); err != nil {
		log.Warnf("trainer: %s", err)
	}
	return nil
}

func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session != nil {
		a.session.Close()
	}
}

// CatalogError is the blocking error of the last Start, nil once the catalog is loaded.
func (a *App) CatalogError() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.catalogErr
}

func (a *App) Complexes() []catalog.Complex {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.catalog == nil {
		return nil
	}
	return a.catalog.Complexes()
}

// History returns the saved sessions, most recent first.
func (a *App) History() []training.Summary {
	return a.history.All()
}

func (a *App) Snapshot() (training.Snapshot, error) {
	s, err := a.activeSession()
	if err != nil {
		return training.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

func (a *App) SelectComplex(id string) error {
	s, err := a.activeSession()
	if err != nil {
		return err
	}
	return s.SelectComplex(id)
}

// RecordSetInput parses the set form values and records them on the current exercise.
func (a *App) RecordSetInput(weight, reps string) error {
	s, err := a.activeSession()
	if err != nil {
		return err
	}
	record, err := training.ParseSetInput(weight, reps)
	if err != nil {
		return err
	}
	return s.RecordSet(s.CurrentExerciseIndex(), record.Weight, record.Reps)
}

func (a *App) RecordSet(exerciseIndex int, weight float64, reps int) error {
	s, err := a.activeSession()
	if err != nil {
		return err
	}
	return s.RecordSet(exerciseIndex, weight, reps)
}

func (a *App) BeginEditSet(exerciseIndex, setIndex int) error {
	s, err := a.activeSession()
	if err != nil {
		return err
	}
	return s.BeginEditSet(exerciseIndex, setIndex)
}

func (a *App) CancelEdit() error {
	s, err := a.activeSession()
	if err != nil {
		return err
	}
	s.CancelEdit()
	return nil
}

func (a *App) DeleteSet(exerciseIndex, setIndex int) error {
	s, err := a.activeSession()
	if err != nil {
		return err
	}
	return s.DeleteSet(exerciseIndex, setIndex)
}

func (a *App) SetComment(exerciseIndex int, text string) error {
	s, err := a.activeSession()
	if err != nil {
		return err
	}
	return s.SetComment(exerciseIndex, text)
}

func (a *App) Navigate(direction training.Direction) error {
	s, err := a.activeSession()
	if err != nil {
		return err
	}
	return s.Navigate(direction)
}

func (a *App) GoToExercise(index int) error {
	s, err := a.activeSession()
	if err != nil {
		return err
	}
	return s.GoToExercise(index)
}

func (a *App) FinishTraining() error {
	s, err := a.activeSession()
	if err != nil {
		return err
	}
	return s.FinishTraining()
}

func (a *App) Rate(trainingRating, conditionRating int, comment string) error {
	s, err := a.activeSession()
	if err != nil {
		return err
	}
	return s.Rate(trainingRating, conditionRating, comment)
}

// Save finishes the session and records the outcome of the persistence call
// for the save notification.
func (a *App) Save(ctx context.Context) (training.Summary, error) {
	s, err := a.activeSession()
	if err != nil {
		return training.Summary{}, err
	}

	summary, err := s.Save(ctx)
	switch {
	case err == nil:
		a.setSaveStatus(SaveStatusSuccess)
	case errors.Is(err, training.ErrPersistence):
		a.setSaveStatus(SaveStatusError)
	}
	return summary, err
}

// SaveStatus is the outcome of the last save, reset to SaveStatusNone after a few seconds.
func (a *App) SaveStatus() SaveStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.saveStatus == SaveStatusNone || a.now().Sub(a.saveStatusAt) >= saveStatusTTL {
		return SaveStatusNone
	}
	return a.saveStatus
}

func (a *App) setSaveStatus(status SaveStatus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saveStatus = status
	a.saveStatusAt = a.now()
}

func (a *App) activeSession() (*training.Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil, a.catalogErr
	}
	return a.session, nil
}
