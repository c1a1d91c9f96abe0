package training

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/trainingapp/internal/catalog"

	log "github.com/sirupsen/logrus"
)

type State int

const (
	StateNoComplexSelected State = iota
	StateInProgress
	StateFinished
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateNoComplexSelected:
		return "no-complex-selected"
	case StateInProgress:
		return "in-progress"
	case StateFinished:
		return "finished"
	case StatePersisted:
		return "persisted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// ComplexSource is satisfied by *catalog.Catalog.
type ComplexSource interface {
	Complex(id string) (catalog.Complex, bool)
}

//go:generate mockgen -source=$GOFILE -destination=session_mocks_test.go -package=training_test

type Persister interface {
	SaveSession(ctx context.Context, summary Summary) error
}

type HistoryAppender interface {
	Append(summary Summary)
}

// DiscardConfirmer is asked before a re-selection drops recorded sets.
type DiscardConfirmer func(current catalog.Complex, recordedSets int) bool

type EditTarget struct {
	ExerciseIndex int
	SetIndex      int
}

type Option func(s *Session)

func WithRestDuration(seconds int) Option {
	return func(s *Session) {
		s.restSeconds = seconds
	}
}

func WithRestObserver(observer func(RestTick)) Option {
	return func(s *Session) {
		s.restObserver = observer
	}
}

func WithTickerFactory(factory TickerFactory) Option {
	return func(s *Session) {
		s.tickerFactory = factory
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func WithDateFormatter(formatter DateFormatter) Option {
	return func(s *Session) {
		s.formatDate = formatter
	}
}

func WithDiscardConfirmation(confirm DiscardConfirmer) Option {
	return func(s *Session) {
		s.confirmDiscard = confirm
	}
}

// Session is the state machine of one user's training. Exactly one session is
// active at a time; Save resets it so the next complex can be picked.
type Session struct {
	mu sync.Mutex

	complexes ComplexSource
	persister Persister
	history   HistoryAppender

	state           State
	complex         catalog.Complex
	exerciseIndex   int
	progress        map[int]*ExerciseProgress
	editTarget      *EditTarget
	trainingRating  int
	conditionRating int
	trainingComment string

	rest           *RestTimer
	restSeconds    int
	restObserver   func(RestTick)
	tickerFactory  TickerFactory
	now            func() time.Time
	formatDate     DateFormatter
	confirmDiscard DiscardConfirmer
}

func NewSession(
	complexes ComplexSource,
	persister Persister,
	history HistoryAppender,
	opts ...Option,
) *Session {
	s := &Session{
		complexes:       complexes,
		persister:       persister,
		history:         history,
		progress:        map[int]*ExerciseProgress{},
		trainingRating:  DefaultRating,
		conditionRating: DefaultRating,
		restSeconds:     DefaultRestSeconds,
		now:             time.Now,
		formatDate:      RussianShortDate,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rest = NewRestTimer(s.restObserver, s.tickerFactory)
	return s
}

func (s *Session) SelectComplex(id string) error {
	selected, ok := s.complexes.Complex(id)
	if !ok {
		return fmt.Errorf("%w: [%s]", ErrUnknownComplex, id)
	}

	s.mu.Lock()
	current := s.complex
	recorded := s.totalRecordedSetsLocked()
	needsConfirmation := s.confirmDiscard != nil && s.state != StateNoComplexSelected && recorded > 0
	s.mu.Unlock()

	if needsConfirmation && !s.confirmDiscard(current, recorded) {
		return ErrDiscardRejected
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.complex = selected
	s.transitionLocked(StateInProgress)
	log.Debugf("session: complex [%s] selected, %d exercises", selected.ID, len(selected.Exercises))
	return nil
}

// RecordSet appends a set to the exercise, or overwrites the set under edit
// when the pending edit targets the same exercise. Any successful record
// leaves edit mode and restarts the rest countdown.
func (s *Session) RecordSet(exerciseIndex int, weight float64, reps int) error {
	record := SetRecord{Weight: weight, Reps: reps}

	s.mu.Lock()
	if err := s.requireInProgressLocked("record set"); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.checkExerciseLocked(exerciseIndex); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := record.validate(); err != nil {
		s.mu.Unlock()
		return err
	}

	p := s.progressLocked(exerciseIndex)
	if et := s.editTarget; et != nil && et.ExerciseIndex == exerciseIndex && et.SetIndex < len(p.Sets) {
		p.Sets[et.SetIndex] = record
	} else {
		p.Sets = append(p.Sets, record)
	}
	s.editTarget = nil
	restSeconds := s.restSeconds
	s.mu.Unlock()

	s.rest.Start(restSeconds)
	return nil
}

func (s *Session) BeginEditSet(exerciseIndex, setIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("edit set"); err != nil {
		return err
	}
	if err := s.checkSetLocked(exerciseIndex, setIndex); err != nil {
		return err
	}
	s.editTarget = &EditTarget{ExerciseIndex: exerciseIndex, SetIndex: setIndex}
	return nil
}

func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editTarget = nil
}

// EditTarget returns the set under edit, if any.
func (s *Session) EditTarget() (EditTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editTarget == nil {
		return EditTarget{}, false
	}
	return *s.editTarget, true
}

func (s *Session) DeleteSet(exerciseIndex, setIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("delete set"); err != nil {
		return err
	}
	if err := s.checkSetLocked(exerciseIndex, setIndex); err != nil {
		return err
	}

	p := s.progress[exerciseIndex]
	p.Sets = append(p.Sets[:setIndex], p.Sets[setIndex+1:]...)

	if et := s.editTarget; et != nil && et.ExerciseIndex == exerciseIndex {
		switch {
		case et.SetIndex == setIndex:
			s.editTarget = nil
		case et.SetIndex > setIndex:
			et.SetIndex--
		}
	}
	return nil
}

func (s *Session) SetComment(exerciseIndex int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("set comment"); err != nil {
		return err
	}
	if err := s.checkExerciseLocked(exerciseIndex); err != nil {
		return err
	}
	s.progressLocked(exerciseIndex).Comment = text
	return nil
}

// Navigate moves between exercises. Previous stops at the first exercise,
// Next on the last exercise finishes the training.
func (s *Session) Navigate(direction Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("navigate"); err != nil {
		return err
	}

	switch direction {
	case Previous:
		if s.exerciseIndex > 0 {
			s.exerciseIndex--
		}
	case Next:
		if s.exerciseIndex+1 < len(s.complex.Exercises) {
			s.exerciseIndex++
		} else {
			s.transitionLocked(StateFinished)
		}
	default:
		return fmt.Errorf("%w: %d", ErrInvalidDirection, direction)
	}
	return nil
}

func (s *Session) GoToExercise(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireInProgressLocked("go to exercise"); err != nil {
		return err
	}
	if err := s.checkExerciseLocked(index); err != nil {
		return err
	}
	s.exerciseIndex = index
	return nil
}

func (s *Session) FinishTraining() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFinished {
		return nil
	}
	if err := s.requireInProgressLocked("finish training"); err != nil {
		return err
	}
	s.transitionLocked(StateFinished)
	return nil
}

// Rate sets the session ratings, each in [MinRating, MaxRating].
func (s *Session) Rate(trainingRating, conditionRating int, comment string) error {
	if err := validateRating("trainingRating", trainingRating); err != nil {
		return err
	}
	if err := validateRating("conditionRating", conditionRating); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFinished {
		return fmt.Errorf("%w: rate in state %s", ErrInvalidState, s.state)
	}
	s.trainingRating = trainingRating
	s.conditionRating = conditionRating
	s.trainingComment = comment
	return nil
}

// Save assembles the summary, adds it to the local history and resets the
// session. The persister is called afterwards without holding the session,
// and its failure is returned as a *PersistenceError next to the summary.
func (s *Session) Save(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	if s.state != StateFinished {
		state := s.state
		s.mu.Unlock()
		return Summary{}, fmt.Errorf("%w: save in state %s", ErrInvalidState, state)
	}

	summary := s.summaryLocked()
	s.transitionLocked(StatePersisted)
	if s.history != nil {
		s.history.Append(summary)
	}
	s.resetLocked()
	s.transitionLocked(StateNoComplexSelected)
	s.mu.Unlock()

	if s.persister == nil {
		return summary, nil
	}
	if err := s.persister.SaveSession(ctx, summary); err != nil {
		log.Errorf("session: persist [%s] from %s: %s", summary.Complex, summary.Date, err)
		return summary, &PersistenceError{Err: err}
	}
	return summary, nil
}

// Close stops the rest countdown.
func (s *Session) Close() {
	s.rest.Close()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) CurrentExerciseIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exerciseIndex
}

func (s *Session) CurrentExercise() (catalog.Exercise, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateNoComplexSelected || s.exerciseIndex >= len(s.complex.Exercises) {
		return catalog.Exercise{}, false
	}
	return s.complex.Exercises[s.exerciseIndex], true
}

// ExerciseProgress returns a copy of the recorded progress of an exercise.
func (s *Session) ExerciseProgress(exerciseIndex int) (ExerciseProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateNoComplexSelected {
		return ExerciseProgress{}, ErrNoComplexSelected
	}
	if err := s.checkExerciseLocked(exerciseIndex); err != nil {
		return ExerciseProgress{}, err
	}
	p, ok := s.progress[exerciseIndex]
	if !ok {
		return ExerciseProgress{}, nil
	}
	return p.clone(), nil
}

func (s *Session) TotalRecordedSets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalRecordedSetsLocked()
}

// TotalTargetSets is the sum of the target sets of the active complex, at least 1.
func (s *Session) TotalTargetSets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalTargetSetsLocked()
}

// Progress returns the completion percentage of the session, capped at 100.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressPercentLocked()
}

func (s *Session) RestRemaining() int {
	return s.rest.Remaining()
}

// Snapshot is a point-in-time copy of the session for the presentation layer.
type Snapshot struct {
	State             State
	Complex           catalog.Complex
	ExerciseIndex     int
	Progress          map[int]ExerciseProgress
	ProgressPercent   float64
	TotalRecordedSets int
	TotalTargetSets   int
	EditTarget        *EditTarget
	RestRemaining     int
	TrainingRating    int
	ConditionRating   int
	TrainingComment   string
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	progress := make(map[int]ExerciseProgress, len(s.progress))
	for idx, p := range s.progress {
		progress[idx] = p.clone()
	}
	var editTarget *EditTarget
	if s.editTarget != nil {
		et := *s.editTarget
		editTarget = &et
	}

	return Snapshot{
		State:             s.state,
		Complex:           s.complex,
		ExerciseIndex:     s.exerciseIndex,
		Progress:          progress,
		ProgressPercent:   s.progressPercentLocked(),
		TotalRecordedSets: s.totalRecordedSetsLocked(),
		TotalTargetSets:   s.totalTargetSetsLocked(),
		EditTarget:        editTarget,
		RestRemaining:     s.rest.Remaining(),
		TrainingRating:    s.trainingRating,
		ConditionRating:   s.conditionRating,
		TrainingComment:   s.trainingComment,
	}
}

func (s *Session) summaryLocked() Summary {
	results := make(map[string]ExerciseResult)
	for idx, exercise := range s.complex.Exercises {
		p, ok := s.progress[idx]
		if !ok || len(p.Sets) == 0 {
			continue
		}
		sets := make([]SetRecord, len(p.Sets))
		copy(sets, p.Sets)
		results[exercise.Name] = ExerciseResult{
			Name:    exercise.Name,
			Sets:    sets,
			Comment: p.Comment,
		}
	}

	return Summary{
		Date:            s.formatDate(s.now()),
		Complex:         s.complex.Name,
		Results:         results,
		TrainingRating:  s.trainingRating,
		ConditionRating: s.conditionRating,
		TrainingComment: s.trainingComment,
	}
}

func (s *Session) resetLocked() {
	s.complex = catalog.Complex{}
	s.exerciseIndex = 0
	s.progress = map[int]*ExerciseProgress{}
	s.editTarget = nil
	s.trainingRating = DefaultRating
	s.conditionRating = DefaultRating
	s.trainingComment = ""
}

func (s *Session) transitionLocked(to State) {
	if s.state == to {
		return
	}
	log.Debugf("session: %s -> %s", s.state, to)
	s.state = to
}

func (s *Session) requireInProgressLocked(op string) error {
	switch s.state {
	case StateInProgress:
		return nil
	case StateNoComplexSelected:
		return ErrNoComplexSelected
	default:
		return fmt.Errorf("%w: %s in state %s", ErrInvalidState, op, s.state)
	}
}

func (s *Session) checkExerciseLocked(exerciseIndex int) error {
	if exerciseIndex < 0 || exerciseIndex >= len(s.complex.Exercises) {
		return fmt.Errorf("%w: %d of %d", ErrExerciseOutOfRange, exerciseIndex, len(s.complex.Exercises))
	}
	return nil
}

func (s *Session) checkSetLocked(exerciseIndex, setIndex int) error {
	if err := s.checkExerciseLocked(exerciseIndex); err != nil {
		return err
	}
	recorded := 0
	if p, ok := s.progress[exerciseIndex]; ok {
		recorded = len(p.Sets)
	}
	if setIndex < 0 || setIndex >= recorded {
		return fmt.Errorf("%w: set %d of %d", ErrSetOutOfRange, setIndex, recorded)
	}
	return nil
}

func (s *Session) progressLocked(exerciseIndex int) *ExerciseProgress {
	p, ok := s.progress[exerciseIndex]
	if !ok {
		p = &ExerciseProgress{}
		s.progress[exerciseIndex] = p
	}
	return p
}

func (s *Session) totalRecordedSetsLocked() int {
	total := 0
	for _, p := range s.progress {
		total += len(p.Sets)
	}
	return total
}

func (s *Session) totalTargetSetsLocked() int {
	return max(1, s.complex.TotalTargetSets())
}

func (s *Session) progressPercentLocked() float64 {
	percent := float64(s.totalRecordedSetsLocked()) / float64(s.totalTargetSetsLocked()) * 100
	return min(percent, 100)
}
