package training

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	MinRating     = 1
	MaxRating     = 10
	DefaultRating = 5
)

type SetRecord struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

func (r SetRecord) validate() error {
	if math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) || r.Weight <= 0 {
		return &ValidationError{Field: "weight", Reason: "must be a positive number"}
	}
	if r.Reps <= 0 {
		return &ValidationError{Field: "reps", Reason: "must be a positive integer"}
	}
	return nil
}

// ParseSetInput turns raw set-entry form values into a SetRecord.
// Decimal commas are accepted for the weight ("22,5").
func ParseSetInput(weight, reps string) (SetRecord, error) {
	weight = strings.TrimSpace(weight)
	reps = strings.TrimSpace(reps)
	if weight == "" {
		return SetRecord{}, &ValidationError{Field: "weight", Reason: "required"}
	}
	if reps == "" {
		return SetRecord{}, &ValidationError{Field: "reps", Reason: "required"}
	}

	w, err := strconv.ParseFloat(strings.ReplaceAll(weight, ",", "."), 64)
	if err != nil {
		return SetRecord{}, &ValidationError{Field: "weight", Reason: fmt.Sprintf("not a number: %q", weight)}
	}
	r, err := strconv.Atoi(reps)
	if err != nil {
		return SetRecord{}, &ValidationError{Field: "reps", Reason: fmt.Sprintf("not an integer: %q", reps)}
	}

	record := SetRecord{Weight: w, Reps: r}
	if err := record.validate(); err != nil {
		return SetRecord{}, err
	}
	return record, nil
}

// ExerciseProgress holds the sets recorded for one exercise of the active complex.
type ExerciseProgress struct {
	Sets    []SetRecord
	Comment string
}

func (p ExerciseProgress) clone() ExerciseProgress {
	sets := make([]SetRecord, len(p.Sets))
	copy(sets, p.Sets)
	return ExerciseProgress{Sets: sets, Comment: p.Comment}
}

type ExerciseResult struct {
	Name    string      `json:"name"`
	Sets    []SetRecord `json:"sets"`
	Comment string      `json:"comment,omitempty"`
}

// Summary is the finished, immutable record of one training session.
// Results are keyed by exercise name and only hold exercises with at least one set.
type Summary struct {
	Date            string                    `json:"date"`
	Complex         string                    `json:"complex"`
	Results         map[string]ExerciseResult `json:"results"`
	TrainingRating  int                       `json:"trainingRating"`
	ConditionRating int                       `json:"conditionRating"`
	TrainingComment string                    `json:"trainingComment"`
}

func (s Summary) TotalSets() int {
	total := 0
	for _, r := range s.Results {
		total += len(r.Sets)
	}
	return total
}

func (s Summary) Validate() error {
	if strings.TrimSpace(s.Complex) == "" {
		return &ValidationError{Field: "complex", Reason: "required"}
	}
	if err := validateRating("trainingRating", s.TrainingRating); err != nil {
		return err
	}
	if err := validateRating("conditionRating", s.ConditionRating); err != nil {
		return err
	}
	for key, result := range s.Results {
		if len(result.Sets) == 0 {
			return &ValidationError{Field: "results", Reason: fmt.Sprintf("exercise [%s] has no sets", key)}
		}
		for i, set := range result.Sets {
			if err := set.validate(); err != nil {
				return fmt.Errorf("exercise [%s] set %d: %w", key, i+1, err)
			}
		}
	}
	return nil
}

// WithoutEmptyResults returns a copy of the summary without the exercises
// that carry no sets (a comment alone, or every set deleted).
func (s Summary) WithoutEmptyResults() Summary {
	results := make(map[string]ExerciseResult, len(s.Results))
	for key, result := range s.Results {
		if len(result.Sets) == 0 {
			continue
		}
		results[key] = result
	}
	s.Results = results
	return s
}

func validateRating(field string, rating int) error {
	if rating < MinRating || rating > MaxRating {
		return &ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("must be between %d and %d, got %d", MinRating, MaxRating, rating),
		}
	}
	return nil
}

// DateFormatter renders the calendar date stored in a Summary.
type DateFormatter func(t time.Time) string

var ruShortMonths = [...]string{
	"янв.", "февр.", "мар.", "апр.", "мая", "июн.",
	"июл.", "авг.", "сент.", "окт.", "нояб.", "дек.",
}

// RussianShortDate renders dates like "05 мая 2025 г.".
func RussianShortDate(t time.Time) string {
	return fmt.Sprintf("%02d %s %d г.", t.Day(), ruShortMonths[t.Month()-1], t.Year())
}

// EnglishShortDate renders dates like "05 May 2025".
func EnglishShortDate(t time.Time) string {
	return t.Format("02 Jan 2006")
}

func DateFormatterFor(locale string) DateFormatter {
	switch strings.ToLower(locale) {
	case "en":
		return EnglishShortDate
	default:
		return RussianShortDate
	}
}
