package sessions

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/2beens/trainingapp/internal/telemetry/tracing"
	"github.com/2beens/trainingapp/internal/training"
)

var csvHeader = []string{
	"date",
	"complex",
	"training_rating",
	"condition_rating",
	"training_comment",
	"exercises",
	"total_sets",
	"results",
}

// CSVMirror appends every saved session as one row to a CSV file kept for
// spreadsheet use. The file is never read back.
type CSVMirror struct {
	mu   sync.Mutex
	path string
}

func NewCSVMirror(path string) *CSVMirror {
	return &CSVMirror{
		path: path,
	}
}

func (m *CSVMirror) Append(ctx context.Context, summary training.Summary) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "csvmirror.sessions.append")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	f, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv mirror: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat csv mirror: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	if err := w.Write(csvRow(summary)); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func csvRow(summary training.Summary) []string {
	return []string{
		summary.Date,
		summary.Complex,
		strconv.Itoa(summary.TrainingRating),
		strconv.Itoa(summary.ConditionRating),
		summary.TrainingComment,
		strconv.Itoa(len(summary.Results)),
		strconv.Itoa(summary.TotalSets()),
		flattenResults(summary.Results),
	}
}

// flattenResults renders results as "Bench press: 60x10, 60x8; Squat: 100x5",
// exercises sorted by name.
func flattenResults(results map[string]training.ExerciseResult) string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	slices.Sort(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		result := results[name]
		sets := make([]string, 0, len(result.Sets))
		for _, set := range result.Sets {
			sets = append(sets, strconv.FormatFloat(set.Weight, 'f', -1, 64)+"x"+strconv.Itoa(set.Reps))
		}
		parts = append(parts, name+": "+strings.Join(sets, ", "))
	}
	return strings.Join(parts, "; ")
}
