package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/2beens/trainingapp/internal/config"
	"github.com/2beens/trainingapp/internal/logging"
	"github.com/2beens/trainingapp/internal/trainer"
	"github.com/2beens/trainingapp/internal/training"

	log "github.com/sirupsen/logrus"
)

// trainer is a small terminal client of the persistence service:
//
//	trainer complexes
//	trainer history
//	trainer log -complex 1 -set 0:60x10 -set 0:60x8 -set 1:20x12 -rating 8 -condition 7 -comment "felt good"
func main() {
	err := run(os.Args[1:])
	switch {
	case err == nil:
		return
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	default:
		log.Errorf("trainer: %s", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage: trainer [flags] complexes | history | log [log flags]")

func run(args []string) error {
	fs := flag.NewFlagSet("trainer", flag.ContinueOnError)
	env := fs.String("env", "development", "environment [prod | production | dev | development]")
	configPath := fs.String("config", "./config.toml", "path for the TOML config file")
	logLevel := fs.String("log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err)
	}

	logging.Setup(logging.LoggerSetupParams{
		Component:   "trainer",
		LogToStdout: true,
		LogLevel:    *logLevel,
	})

	cmdArgs := fs.Args()
	if len(cmdArgs) == 0 {
		return errUsage
	}
	switch cmdArgs[0] {
	case "complexes", "history", "log":
	default:
		return fmt.Errorf("%w: unknown command [%s]", errUsage, cmdArgs[0])
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	app := trainer.NewAppFromConfig(cfg)
	defer app.Close()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	switch cmdArgs[0] {
	case "complexes":
		printComplexes(app)
	case "history":
		printHistory(app)
	case "log":
		if err := logSession(ctx, app, cmdArgs[1:]); err != nil {
			return fmt.Errorf("log session: %w", err)
		}
	}
	return nil
}

func printComplexes(app *trainer.App) {
	for _, c := range app.Complexes() {
		fmt.Printf("[%s] %s (%d sets)\n", c.ID, c.Name, c.TotalTargetSets())
		for i, ex := range c.Exercises {
			fmt.Printf("  %d. %s: %d x %s @ %s\n", i, ex.Name, ex.Sets, ex.Reps, ex.Weight)
		}
	}
}

func printHistory(app *trainer.App) {
	for _, s := range app.History() {
		fmt.Printf("%s  %s  training %d/10, condition %d/10\n", s.Date, s.Complex, s.TrainingRating, s.ConditionRating)
		for _, r := range s.Results {
			sets := make([]string, 0, len(r.Sets))
			for _, set := range r.Sets {
				sets = append(sets, fmt.Sprintf("%gx%d", set.Weight, set.Reps))
			}
			fmt.Printf("  %s: %s\n", r.Name, strings.Join(sets, ", "))
		}
		if s.TrainingComment != "" {
			fmt.Printf("  %s\n", s.TrainingComment)
		}
	}
}

type setFlags []string

func (s *setFlags) String() string {
	return strings.Join(*s, " ")
}

func (s *setFlags) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func logSession(ctx context.Context, app *trainer.App, args []string) error {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	complexID := fs.String("complex", "", "complex id")
	trainingRating := fs.Int("rating", training.DefaultRating, "training rating [1-10]")
	conditionRating := fs.Int("condition", training.DefaultRating, "condition rating [1-10]")
	comment := fs.String("comment", "", "training comment")
	var sets setFlags
	fs.Var(&sets, "set", "exercise set as <exercise index>:<weight>x<reps>, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.SelectComplex(*complexID); err != nil {
		return err
	}
	for _, set := range sets {
		exercise, weight, reps, err := parseSetFlag(set)
		if err != nil {
			return err
		}
		if err := app.GoToExercise(exercise); err != nil {
			return err
		}
		if err := app.RecordSetInput(weight, reps); err != nil {
			return fmt.Errorf("set [%s]: %w", set, err)
		}
	}
	if err := app.FinishTraining(); err != nil {
		return err
	}
	if err := app.Rate(*trainingRating, *conditionRating, *comment); err != nil {
		return err
	}

	summary, err := app.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("saved %s [%s]: %d sets\n", summary.Date, summary.Complex, summary.TotalSets())
	return nil
}

func parseSetFlag(v string) (exercise int, weight, reps string, err error) {
	idx, rest, ok := strings.Cut(v, ":")
	if !ok {
		return 0, "", "", fmt.Errorf("invalid set [%s], expected <exercise>:<weight>x<reps>", v)
	}
	if _, err := fmt.Sscanf(idx, "%d", &exercise); err != nil {
		return 0, "", "", fmt.Errorf("invalid exercise index [%s]", idx)
	}
	weight, reps, ok = strings.Cut(rest, "x")
	if !ok {
		return 0, "", "", fmt.Errorf("invalid set [%s], expected <exercise>:<weight>x<reps>", v)
	}
	return exercise, weight, reps, nil
}
