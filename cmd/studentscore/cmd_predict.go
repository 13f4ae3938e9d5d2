package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"studentscore/form"
	"studentscore/ml"
)

var (
	predictInput string
	predictLoop  bool
	predictJSON  bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Collect one student record and print the predicted final score",
	Long: `Prompts for each student attribute on the terminal (press Enter to keep the
default), or reads JSON records with --input. With --loop, keeps accepting
records until end of input; a failed prediction does not stop the loop.`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictInput, "input", "", "Read JSON records from this file (- for stdin) instead of prompting")
	predictCmd.Flags().BoolVar(&predictLoop, "loop", false, "Keep predicting until end of input")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Print results as JSON")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	var collector form.Collector
	var presenter form.Presenter
	out := cmd.OutOrStdout()

	switch predictInput {
	case "":
		terminal := form.NewTerminalForm(cmd.InOrStdin(), out)
		collector, presenter = terminal, terminal
	case "-":
		collector = form.NewJSONCollector(cmd.InOrStdin())
	default:
		f, err := os.Open(predictInput)
		if err != nil {
			return err
		}
		defer f.Close()
		collector = form.NewJSONCollector(f)
	}
	if presenter == nil || predictJSON {
		presenter = form.NewJSONPresenter(out)
	}

	collector = presentingCollector{Collector: collector, presenter: presenter}

	failed := false
	for n := 0; ; n++ {
		_, err := form.Run(ctx, collector, presenter, a.predictor)
		switch {
		case errors.Is(err, io.EOF):
			if n == 0 {
				return errors.New("no record given")
			}
			return exitStatus(failed)
		case errors.Is(err, ml.ErrInvalidRecord), errors.Is(err, ml.ErrPredictionFailure):
			failed = true
		case err != nil:
			// the input stream is unusable past this point
			return errPresented
		}
		if !predictLoop {
			return exitStatus(failed)
		}
	}
}

func exitStatus(failed bool) error {
	if failed {
		return errPresented
	}
	return nil
}

// presentingCollector shows collection failures the same way prediction
// failures are shown, so every error reaching the loop was already presented.
type presentingCollector struct {
	form.Collector
	presenter form.Presenter
}

func (c presentingCollector) CollectRawRecord(ctx context.Context) (ml.RawRecord, error) {
	record, err := c.Collector.CollectRawRecord(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		c.presenter.PresentResult(ml.Result{}, err)
	}
	return record, err
}
