package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pipedash/internal/state"
)

// demoPredictions covers the largest page the API serves.
const demoPredictions = 100

// nowUTC is the clock used for recorded runs.
var nowUTC = func() time.Time { return time.Now().UTC() }

// RecordOptions holds options for the record command.
type RecordOptions struct {
	Demo bool
	From string
}

// NewRecordCommand creates the record command.
func NewRecordCommand() *cobra.Command {
	opts := &RecordOptions{}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a pipeline run in the state store",
		Long: `Store a pipeline run (summary, metrics and sample predictions) so the API
serves it. A running dashboard with --watch refreshes automatically.

The run is read as JSON from --from (use - for stdin), or generated with --demo.`,
		Example: `  # Record the sample run
  pipedash record --demo

  # Record a run produced by the pipeline
  pipedash record --from run.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecord(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Demo, "demo", false, "Record the sample run")
	cmd.Flags().StringVar(&opts.From, "from", "", "Read the run as JSON from a file, or - for stdin")
	cmd.MarkFlagsMutuallyExclusive("demo", "from")
	cmd.MarkFlagsOneRequired("demo", "from")

	return cmd
}

func runRecord(cmd *cobra.Command, opts *RecordOptions) error {
	cc := NewCommandContext(cmd)

	var run *state.Run
	if opts.Demo {
		run = state.DemoRun(nowUTC(), demoPredictions)
	} else {
		var err error
		run, err = readRun(cmd.InOrStdin(), opts.From)
		if err != nil {
			return err
		}
	}

	store, err := cc.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.RecordRun(cmd.Context(), run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	cc.Logger.Debug("run recorded", "id", run.ID, "state", cc.Cfg.StatePath)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recorded run %s (%s, %d predictions)\n",
		run.ID, run.Status, len(run.Predictions))
	return nil
}

// readRun decodes a run from path, or from stdin when path is "-".
func readRun(stdin io.Reader, path string) (*state.Run, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path) //nolint:gosec // user-supplied input file
		if err != nil {
			return nil, fmt.Errorf("failed to open run file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var run state.Run
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&run); err != nil {
		return nil, fmt.Errorf("invalid run JSON: %w", err)
	}
	if err := validateRun(&run); err != nil {
		return nil, err
	}
	if run.CompletedAt.IsZero() {
		run.CompletedAt = nowUTC()
	}
	return &run, nil
}

func validateRun(run *state.Run) error {
	var errs []error
	switch run.Status {
	case state.RunStatusOK, state.RunStatusDegraded, state.RunStatusFailed:
	case "":
		run.Status = state.RunStatusOK
	default:
		errs = append(errs, fmt.Errorf("unknown status %q", run.Status))
	}
	if run.RowsIngested < 0 || run.RowsValidated < 0 || run.RowsFailed < 0 {
		errs = append(errs, errors.New("row counts must not be negative"))
	}
	if run.ModelVersion == "" {
		errs = append(errs, errors.New("model_version is required"))
	}
	for i, m := range run.Metrics {
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("metrics[%d]: name is required", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}
	return nil
}
