package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/classify"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/forms"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/services"
)

type rootOptions struct {
	Verbose bool
	logger  *zap.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:           "withholdingctl",
		Short:         "Inspect state withholding forms and run worksheets offline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !opts.Verbose {
				return nil
			}
			cfg := zap.NewDevelopmentConfig()
			cfg.OutputPaths = []string{"stderr"}
			l, err := cfg.Build()
			if err != nil {
				return err
			}
			opts.logger = l
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(
		newStatesCommand(opts),
		newClassifyCommand(opts),
		newFormCommand(opts),
		newComputeCommand(opts),
		newValidateCommand(opts),
	)
	return cmd
}

type statesOutput struct {
	Forms             map[string]string `json:"forms"`
	FederalEquivalent []string          `json:"federal_equivalent"`
	NoTax             []string          `json:"no_tax"`
}

func newStatesCommand(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List supported states grouped by disposition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := statesOutput{
				Forms:             forms.FormIDs(),
				FederalEquivalent: slices.Sorted(slices.Values(classify.FederalEquivalentStates)),
				NoTax:             slices.Sorted(slices.Values(classify.NoTaxStates)),
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newClassifyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <state>...",
		Short: "Print the disposition of one or more state codes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range args {
				d := classify.Classify(raw)
				opts.logger.Debug("classified", zap.String("input", raw), zap.String("kind", string(d.Kind)))
				line := fmt.Sprintf("%s\t%s", types.NormalizeStateCode(raw), d.Kind)
				if d.FormID != "" {
					line += "\t" + d.FormID
				}
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newFormCommand(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "form <state>",
		Short: "Print the form definition for a state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, ok := forms.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%s: %w", args[0], types.ErrUnsupportedState)
			}
			return writeJSON(cmd.OutOrStdout(), def)
		},
	}
}

func newComputeCommand(opts *rootOptions) *cobra.Command {
	var valuesPath string
	var federal bool

	cmd := &cobra.Command{
		Use:   "compute <state>",
		Short: "Run the allowance worksheet for a state over a values file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := readValues(cmd.InOrStdin(), valuesPath)
			if err != nil {
				return err
			}
			opts.logger.Debug("computing", zap.String("state", args[0]), zap.Int("values", len(values)))
			p, err := services.Compute(classify.Default(), args[0], values, services.PreviewOptions{UseFederalEquivalent: federal})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().StringVar(&valuesPath, "values", "", "YAML or JSON file of field values, - for stdin")
	cmd.Flags().BoolVar(&federal, "federal", false, "use the federal W-4 for states without their own form")
	return cmd
}

func newValidateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every registered form definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := forms.ValidateAll(); err != nil {
				return err
			}
			opts.logger.Debug("registry valid", zap.Int("states", len(forms.States())))
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d forms OK\n", len(forms.States()))
			return err
		},
	}
}

// readValues accepts JSON as well since it is valid YAML.
func readValues(stdin io.Reader, path string) (types.RawValues, error) {
	if path == "" {
		return types.RawValues{}, nil
	}
	var b []byte
	var err error
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	values := types.RawValues{}
	if err := yaml.Unmarshal(b, &values); err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	return values, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
