package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/hostprep/internal/domain/catalog"
	"github.com/felixgeelhaar/hostprep/internal/domain/config"
)

var (
	stepsPackageManager string
	stepsJSON           bool
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the runbook steps in execution order",
	Long: `List the steps the provision command would run, without connecting
to any host. The package manager normally comes from the target's
os-release; pick one here to see the matching OS packages step.`,
	Args: cobra.NoArgs,
	RunE: runSteps,
}

func init() {
	stepsCmd.Flags().StringVar(&stepsPackageManager, "package-manager", "", "package manager to list steps for (apt, dnf)")
	stepsCmd.Flags().BoolVar(&stepsJSON, "json", false, "output as JSON")

	_ = stepsCmd.RegisterFlagCompletionFunc("package-manager", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{catalog.APT, catalog.DNF}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(stepsCmd)
}

// stepEntry is the JSON form of a listed step.
type stepEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func runSteps(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pm := stepsPackageManager
	if pm == "" {
		pm = cfg.Runbook.PackageManager
	}
	if pm == "" {
		pm = catalog.APT
	}

	reg, err := catalog.Build(cfg.Runbook, pm)
	if err != nil {
		return config.NewUsageError(err.Error(), "Use --package-manager apt or --package-manager dnf.")
	}

	out := cmd.OutOrStdout()
	steps := reg.List()

	if stepsJSON {
		entries := make([]stepEntry, len(steps))
		for i, s := range steps {
			entries[i] = stepEntry{Name: s.Name().String(), Description: s.Description()}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	//nolint:errcheck // Tabwriter errors are captured by Flush
	fmt.Fprintln(w, "#\tSTEP\tDESCRIPTION")
	for i, s := range steps {
		//nolint:errcheck // Tabwriter errors are captured by Flush
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, s.Name(), s.Description())
	}
	return w.Flush()
}
