package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() (*cobra.Command, *commandContext) {
	var dataPath string
	var logLevel string
	var jsonOut bool

	ctx := newCommandContext(&dataPath, &logLevel, &jsonOut)

	rootCmd := &cobra.Command{
		Use:   "sushectl",
		Short: "SuShe album catalog maintenance",
		Long: `sushectl maintains the shared album catalog behind SuShe lists:
it finds releases that drifted across multiple identifiers, previews and
applies the repoints that converge them, reconciles hand-entered albums with
their canonical records, and imports legacy library exports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Data directory (default: $SUSHE_DATA_PATH or ~/SuShe/data)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit results as JSON")

	rootCmd.AddCommand(newDuplicatesCommand(ctx))
	rootCmd.AddCommand(newAuditCommand(ctx))
	rootCmd.AddCommand(newFixCommand(ctx))
	rootCmd.AddCommand(newReconcileCommand(ctx))
	rootCmd.AddCommand(newMergeCommand(ctx))
	rootCmd.AddCommand(newExcludeCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newEventsCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newSeedCommand(ctx))

	return rootCmd, ctx
}
