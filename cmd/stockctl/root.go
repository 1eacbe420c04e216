package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stockctl",
		Short:         "Retailer stock payload tooling",
		Long:          `Adapt raw retailer payloads, compute search digests and inspect recent searches.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")

	rootCmd.AddCommand(
		NewAdaptCmd(),
		NewDigestCmd(),
		NewRecentCmd(),
		NewStoresCmd(),
		NewClearCmd(),
	)

	return rootCmd
}

func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
