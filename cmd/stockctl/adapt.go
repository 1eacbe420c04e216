package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/infrastructure/retailer"
	"github.com/stocklens/backend/internal/usecase"
)

func NewAdaptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "adapt <retailer> <payload.json|->",
		Short: "Adapt a raw retailer payload and print the store rows",
		Long: `Converts a raw stock API payload into canonical results and reconciles
them into one row per store. Use "-" to read the payload from stdin.`,
		Args: cobra.ExactArgs(2),
		RunE: runAdapt,
	}
}

type adaptOutput struct {
	Retailer domain.Retailer       `json:"retailer"`
	Results  *domain.SearchResults `json:"results"`
	*domain.Reconciliation
}

func runAdapt(cmd *cobra.Command, args []string) error {
	r, err := domain.ParseRetailer(args[0])
	if err != nil {
		return err
	}

	registry := retailer.DefaultRegistry()
	if !registry.Supports(r) {
		return fmt.Errorf("%w: no adapter for %q", domain.ErrUnknownRetailer, r)
	}

	raw, err := readPayload(cmd, args[1])
	if err != nil {
		return err
	}

	results, err := registry.Adapt(r, raw)
	if err != nil {
		return fmt.Errorf("adapt %s payload: %w", r, err)
	}
	reconciliation := usecase.Reconcile(results)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return outputJSON(cmd, adaptOutput{Retailer: r, Results: results, Reconciliation: reconciliation})
	}

	out := cmd.OutOrStdout()
	if reconciliation.NoResults {
		fmt.Fprintln(out, "no results")
		return nil
	}
	for _, row := range reconciliation.Rows {
		status := "out of stock"
		if row.InStock {
			status = "in stock"
		}
		fmt.Fprintf(out, "%-10s %-30s %8.2f km  %-12s qty=%s\n", row.LocationID, row.Name, row.DistanceKm, status, row.Quantity)
	}
	for _, w := range reconciliation.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	return nil
}

func readPayload(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return raw, nil
}
