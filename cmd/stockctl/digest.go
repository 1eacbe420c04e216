package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stocklens/backend/internal/digest"
	"github.com/stocklens/backend/internal/domain"
)

func NewDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print the digest identifying a search",
		Args:  cobra.NoArgs,
		RunE:  runDigest,
	}

	cmd.Flags().String("sku", "", "Product SKU (required)")
	cmd.Flags().String("title", "", "Product title")
	cmd.Flags().String("image", "", "Product image URL")
	cmd.Flags().String("algo", string(digest.DefaultAlgorithm), "Hash algorithm (SHA-1, SHA-256, SHA-384, SHA-512)")
	_ = cmd.MarkFlagRequired("sku")

	return cmd
}

func runDigest(cmd *cobra.Command, _ []string) error {
	sku, _ := cmd.Flags().GetString("sku")
	title, _ := cmd.Flags().GetString("title")
	image, _ := cmd.Flags().GetString("image")
	algoName, _ := cmd.Flags().GetString("algo")

	algo, err := digest.ParseAlgorithm(algoName)
	if err != nil {
		return err
	}

	identity := domain.SearchIdentity{SKU: sku, Title: title, Image: image}
	sum, err := digest.Sum(digest.IdentityKey(identity), algo)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return outputJSON(cmd, map[string]any{
			"algorithm": algo,
			"digest":    sum,
			"identity":  identity,
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), sum)
	return nil
}
