package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stocklens/backend/config"
	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/infrastructure/storage"
	"github.com/stocklens/backend/internal/usecase"
)

func NewRecentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent <retailer>",
		Short: "List a retailer's recent searches",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecent,
	}

	addStorageFlags(cmd)
	cmd.Flags().Int("limit", 0, "Number of searches to show (default from config)")

	return cmd
}

func NewStoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List the recent-search stores kept in the database",
		Args:  cobra.NoArgs,
		RunE:  runStores,
	}

	addStorageFlags(cmd)

	return cmd
}

func NewClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear <retailer>",
		Short: "Delete a retailer's recent searches",
		Args:  cobra.ExactArgs(1),
		RunE:  runClear,
	}

	addStorageFlags(cmd)

	return cmd
}

func addStorageFlags(cmd *cobra.Command) {
	cmd.Flags().String("db", "", "SQLite database path (default from config)")
	cmd.Flags().String("schema-version", "", "Storage schema version (default from config)")
}

// storageSettings resolves flags against the loaded configuration. The
// configuration is only read when a flag is missing.
type storageSettings struct {
	path          string
	schemaVersion string
	maxRecent     int
	feedLimit     int
}

func resolveStorage(cmd *cobra.Command) (storageSettings, error) {
	path, _ := cmd.Flags().GetString("db")
	schemaVersion, _ := cmd.Flags().GetString("schema-version")

	settings := storageSettings{path: path, schemaVersion: schemaVersion}
	if path != "" && schemaVersion != "" {
		return settings, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return settings, err
	}
	if cfg.Storage.Type != "sqlite" && settings.path == "" {
		return settings, fmt.Errorf("storage type %q has no database; pass --db", cfg.Storage.Type)
	}
	if settings.path == "" {
		settings.path = cfg.Storage.Path
	}
	if settings.schemaVersion == "" {
		settings.schemaVersion = cfg.Storage.SchemaVersion
	}
	settings.maxRecent = cfg.Persistence.MaxRecent
	settings.feedLimit = cfg.Persistence.FeedLimit
	return settings, nil
}

func runRecent(cmd *cobra.Command, args []string) error {
	r, err := domain.ParseRetailer(args[0])
	if err != nil {
		return err
	}

	settings, err := resolveStorage(cmd)
	if err != nil {
		return err
	}

	store, err := storage.OpenSqlite(settings.path)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	svc := usecase.NewPersistenceService(store, usecase.PersistenceServiceConfig{
		SchemaVersion: settings.schemaVersion,
		MaxRecent:     settings.maxRecent,
		FeedLimit:     settings.feedLimit,
	})
	feed := svc.RecentFeed(cmd.Context(), r, limit)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return outputJSON(cmd, feed)
	}

	out := cmd.OutOrStdout()
	for _, search := range feed {
		fmt.Fprintf(out, "%s  %-12s %s\n", shortDigest(search.Digest), search.SKU, search.Title)
	}
	return nil
}

func runStores(cmd *cobra.Command, _ []string) error {
	settings, err := resolveStorage(cmd)
	if err != nil {
		return err
	}

	store, err := storage.OpenSqlite(settings.path)
	if err != nil {
		return err
	}
	defer store.Close()

	prefix := "persisted-search--"
	keys, err := store.Keys(cmd.Context(), prefix)
	if err != nil {
		return err
	}

	suffix := "--" + settings.schemaVersion
	for _, key := range keys {
		if !strings.HasSuffix(key, suffix) {
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSuffix(strings.TrimPrefix(key, prefix), suffix))
	}
	return nil
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

func runClear(cmd *cobra.Command, args []string) error {
	r, err := domain.ParseRetailer(args[0])
	if err != nil {
		return err
	}

	settings, err := resolveStorage(cmd)
	if err != nil {
		return err
	}

	store, err := storage.OpenSqlite(settings.path)
	if err != nil {
		return err
	}
	defer store.Close()

	key := usecase.StorageKey(r, settings.schemaVersion)
	if err := store.Delete(cmd.Context(), key); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", key)
	return nil
}
