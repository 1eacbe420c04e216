package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/internal/digest"
	"github.com/stocklens/backend/internal/domain"
	"github.com/stocklens/backend/internal/infrastructure/storage"
	"github.com/stocklens/backend/internal/usecase"
)

const bestBuyPayload = `{
  "locations": [
    {"id": "1402", "name": "Eden Prairie", "address": "8251 Flying Cloud Dr", "city": "Eden Prairie", "state": "MN", "zipCode": "55344"},
    {"id": "0011", "name": "Bloomington", "address": "60 E Broadway", "city": "Bloomington", "state": "MN", "zipCode": "55425"}
  ],
  "items": [
    {"sku": "6522225", "locations": [
      {"locationId": "1402", "availability": {"availablePickupQuantity": 3}, "inStoreAvailability": {"availableInStoreQuantity": 3}},
      {"locationId": "0011", "availability": {"availablePickupQuantity": 0}, "inStoreAvailability": {}}
    ]}
  ]
}`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd("test")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePayload(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
	return path
}

func TestAdaptCmd(t *testing.T) {
	t.Run("prints one row per store", func(t *testing.T) {
		out, err := execute(t, "", "adapt", "bestbuy", writePayload(t, bestBuyPayload))
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "1402")
		assert.Contains(t, lines[0], "in stock")
		assert.Contains(t, lines[1], "0011")
		assert.Contains(t, lines[1], "out of stock")
	})

	t.Run("reads stdin and prints JSON", func(t *testing.T) {
		out, err := execute(t, bestBuyPayload, "adapt", "bestbuy", "-", "--json")
		require.NoError(t, err)

		var decoded struct {
			Retailer  domain.Retailer     `json:"retailer"`
			Rows      []domain.DisplayRow `json:"rows"`
			NoResults bool                `json:"noResults"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, domain.Retailer("bestbuy"), decoded.Retailer)
		assert.False(t, decoded.NoResults)
		require.Len(t, decoded.Rows, 2)
		assert.Equal(t, "1402", decoded.Rows[0].LocationID)
		assert.True(t, decoded.Rows[0].InStock)
	})

	t.Run("empty result", func(t *testing.T) {
		out, err := execute(t, "", "adapt", "bestbuy", writePayload(t, `{"locations": [], "items": []}`))
		require.NoError(t, err)
		assert.Equal(t, "no results\n", out)
	})

	t.Run("unknown retailer", func(t *testing.T) {
		_, err := execute(t, "", "adapt", "costco", writePayload(t, bestBuyPayload))
		assert.ErrorIs(t, err, domain.ErrUnknownRetailer)
	})

	t.Run("unknown retailer is rejected before reading the payload", func(t *testing.T) {
		_, err := execute(t, "", "adapt", "costco", filepath.Join(t.TempDir(), "missing.json"))
		assert.ErrorIs(t, err, domain.ErrUnknownRetailer)
	})

	t.Run("malformed payload", func(t *testing.T) {
		_, err := execute(t, "", "adapt", "bestbuy", writePayload(t, `not json`))
		assert.ErrorIs(t, err, domain.ErrAdapter)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "", "adapt", "bestbuy", filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}

func TestDigestCmd(t *testing.T) {
	t.Run("matches the identity digest", func(t *testing.T) {
		identity := domain.SearchIdentity{SKU: "6522225", Title: "Console", Image: "https://img.example/a.png"}
		out, err := execute(t, "", "digest", "--sku", identity.SKU, "--title", identity.Title, "--image", identity.Image)
		require.NoError(t, err)
		assert.Equal(t, digestOf(identity)+"\n", out)
	})

	t.Run("alternate algorithm width", func(t *testing.T) {
		out, err := execute(t, "", "digest", "--sku", "abc", "--algo", "sha-256")
		require.NoError(t, err)
		assert.Len(t, strings.TrimSpace(out), 64)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := execute(t, "", "digest", "--sku", "abc", "--algo", "md5")
		assert.ErrorIs(t, err, domain.ErrUnsupportedAlgorithm)
	})

	t.Run("sku is required", func(t *testing.T) {
		_, err := execute(t, "", "digest", "--title", "x")
		assert.Error(t, err)
	})
}

func TestRecentCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stocklens.db")
	seed(t, dbPath, domain.Retailer("target"),
		domain.SearchIdentity{SKU: "111", Title: "First"},
		domain.SearchIdentity{SKU: "222", Title: "Second"},
	)

	t.Run("most recent first", func(t *testing.T) {
		out, err := execute(t, "", "recent", "target", "--db", dbPath, "--schema-version", "v0")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "Second")
		assert.Contains(t, lines[1], "First")
	})

	t.Run("limit and JSON", func(t *testing.T) {
		out, err := execute(t, "", "recent", "target", "--db", dbPath, "--schema-version", "v0", "--limit", "1", "--json")
		require.NoError(t, err)

		var feed []domain.RecentSearch
		require.NoError(t, json.Unmarshal([]byte(out), &feed))
		require.Len(t, feed, 1)
		assert.Equal(t, "222", feed[0].SKU)
		assert.Equal(t, digestOf(domain.SearchIdentity{SKU: "222", Title: "Second"}), feed[0].Digest)
	})

	t.Run("other retailer is empty", func(t *testing.T) {
		out, err := execute(t, "", "recent", "walmart", "--db", dbPath, "--schema-version", "v0")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("other schema version is empty", func(t *testing.T) {
		out, err := execute(t, "", "recent", "target", "--db", dbPath, "--schema-version", "v1")
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestStoresCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stocklens.db")
	seed(t, dbPath, domain.Retailer("target"), domain.SearchIdentity{SKU: "111"})
	seed(t, dbPath, domain.Retailer("bestbuy"), domain.SearchIdentity{SKU: "222"})

	out, err := execute(t, "", "stores", "--db", dbPath, "--schema-version", "v0")
	require.NoError(t, err)
	assert.Equal(t, "bestbuy\ntarget\n", out)
}

func TestClearCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "stocklens.db")
	seed(t, dbPath, domain.Retailer("target"), domain.SearchIdentity{SKU: "111"})
	seed(t, dbPath, domain.Retailer("bestbuy"), domain.SearchIdentity{SKU: "222"})

	out, err := execute(t, "", "clear", "target", "--db", dbPath, "--schema-version", "v0")
	require.NoError(t, err)
	assert.Equal(t, "cleared persisted-search--target--v0\n", out)

	out, err = execute(t, "", "recent", "target", "--db", dbPath, "--schema-version", "v0")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = execute(t, "", "stores", "--db", dbPath, "--schema-version", "v0")
	require.NoError(t, err)
	assert.Equal(t, "bestbuy\n", out)

	_, err = execute(t, "", "clear", "costco", "--db", dbPath, "--schema-version", "v0")
	assert.ErrorIs(t, err, domain.ErrUnknownRetailer)
}

func seed(t *testing.T, dbPath string, retailer domain.Retailer, identities ...domain.SearchIdentity) {
	t.Helper()

	store, err := storage.OpenSqlite(dbPath)
	require.NoError(t, err)
	defer store.Close()

	svc := usecase.NewPersistenceService(store, usecase.PersistenceServiceConfig{SchemaVersion: "v0"})
	for _, identity := range identities {
		svc.Persist(context.Background(), retailer, identity)
	}
}

func digestOf(identity domain.SearchIdentity) string {
	return digest.Identity(identity)
}
