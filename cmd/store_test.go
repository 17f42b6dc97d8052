package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/po-matcher/internal/config"
	"github.com/sells-group/po-matcher/internal/intake"
	"github.com/sells-group/po-matcher/internal/model"
)

// withConfig installs c as the global config for the duration of the test.
func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	prev := cfg
	cfg = c
	t.Cleanup(func() { cfg = prev })
}

func TestOpenStore_SQLite(t *testing.T) {
	withConfig(t, &config.Config{Store: config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "orders.db"),
	}})
	ctx := context.Background()

	st, err := openStore(ctx)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	require.NoError(t, st.ConfirmMatches(ctx, []model.ConfirmedMatch{
		{POItem: "Bolt M6", CatalogItemID: "C1", CatalogItemDescription: "Hex Bolt M6"},
	}))
	orders, err := st.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Bolt M6", orders[0].POItem)
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	withConfig(t, &config.Config{Store: config.StoreConfig{Driver: "mysql"}})

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitStorage_Local(t *testing.T) {
	dir := t.TempDir()
	withConfig(t, &config.Config{Uploads: config.UploadsConfig{Driver: "local", Dir: dir}})

	storage, err := initStorage(context.Background())
	require.NoError(t, err)
	local, ok := storage.(*intake.LocalStorage)
	require.True(t, ok)
	assert.Equal(t, dir, local.Dir())
}

func TestInitStorage_Unsupported(t *testing.T) {
	withConfig(t, &config.Config{Uploads: config.UploadsConfig{Driver: "ftp"}})

	_, err := initStorage(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported uploads driver")
}

func TestInitPipeline_Local(t *testing.T) {
	withConfig(t, &config.Config{
		Uploads:    config.UploadsConfig{Driver: "local", Dir: t.TempDir()},
		Extraction: config.UpstreamConfig{URL: "http://127.0.0.1:1/extract", TimeoutSecs: 5},
		Matching:   config.UpstreamConfig{URL: "http://127.0.0.1:1/match", TimeoutSecs: 5, RatePerSec: 1},
	})

	p, err := initPipeline(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, p)
}
