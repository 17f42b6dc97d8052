package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/po-matcher/internal/model"
)

func sampleOrders() []model.Order {
	now := time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)
	return []model.Order{
		{ID: 2, POItem: "Nut M6", CatalogItemID: "C2", CatalogItemDescription: "Hex Nut M6", CreatedAt: now},
		{ID: 1, POItem: "Bolt M6", CatalogItemID: "C1", CatalogItemDescription: "Hex Bolt M6", CreatedAt: now.Add(-time.Hour)},
	}
}

func TestWriteOrders_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOrders(&buf, sampleOrders(), "table"))

	out := buf.String()
	assert.Contains(t, out, "PO_ITEM")
	assert.Contains(t, out, "CATALOG_ID")
	assert.Contains(t, out, "Nut M6")
	assert.Contains(t, out, "Hex Bolt M6")
	assert.Contains(t, out, "2026-06-15 10:30")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Nut M6")), bytes.Index(buf.Bytes(), []byte("Bolt M6")))
}

func TestWriteOrders_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOrders(&buf, sampleOrders(), "json"))

	var got []model.Order
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, "C1", got[1].CatalogItemID)
}

func TestWriteOrders_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOrders(&buf, sampleOrders(), "yaml"))
	assert.Contains(t, buf.String(), "po_item: Nut M6")

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Hex Bolt M6", got[1]["catalog_item_description"])
}

func TestWriteOrders_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeOrders(&buf, sampleOrders(), "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ÄÖÜ", truncate("ÄÖÜ", 3))
}
