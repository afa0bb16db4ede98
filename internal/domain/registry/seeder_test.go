package registry

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeederFormats(t *testing.T) {
	fsys := fstest.MapFS{
		"stock/inventory.yaml": {Data: []byte(`
key: inventory
title: Inventory
icon: Clipboard
category: stock
order: 40
tags: [counting]
`)},
		"purchasing/orders.toml": {Data: []byte(`
key = "purchase-orders"
title = "Purchase Orders"
icon = "ShoppingCart"
category = "purchasing"
order = 20
`)},
		"reports.json": {Data: []byte(`{"modules":[
			{"key":"stock-report","title":"Stock Report","category":"reports"},
			{"key":"supplier-report","title":"Supplier Report","category":"reports","requiredRole":"admin"}
		]}`)},
		"many.yml": {Data: []byte(`
modules:
  - key: transfers
    title: Transfers
    category: warehouse
`)},
		"README.md": {Data: []byte("ignored")},
	}

	catalog := NewCatalog()
	result, err := NewSeederFS(catalog, fsys, "test", zap.NewNop()).Seed()
	require.NoError(t, err)

	assert.Equal(t, 4, result.Files)
	assert.Equal(t, 5, result.Loaded)
	assert.Equal(t, 0, result.Failed)

	inv, ok := catalog.Get("inventory")
	require.True(t, ok)
	assert.Equal(t, "Clipboard", inv.Icon)
	assert.Equal(t, 40, inv.Order)
	assert.Equal(t, []string{"counting"}, inv.Tags)

	po, ok := catalog.Get("purchase-orders")
	require.True(t, ok)
	assert.Equal(t, "Purchase Orders", po.Title)

	report, ok := catalog.Get("supplier-report")
	require.True(t, ok)
	assert.Equal(t, "admin", report.RequiredRole)

	_, ok = catalog.Get("transfers")
	assert.True(t, ok)
}

func TestSeederSkipsBadManifests(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.json": {Data: []byte(`{not json`)},
		"empty.yaml":  {Data: []byte(`title: No Key`)},
		"badkey.json": {Data: []byte(`{"key":"Bad Key","title":"x"}`)},
		"good.json":   {Data: []byte(`{"key":"good","title":"Good"}`)},
	}

	catalog := NewCatalog()
	result, err := NewSeederFS(catalog, fsys, "test", nil).Seed()
	require.NoError(t, err)

	assert.Equal(t, 1, result.Loaded)
	assert.Equal(t, 3, result.Failed)
	assert.ElementsMatch(t, []string{"broken.json", "empty.yaml"}, result.Skipped)
	assert.Equal(t, 1, catalog.Len())
}

func TestSeederMissingDirectory(t *testing.T) {
	catalog := NewCatalog()
	result, err := NewSeeder(catalog, "/definitely/not/here", zap.NewNop()).Seed()
	require.NoError(t, err)
	assert.Zero(t, result.Files)
}
