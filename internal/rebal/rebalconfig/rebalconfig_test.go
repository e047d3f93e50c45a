// Copyright 2026 Peter Edge
//
// All rights reserved.

package rebalconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/rebalmodel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestInitConfigTemplateIsValid(t *testing.T) {
	t.Parallel()
	dirPath := filepath.Join(t.TempDir(), "client")
	filePath, err := InitConfig(dirPath)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dirPath, "rebal.yaml"), filePath)
	config, err := ReadConfig(dirPath)
	require.NoError(t, err)
	require.Equal(t, "BRL", config.CurrencyCode)
	require.Equal(t, "holdings.yaml", config.HoldingsFile)
	require.Equal(t, rebalmodel.NamedModelNames(), config.Catalog.Names())
	require.NoError(t, ValidateConfigFile(filePath))

	_, err = InitConfig(dirPath)
	require.Error(t, err)
}

func TestReadConfig(t *testing.T) {
	t.Parallel()
	dirPath := t.TempDir()
	writeConfig(
		t,
		dirPath,
		`version: v1
currency: usd
holdings_file: statement.csv
liquidity:
  Tesouro Selic 2029: "1"
classes:
  CDB Banco X: Pós-Fixado
models:
  - name: Income
    weights:
      - class: post_fixed
        percent: "60"
      - class: Inflação
        percent: "40,0"
`,
	)
	config, err := ReadConfig(dirPath)
	require.NoError(t, err)
	require.Equal(t, "USD", config.CurrencyCode)
	require.Equal(t, "statement.csv", config.HoldingsFile)
	require.Equal(t, "D+1", config.LiquidityResolver.ResolveLiquidity("Tesouro Selic 2029"))
	class, ok := config.ClassOverride("cdb banco x")
	require.True(t, ok)
	require.Equal(t, rebalasset.ClassPostFixed, class)
	_, ok = config.ClassOverride("NTN-B 2035")
	require.False(t, ok)
	model, err := config.Catalog.Get("income")
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(40).Equal(model.Percent(rebalasset.ClassInflation)))
}

func TestReadConfigErrors(t *testing.T) {
	t.Parallel()
	_, err := ReadConfig(t.TempDir())
	require.ErrorContains(t, err, "rebal config init")

	for name, content := range map[string]string{
		"version":       "version: v2\n",
		"unknown field": "version: v1\nfoo: bar\n",
		"currency":      "version: v1\ncurrency: XXXX\n",
		"class":         "version: v1\nmodels:\n  - name: m\n    weights:\n      - class: crypto\n        percent: \"100\"\n",
		"percent":       "version: v1\nmodels:\n  - name: m\n    weights:\n      - class: cash\n        percent: lots\n",
		"classes":       "version: v1\nclasses:\n  CDB: crypto\n",
		"shadow":        "version: v1\nmodels:\n  - name: Moderate\n    weights:\n      - class: cash\n        percent: \"100\"\n",
	} {
		dirPath := t.TempDir()
		writeConfig(t, dirPath, content)
		_, err := ReadConfig(dirPath)
		require.Error(t, err, name)
	}

	dirPath := t.TempDir()
	writeConfig(t, dirPath, "version: v1\nmodels:\n  - name: half\n    weights:\n      - class: cash\n        percent: \"50\"\n")
	_, err = ReadConfig(dirPath)
	var invalidModelError *rebalmodel.InvalidModelError
	require.True(t, errors.As(err, &invalidModelError))
}

func writeConfig(t *testing.T, dirPath string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dirPath, "rebal.yaml"), []byte(content), 0o644))
}
