// Copyright 2026 Peter Edge
//
// All rights reserved.

package rebalinput

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/rebaledit"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestYAMLParser(t *testing.T) {
	t.Parallel()
	rawAssets, err := NewYAMLParser().Parse(
		context.Background(),
		strings.NewReader(`- name: Tesouro Selic 2029
  class: post_fixed
  current_value: "7.000,00"
  liquidity: D+1
  metrics:
    bank: XP
- name: NTN-B 2035
  current_value: "3000"
`),
	)
	require.NoError(t, err)
	require.Equal(
		t,
		[]rebalasset.RawAsset{
			{
				Name:         "Tesouro Selic 2029",
				CurrentValue: "7.000,00",
				ClassHint:    "post_fixed",
				LiquidityTag: "D+1",
				Metrics:      map[string]string{"bank": "XP"},
			},
			{
				Name:         "NTN-B 2035",
				CurrentValue: "3000",
			},
		},
		rawAssets,
	)
}

func TestYAMLParserErrors(t *testing.T) {
	t.Parallel()
	_, err := NewYAMLParser().Parse(context.Background(), strings.NewReader("- name: a\n  foo: bar\n"))
	require.Error(t, err)
	_, err = NewYAMLParser().Parse(context.Background(), strings.NewReader("- current_value: \"1\"\n"))
	require.ErrorContains(t, err, "name is required")
	rawAssets, err := NewYAMLParser().Parse(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, rawAssets)
}

func TestCSVParser(t *testing.T) {
	t.Parallel()
	rawAssets, err := NewCSVParser().Parse(
		context.Background(),
		strings.NewReader(`Name,Class,Current_Value,Liquidity,Bank
Tesouro Selic 2029,Pós Fixado,"7.000,00",1,XP
,,,,
NTN-B 2035,inflation,3000,,
`),
	)
	require.NoError(t, err)
	require.Equal(
		t,
		[]rebalasset.RawAsset{
			{
				Name:         "Tesouro Selic 2029",
				CurrentValue: "7.000,00",
				ClassHint:    "Pós Fixado",
				LiquidityTag: "1",
				Metrics:      map[string]string{"bank": "XP"},
			},
			{
				Name:         "NTN-B 2035",
				CurrentValue: "3000",
				ClassHint:    "inflation",
			},
		},
		rawAssets,
	)
	records, err := rebalasset.FromRaw(rawAssets, nil)
	require.NoError(t, err)
	require.Equal(t, rebalasset.ClassPostFixed, records[0].Class)
	require.True(t, decimal.NewFromInt(7000).Equal(records[0].CurrentValue))
}

func TestCSVParserMissingColumns(t *testing.T) {
	t.Parallel()
	_, err := NewCSVParser().Parse(context.Background(), strings.NewReader("class,current_value\n"))
	require.ErrorContains(t, err, `"name"`)
	_, err = NewCSVParser().Parse(context.Background(), strings.NewReader("name,class\n"))
	require.ErrorContains(t, err, `"current_value"`)
}

func TestReadHoldingsFile(t *testing.T) {
	t.Parallel()
	dirPath := t.TempDir()
	csvFilePath := filepath.Join(dirPath, "statement.CSV")
	require.NoError(t, os.WriteFile(csvFilePath, []byte("name,current_value\nCDB,100\n"), 0o644))
	rawAssets, err := ReadHoldingsFile(context.Background(), csvFilePath)
	require.NoError(t, err)
	require.Equal(t, []rebalasset.RawAsset{{Name: "CDB", CurrentValue: "100"}}, rawAssets)

	yamlFilePath := filepath.Join(dirPath, "holdings.yaml")
	require.NoError(t, os.WriteFile(yamlFilePath, []byte("- name: CDB\n  current_value: \"100\"\n"), 0o644))
	rawAssets, err = ReadHoldingsFile(context.Background(), yamlFilePath)
	require.NoError(t, err)
	require.Equal(t, []rebalasset.RawAsset{{Name: "CDB", CurrentValue: "100"}}, rawAssets)

	_, err = ReadHoldingsFile(context.Background(), filepath.Join(dirPath, "missing.yaml"))
	require.ErrorContains(t, err, "not found")
}

func TestReadEdits(t *testing.T) {
	t.Parallel()
	edits, err := ReadEdits(
		strings.NewReader(`- op: edit_row
  class: inflation
  row: 0
  amount: "-2.000,00"
- op: add_row
  class: Pós Fixado
  name: CDB Banco Y
  amount: "2000"
- op: remove_row
  class: cash
  row: 1
- op: edit_liquidity
  class: post_fixed
  row: 2
  liquidity: "30"
- op: edit_row
  class: cash
  row: 0
  amount: lots
`),
	)
	require.NoError(t, err)
	require.Empty(
		t,
		cmp.Diff(
			[]rebaledit.Edit{
				rebaledit.EditRow{Class: rebalasset.ClassInflation, Row: 0, ReallocatedAmount: decimal.NewFromInt(-2000)},
				rebaledit.AddRow{Class: rebalasset.ClassPostFixed, AssetName: "CDB Banco Y", ReallocatedAmount: decimal.NewFromInt(2000)},
				rebaledit.RemoveRow{Class: rebalasset.ClassCash, Row: 1},
				rebaledit.EditLiquidity{Class: rebalasset.ClassPostFixed, Row: 2, LiquidityTag: "30"},
				rebaledit.EditRow{Class: rebalasset.ClassCash, Row: 0, ReallocatedAmount: decimal.Zero},
			},
			edits,
			cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
		),
	)
}

func TestReadEditsErrors(t *testing.T) {
	t.Parallel()
	for name, content := range map[string]string{
		"op":            "- op: move_row\n  class: cash\n  row: 0\n",
		"class":         "- op: edit_row\n  class: crypto\n  row: 0\n",
		"missing class": "- op: add_row\n  name: x\n",
		"missing row":   "- op: edit_row\n  class: cash\n  amount: \"1\"\n",
		"unknown field": "- op: edit_row\n  class: cash\n  row: 0\n  foo: bar\n",
	} {
		_, err := ReadEdits(strings.NewReader(content))
		require.Error(t, err, name)
	}
}
