// Copyright 2026 Peter Edge
//
// All rights reserved.

package reballiquidity

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"   ", ""},
		{"30", "D+30"},
		{"007", "D+7"},
		{"D+30", "D+30"},
		{"d + 30", "D+30"},
		{"D+0 (à mercado)", "D+0 (à mercado)"},
		{"d+0   (à mercado)", "D+0 (à mercado)"},
		{"no maturity date", NoMaturityDate},
		{"No Maturity Date", NoMaturityDate},
		{"at maturity", AtMaturity},
		{"soon", ""},
		{"D+", ""},
		{"-5", ""},
	}
	for _, test := range tests {
		require.Equal(t, test.want, Normalize(test.input), "Normalize(%q)", test.input)
	}
}

func TestExportTag(t *testing.T) {
	t.Parallel()
	require.Equal(t, "D+90", ExportTag("90"))
	require.Equal(t, "D+90", ExportTag("D+90"))
	require.Equal(t, NoMaturityDate, ExportTag(NoMaturityDate))
	require.Equal(t, "whatever", ExportTag("whatever"))
	require.Equal(t, "", ExportTag(""))
}

func TestDays(t *testing.T) {
	t.Parallel()
	days, ok := Days("D+181")
	require.True(t, ok)
	require.Equal(t, 181, days)
	_, ok = Days(AtMaturity)
	require.False(t, ok)
	days, ok = Days(Normalize("99999999999999999999"))
	require.True(t, ok)
	require.Equal(t, math.MaxInt, days)
}

func TestBandFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		tag  string
		want Band
	}{
		{"", BandD0},
		{NoMaturityDate, BandD0},
		{"D+0", BandD0},
		{"D+0 (à mercado)", BandD0Market},
		{"D+1", BandUpTo5},
		{"D+5", BandUpTo5},
		{"D+6", BandUpTo15},
		{"D+15", BandUpTo15},
		{"D+16", BandUpTo60},
		{"D+60", BandUpTo60},
		{"D+61", BandUpTo180},
		{"D+180", BandUpTo180},
		{"D+181", BandAbove180},
		{Normalize("99999999999999999999"), BandAbove180},
	}
	for _, test := range tests {
		require.Equal(t, test.want, BandFor(test.tag), "BandFor(%q)", test.tag)
	}
}

func TestProfile(t *testing.T) {
	t.Parallel()
	got := Profile(
		[]Exposure{
			{Tag: "D+1", Value: decimal.NewFromInt(100)},
			{Tag: "D+3", Value: decimal.NewFromInt(50)},
			{Tag: "", Value: decimal.NewFromInt(25)},
			{Tag: "D+365", Value: decimal.NewFromInt(10)},
		},
	)
	want := []BandTotal{
		{Band: BandAbove180, Value: decimal.NewFromInt(10)},
		{Band: BandUpTo180, Value: decimal.Zero},
		{Band: BandUpTo60, Value: decimal.Zero},
		{Band: BandUpTo15, Value: decimal.Zero},
		{Band: BandUpTo5, Value: decimal.NewFromInt(150)},
		{Band: BandD0, Value: decimal.NewFromInt(25)},
		{Band: BandD0Market, Value: decimal.Zero},
	}
	require.Empty(t, cmp.Diff(want, got, cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })))
}

func TestTableResolver(t *testing.T) {
	t.Parallel()
	resolver := TableResolver{
		"Tesouro Selic 2029": "d+1",
		"CDB Banco X":        "720",
	}
	require.Equal(t, "D+1", resolver.ResolveLiquidity("Tesouro Selic 2029"))
	require.Equal(t, "D+720", resolver.ResolveLiquidity("cdb banco x"))
	require.Equal(t, "", resolver.ResolveLiquidity("unknown"))
}
