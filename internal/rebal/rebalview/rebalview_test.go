// Copyright 2026 Peter Edge
//
// All rights reserved.

package rebalview

import (
	"testing"

	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/rebaldist"
	"github.com/bufdev/rebal/internal/rebal/rebalexport"
	"github.com/bufdev/rebal/internal/rebal/reballiquidity"
	"github.com/bufdev/rebal/internal/rebal/rebalmodel"
	"github.com/bufdev/rebal/internal/rebal/rebalplan"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestHoldingRows(t *testing.T) {
	t.Parallel()
	record := rebalasset.Record{
		Name:         "Tesouro Selic 2029",
		Class:        rebalasset.ClassPostFixed,
		CurrentValue: decimal.RequireFromString("7000.5"),
		LiquidityTag: "D+1",
	}
	require.Equal(t, []string{"Tesouro Selic 2029", "Pós Fixado", "7000.50", "D+1"}, HoldingToRow(record))
	require.Equal(t, []string{"Tesouro Selic 2029", "Pós Fixado", "R$7.000,50", "D+1"}, HoldingToTableRow(record, "BRL"))
	require.Len(t, HoldingToRow(record), len(HoldingHeaders()))
}

func TestDistributionRows(t *testing.T) {
	t.Parallel()
	distribution := rebaldist.Compute(
		[]rebalasset.Record{
			{Name: "a", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(6000)},
			{Name: "b", Class: rebalasset.ClassInflation, CurrentValue: decimal.NewFromInt(2000)},
		},
		decimal.NewFromInt(2000),
	)
	require.Equal(
		t,
		[][]string{
			{"Pós Fixado", "6000.00", "60.00"},
			{"Inflação", "2000.00", "20.00"},
		},
		DistributionToRows(distribution),
	)
	require.Equal(
		t,
		[][]string{
			{"Pós Fixado", "R$6.000,00", "60.00%"},
			{"Inflação", "R$2.000,00", "20.00%"},
			{"(contribution)", "R$2.000,00", "20.00%"},
		},
		DistributionToTableRows(distribution, "BRL"),
	)
	require.Equal(t, []string{"TOTAL", "R$10.000,00", "100.00%"}, DistributionTotalsTableRow(distribution, "BRL"))
	require.Equal(t, []string{"TOTAL", "R$0,00", "0.00%"}, DistributionTotalsTableRow(rebaldist.Compute(nil, decimal.Zero), "BRL"))
}

func TestModelRows(t *testing.T) {
	t.Parallel()
	model, err := rebalmodel.NewAllocation(
		"Income",
		[]rebalmodel.Weight{
			{Class: rebalasset.ClassPostFixed, Percent: decimal.NewFromInt(60)},
			{Class: rebalasset.ClassInflation, Percent: decimal.RequireFromString("40")},
		},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"Income", "Custom", "Pós Fixado, Inflação"}, ModelToRow(model))
	require.Equal(t, []string{"Inflação", "40.00"}, WeightToRow(model.Weights()[1]))
	require.Equal(t, []string{"Inflação", "40.00%"}, WeightToTableRow(model.Weights()[1]))
}

func TestPlanRows(t *testing.T) {
	t.Parallel()
	model, err := rebalmodel.NewAllocation(
		"Even",
		[]rebalmodel.Weight{
			{Class: rebalasset.ClassPostFixed, Percent: decimal.NewFromInt(50)},
			{Class: rebalasset.ClassInflation, Percent: decimal.NewFromInt(50)},
		},
	)
	require.NoError(t, err)
	distribution := rebaldist.Compute(
		[]rebalasset.Record{
			{Name: "a", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(7000)},
			{Name: "b", Class: rebalasset.ClassInflation, CurrentValue: decimal.NewFromInt(3000)},
		},
		decimal.Zero,
	)
	plan, err := rebalplan.New(distribution, model)
	require.NoError(t, err)
	require.Equal(t, []string{"Inflação", "3000.00", "30.00", "50.00", "5000.00", "2000.00", "increase"}, EntryToRow(plan.Entries[0]))
	require.Equal(
		t,
		[]string{"Pós Fixado", "R$7.000,00", "70.00%", "50.00%", "R$5.000,00", "-R$2.000,00", "decrease"},
		EntryToTableRow(plan.Entries[1], "BRL"),
	)
	require.Equal(
		t,
		[]string{"TOTAL", "R$10.000,00", "", "", "R$10.000,00", "R$2.000,00", ""},
		PlanTotalsTableRow(plan, "BRL"),
	)
	rows := PlanToTableRows(plan, "BRL")
	require.Len(t, rows, 3)
	require.Equal(t, "Inflação", rows[0][0])
	require.Equal(t, "increase", rows[0][6])
	require.Equal(t, []string{"", "", "", "", "", "", ""}, rows[1])
	require.Equal(t, "Pós Fixado", rows[2][0])
	require.Equal(t, "decrease", rows[2][6])
}

func TestReportRows(t *testing.T) {
	t.Parallel()
	record := rebalasset.Record{
		Name:              "CDB",
		Class:             rebalasset.ClassPostFixed,
		CurrentValue:      decimal.NewFromInt(1000),
		ReallocatedAmount: decimal.NewFromInt(500),
		NewValue:          decimal.NewFromInt(1500),
		LiquidityTag:      "D+30",
	}
	require.Equal(t, []string{"Pós Fixado", "CDB", "1000.00", "500.00", "1500.00", "D+30"}, ExportToRow(record))
	require.Equal(t, []string{"Pós Fixado", "CDB", "R$1.000,00", "+R$500,00", "R$1.500,00", "D+30"}, ExportToTableRow(record, "BRL"))
	require.Equal(
		t,
		[]string{"Inflação", "30.00%", "50.00%", "+20.00%", "increase"},
		DifferenceToTableRow(
			rebalexport.Difference{
				Class:           rebalasset.ClassInflation,
				CurrentPercent:  decimal.NewFromInt(30),
				ProposedPercent: decimal.NewFromInt(50),
				Adjustment:      decimal.NewFromInt(20),
				Action:          rebalplan.BucketIncrease,
			},
		),
	)
	require.Equal(
		t,
		[]string{"Até D+60", "R$1.500,00"},
		BandTotalToTableRow(reballiquidity.BandTotal{Band: reballiquidity.BandUpTo60, Value: decimal.NewFromInt(1500)}, "BRL"),
	)
}
