// Copyright 2026 Peter Edge
//
// All rights reserved.

package rebaledit

import (
	"errors"
	"sync"
	"testing"

	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/rebaldist"
	"github.com/bufdev/rebal/internal/rebal/rebalmodel"
	"github.com/bufdev/rebal/internal/rebal/rebalplan"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestValueNeutralRebalance(t *testing.T) {
	t.Parallel()
	state := newTestState(
		t,
		[]rebalasset.Record{
			{Name: "Tesouro Selic 2029", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(7000)},
			{Name: "NTN-B 2035", Class: rebalasset.ClassInflation, CurrentValue: decimal.NewFromInt(3000)},
		},
		decimal.Zero,
		fifty(rebalasset.ClassPostFixed),
		fifty(rebalasset.ClassInflation),
	)
	require.True(t, state.RemainingBalance().IsZero())
	require.True(t, state.CanAdvance())
	guidance, ok := state.Guidance(rebalasset.ClassInflation)
	require.True(t, ok)
	require.Equal(t, DirectionIncrease, guidance.Direction)
	require.Equal(t, "increase by R$2.000,00", guidance.Text("BRL"))
	guidance, ok = state.Guidance(rebalasset.ClassPostFixed)
	require.True(t, ok)
	require.Equal(t, "decrease by R$2.000,00", guidance.Text("BRL"))

	state, err := Apply(state, EditRow{Class: rebalasset.ClassInflation, Row: 0, ReallocatedAmount: decimal.NewFromInt(2000)})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(2000).Equal(state.RemainingBalance()))
	require.False(t, state.CanAdvance())
	var unbalancedError *UnbalancedError
	require.True(t, errors.As(state.Finalize(), &unbalancedError))

	state, err = Apply(state, EditRow{Class: rebalasset.ClassPostFixed, Row: 0, ReallocatedAmount: decimal.NewFromInt(-2000)})
	require.NoError(t, err)
	require.True(t, state.RemainingBalance().IsZero())
	require.True(t, state.CanAdvance())
	require.NoError(t, state.Finalize())

	totalCurrent := decimal.Zero
	totalNew := decimal.Zero
	for _, table := range state.Tables() {
		totalCurrent = totalCurrent.Add(table.TotalCurrent())
		totalNew = totalNew.Add(table.TotalNew())
	}
	require.True(t, totalCurrent.Equal(totalNew))
	for _, summary := range state.Summaries() {
		require.Equal(t, DirectionBalanced, summary.Guidance.Direction, summary.Class.String())
		require.Equal(t, "balanced", summary.Guidance.Text("BRL"))
	}
}

func TestContributionFlow(t *testing.T) {
	t.Parallel()
	state := newTestState(
		t,
		nil,
		decimal.NewFromInt(10000),
		rebalmodel.Weight{Class: rebalasset.ClassPostFixed, Percent: decimal.NewFromInt(60)},
		rebalmodel.Weight{Class: rebalasset.ClassInflation, Percent: decimal.NewFromInt(40)},
	)
	require.True(t, decimal.NewFromInt(10000).Equal(state.RemainingBalance()))
	require.False(t, state.CanAdvance())

	state, err := Apply(state, AddRow{Class: rebalasset.ClassPostFixed, AssetName: "CDB Novo", ReallocatedAmount: decimal.NewFromInt(6000)})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(4000).Equal(state.RemainingBalance()))
	state, err = Apply(state, AddRow{Class: rebalasset.ClassInflation, AssetName: "NTN-B 2030", ReallocatedAmount: decimal.NewFromInt(4000)})
	require.NoError(t, err)
	require.True(t, state.RemainingBalance().IsZero())
	require.True(t, state.CanAdvance())

	table, ok := state.Table(rebalasset.ClassInflation)
	require.True(t, ok)
	require.True(t, table.LiquidityEditable())
	row, ok := table.Row(0)
	require.True(t, ok)
	require.True(t, row.Synthetic)
	require.True(t, row.CurrentValue.IsZero())
	require.True(t, decimal.NewFromInt(4000).Equal(row.NewValue))

	state, err = Apply(state, EditLiquidity{Class: rebalasset.ClassInflation, Row: 0, LiquidityTag: "30"})
	require.NoError(t, err)
	table, _ = state.Table(rebalasset.ClassInflation)
	row, _ = table.Row(0)
	require.Equal(t, "D+30", row.LiquidityTag)

	state, err = Apply(state, EditLiquidity{Class: rebalasset.ClassInflation, Row: 0, LiquidityTag: "whenever"})
	require.NoError(t, err)
	table, _ = state.Table(rebalasset.ClassInflation)
	row, _ = table.Row(0)
	require.Equal(t, "", row.LiquidityTag)
}

func TestLiquidityReadOnlyWithoutContribution(t *testing.T) {
	t.Parallel()
	state := newTestState(
		t,
		[]rebalasset.Record{
			{Name: "a", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(100), LiquidityTag: "D+1"},
		},
		decimal.Zero,
		rebalmodel.Weight{Class: rebalasset.ClassPostFixed, Percent: decimal.NewFromInt(100)},
	)
	next, err := Apply(state, EditLiquidity{Class: rebalasset.ClassPostFixed, Row: 0, LiquidityTag: "D+30"})
	require.Error(t, err)
	require.Same(t, state, next)
}

func TestNegativeGuard(t *testing.T) {
	t.Parallel()
	state := newTestState(
		t,
		[]rebalasset.Record{
			{Name: "Tesouro Selic 2029", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(7000)},
			{Name: "NTN-B 2035", Class: rebalasset.ClassInflation, CurrentValue: decimal.NewFromInt(3000)},
		},
		decimal.Zero,
		fifty(rebalasset.ClassPostFixed),
		fifty(rebalasset.ClassInflation),
	)
	state, err := Apply(state, EditRow{Class: rebalasset.ClassPostFixed, Row: 0, ReallocatedAmount: decimal.NewFromInt(-8000)})
	var negativeResultError *NegativeResultError
	require.True(t, errors.As(err, &negativeResultError))
	require.Equal(t, rebalasset.ClassPostFixed, negativeResultError.Class)
	require.Equal(t, 0, negativeResultError.Row)
	require.True(t, decimal.NewFromInt(-1000).Equal(negativeResultError.NewValue))
	// The edit is recorded and advancing is blocked right away.
	table, _ := state.Table(rebalasset.ClassPostFixed)
	row, _ := table.Row(0)
	require.True(t, decimal.NewFromInt(-1000).Equal(row.NewValue))
	require.False(t, state.CanAdvance())

	// Balancing the remaining amount does not lift the guard.
	state, err = Apply(state, EditRow{Class: rebalasset.ClassInflation, Row: 0, ReallocatedAmount: decimal.NewFromInt(8000)})
	require.NoError(t, err)
	require.True(t, state.RemainingBalance().IsZero())
	require.False(t, state.CanAdvance())
	err = state.Finalize()
	require.True(t, errors.As(err, &negativeResultError))
	var unbalancedError *UnbalancedError
	require.False(t, errors.As(err, &unbalancedError))

	state, err = Apply(state, EditRow{Class: rebalasset.ClassPostFixed, Row: 0, ReallocatedAmount: decimal.NewFromInt(-7000)})
	require.NoError(t, err)
	state, err = Apply(state, EditRow{Class: rebalasset.ClassInflation, Row: 0, ReallocatedAmount: decimal.NewFromInt(7000)})
	require.NoError(t, err)
	require.True(t, state.CanAdvance())
}

func TestNegativeReportedOnlyForChangedRow(t *testing.T) {
	t.Parallel()
	state := newTestState(
		t,
		[]rebalasset.Record{
			{Name: "a", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(100)},
			{Name: "b", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(100)},
		},
		decimal.Zero,
		rebalmodel.Weight{Class: rebalasset.ClassPostFixed, Percent: decimal.NewFromInt(100)},
	)
	state, err := Apply(state, EditRow{Class: rebalasset.ClassPostFixed, Row: 0, ReallocatedAmount: decimal.NewFromInt(-150)})
	var negativeResultError *NegativeResultError
	require.True(t, errors.As(err, &negativeResultError))
	require.Equal(t, 0, negativeResultError.Row)

	// Editing another row of the same table does not report row 0 again.
	state, err = Apply(state, EditRow{Class: rebalasset.ClassPostFixed, Row: 1, ReallocatedAmount: decimal.NewFromInt(150)})
	require.NoError(t, err)
	state, err = Apply(state, AddRow{Class: rebalasset.ClassPostFixed, AssetName: "c", ReallocatedAmount: decimal.NewFromInt(-10)})
	require.True(t, errors.As(err, &negativeResultError))
	require.Equal(t, 2, negativeResultError.Row)
	require.Equal(t, "c", negativeResultError.AssetName)
	state, err = Apply(state, RemoveRow{Class: rebalasset.ClassPostFixed, Row: 2})
	require.NoError(t, err)

	// The guard still holds until the row is fixed.
	require.False(t, state.CanAdvance())
	require.True(t, errors.As(state.Finalize(), &negativeResultError))
	require.Equal(t, 0, negativeResultError.Row)
}

func TestRemoveSeededRowWithoutContribution(t *testing.T) {
	t.Parallel()
	state := newTestState(
		t,
		[]rebalasset.Record{
			{Name: "Tesouro Selic 2029", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(7000)},
			{Name: "NTN-B 2035", Class: rebalasset.ClassInflation, CurrentValue: decimal.NewFromInt(3000)},
		},
		decimal.Zero,
		fifty(rebalasset.ClassPostFixed),
		fifty(rebalasset.ClassInflation),
	)
	require.True(t, decimal.NewFromInt(10000).Equal(state.SeededTotal()))
	state, err := Apply(state, RemoveRow{Class: rebalasset.ClassPostFixed, Row: 0})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(-7000).Equal(state.RemainingBalance()))
	require.False(t, state.CanAdvance())
	var unbalancedError *UnbalancedError
	require.True(t, errors.As(state.Finalize(), &unbalancedError))
	require.True(t, decimal.NewFromInt(-7000).Equal(unbalancedError.Remaining))

	// The removed value must be placed somewhere else.
	state, err = Apply(state, EditRow{Class: rebalasset.ClassInflation, Row: 0, ReallocatedAmount: decimal.NewFromInt(7000)})
	require.NoError(t, err)
	require.True(t, state.RemainingBalance().IsZero())
	require.True(t, state.CanAdvance())
	require.Len(t, state.Records(), 2)
}

func TestRemoveRow(t *testing.T) {
	t.Parallel()
	state := newTestState(
		t,
		[]rebalasset.Record{
			{Name: "a", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(500)},
			{Name: "b", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(500)},
		},
		decimal.NewFromInt(1000),
		rebalmodel.Weight{Class: rebalasset.ClassPostFixed, Percent: decimal.NewFromInt(100)},
	)
	state, err := Apply(state, AddRow{Class: rebalasset.ClassPostFixed, AssetName: "c", ReallocatedAmount: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	require.True(t, state.CanAdvance())
	state, err = Apply(state, RemoveRow{Class: rebalasset.ClassPostFixed, Row: 2})
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(1000).Equal(state.RemainingBalance()))
	table, _ := state.Table(rebalasset.ClassPostFixed)
	require.Equal(t, 2, table.Len())
	require.True(t, decimal.NewFromInt(1000).Equal(table.TotalNew()))
	require.Equal(t, 2, table.Version())
}

func TestApplyRejects(t *testing.T) {
	t.Parallel()
	state := newTestState(
		t,
		[]rebalasset.Record{
			{Name: "a", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(100)},
		},
		decimal.Zero,
		rebalmodel.Weight{Class: rebalasset.ClassPostFixed, Percent: decimal.NewFromInt(100)},
	)
	next, err := Apply(state, EditRow{Class: rebalasset.ClassCash, Row: 0, ReallocatedAmount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrUnknownClass)
	require.Same(t, state, next)
	next, err = Apply(state, EditRow{Class: rebalasset.ClassPostFixed, Row: 1, ReallocatedAmount: decimal.NewFromInt(1)})
	require.Error(t, err)
	require.Same(t, state, next)
	next, err = Apply(state, RemoveRow{Class: rebalasset.ClassPostFixed, Row: -1})
	require.Error(t, err)
	require.Same(t, state, next)
	next, err = Apply(state, AddRow{Class: rebalasset.ClassPostFixed})
	require.Error(t, err)
	require.Same(t, state, next)
}

func TestApplyIsPure(t *testing.T) {
	t.Parallel()
	state := newTestState(
		t,
		[]rebalasset.Record{
			{Name: "a", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(7000)},
			{Name: "b", Class: rebalasset.ClassInflation, CurrentValue: decimal.NewFromInt(3000)},
		},
		decimal.Zero,
		fifty(rebalasset.ClassPostFixed),
		fifty(rebalasset.ClassInflation),
	)
	next, err := Apply(state, EditRow{Class: rebalasset.ClassPostFixed, Row: 0, ReallocatedAmount: decimal.NewFromInt(-100)})
	require.NoError(t, err)
	before, _ := state.Table(rebalasset.ClassPostFixed)
	after, _ := next.Table(rebalasset.ClassPostFixed)
	require.Equal(t, 0, before.Version())
	require.Equal(t, 1, after.Version())
	row, _ := before.Row(0)
	require.True(t, row.ReallocatedAmount.IsZero())
	require.True(t, state.RemainingBalance().IsZero())
	require.True(t, decimal.NewFromInt(-100).Equal(next.RemainingBalance()))
	untouchedBefore, _ := state.Table(rebalasset.ClassInflation)
	untouchedAfter, _ := next.Table(rebalasset.ClassInflation)
	require.Same(t, untouchedBefore, untouchedAfter)
}

func TestNewTableIdempotent(t *testing.T) {
	t.Parallel()
	records := []rebalasset.Record{
		{Name: "a", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(7000), LiquidityTag: "D+1", Metrics: map[string]string{"bank": "X"}},
		{Name: "b", Class: rebalasset.ClassInflation, CurrentValue: decimal.NewFromInt(3000)},
		{Name: "c", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(10)},
	}
	first := NewTable(rebalasset.ClassPostFixed, records, false)
	second := NewTable(rebalasset.ClassPostFixed, records, false)
	require.Empty(t, cmp.Diff(first, second, cmp.AllowUnexported(Table{}), decimalComparer))
	require.Equal(t, 2, first.Len())
	for _, row := range first.Rows() {
		require.True(t, row.ReallocatedAmount.IsZero())
		require.True(t, row.NewValue.Equal(row.CurrentValue))
	}
}

func TestNewStateRejects(t *testing.T) {
	t.Parallel()
	records := []rebalasset.Record{
		{Name: "a", Class: rebalasset.ClassPostFixed, CurrentValue: decimal.NewFromInt(100)},
	}
	plan := newTestPlan(
		t,
		records,
		decimal.Zero,
		rebalmodel.Weight{Class: rebalasset.ClassPostFixed, Percent: decimal.NewFromInt(100)},
	)
	_, err := NewState(plan, append(records, rebalasset.Record{Name: "unclassified"}))
	var incompleteClassificationError *rebalasset.IncompleteClassificationError
	require.True(t, errors.As(err, &incompleteClassificationError))
	_, err = NewState(plan, append(records, rebalasset.Record{Name: "cash", Class: rebalasset.ClassCash}))
	require.ErrorIs(t, err, ErrUnknownClass)
}

func TestSessionConcurrentEdits(t *testing.T) {
	t.Parallel()
	session := NewSession(
		newTestState(
			t,
			nil,
			decimal.NewFromInt(1000),
			rebalmodel.Weight{Class: rebalasset.ClassCash, Percent: decimal.NewFromInt(100)},
		),
	)
	var waitGroup sync.WaitGroup
	for range 10 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			_, _ = session.Apply(AddRow{Class: rebalasset.ClassCash, AssetName: "Caixa", ReallocatedAmount: decimal.NewFromInt(100)})
		}()
	}
	waitGroup.Wait()
	state := session.State()
	table, ok := state.Table(rebalasset.ClassCash)
	require.True(t, ok)
	require.Equal(t, 10, table.Len())
	require.Equal(t, 10, table.Version())
	require.True(t, state.CanAdvance())
}

func fifty(class rebalasset.Class) rebalmodel.Weight {
	return rebalmodel.Weight{Class: class, Percent: decimal.NewFromInt(50)}
}

func newTestPlan(t *testing.T, records []rebalasset.Record, contribution decimal.Decimal, weights ...rebalmodel.Weight) *rebalplan.Plan {
	t.Helper()
	model, err := rebalmodel.NewAllocation("test", weights)
	require.NoError(t, err)
	plan, err := rebalplan.New(rebaldist.Compute(records, contribution), model)
	require.NoError(t, err)
	return plan
}

func newTestState(t *testing.T, records []rebalasset.Record, contribution decimal.Decimal, weights ...rebalmodel.Weight) *State {
	t.Helper()
	state, err := NewState(newTestPlan(t, records, contribution, weights...), records)
	require.NoError(t, err)
	return state
}
