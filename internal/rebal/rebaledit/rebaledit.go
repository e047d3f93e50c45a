// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rebaledit provides the interactive allocation editor.
//
// A State holds one editable Table per class of a plan. Edits are applied
// with the pure function Apply, which returns a new State and leaves the
// input untouched. Every derived figure (class totals, the remaining
// balance, advance eligibility) is computed from the State on demand, so
// there is never a stale aggregate between an edit and its recomputation.
//
// The planner's per-class deltas are suggestions only. The single global
// gate is the remaining balance: with a contribution it is the contribution
// minus every positive reallocated amount, without one it is Σ new value
// minus the current value of the seeded portfolio, so removing a funded row
// leaves its value unaccounted for until it is reallocated. A State can advance once the remaining balance is
// within one cent of zero and no row has a negative new value.
package rebaledit

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/reballiquidity"
	"github.com/bufdev/rebal/internal/rebal/rebalplan"
	"github.com/shopspring/decimal"
)

// ErrUnknownClass is returned when an edit names a class that has no table.
var ErrUnknownClass = errors.New("class is not in the plan")

// State is the editor state of a whole plan.
//
// States are immutable. Apply returns a new State that shares every table
// the edit did not touch.
type State struct {
	plan        *rebalplan.Plan
	records     []rebalasset.Record
	seededTotal decimal.Decimal
	order       []rebalasset.Class
	tables      map[rebalasset.Class]*Table
}

// NewState seeds a State with one table per class of the plan, in plan
// display order.
//
// Every record must be classified with a class of the plan. Liquidity tags
// are editable if the plan has a positive contribution.
func NewState(plan *rebalplan.Plan, records []rebalasset.Record) (*State, error) {
	if err := rebalasset.ValidateClassification(records); err != nil {
		return nil, err
	}
	order := plan.Order()
	for _, record := range records {
		if !slices.Contains(order, record.Class) {
			return nil, fmt.Errorf("asset %q: %w: %q", record.Name, ErrUnknownClass, record.Class)
		}
	}
	liquidityEditable := plan.Contribution.IsPositive()
	tables := make(map[rebalasset.Class]*Table, len(order))
	seededTotal := decimal.Zero
	for _, class := range order {
		table := NewTable(class, records, liquidityEditable)
		tables[class] = table
		seededTotal = seededTotal.Add(table.TotalCurrent())
	}
	return &State{
		plan:        plan,
		records:     slices.Clone(records),
		seededTotal: seededTotal,
		order:       order,
		tables:      tables,
	}, nil
}

// Plan returns the plan the state was seeded from.
func (s *State) Plan() *rebalplan.Plan {
	return s.plan
}

// Records returns the records the state was seeded from.
func (s *State) Records() []rebalasset.Record {
	return slices.Clone(s.records)
}

// SeededTotal returns the current value of the seeded portfolio.
func (s *State) SeededTotal() decimal.Decimal {
	return s.seededTotal
}

// Contribution returns the active contribution, zero if none.
func (s *State) Contribution() decimal.Decimal {
	return s.plan.Contribution
}

// Order returns the classes in plan display order.
func (s *State) Order() []rebalasset.Class {
	return slices.Clone(s.order)
}

// Table returns the table of a class.
func (s *State) Table(class rebalasset.Class) (*Table, bool) {
	table, ok := s.tables[class]
	return table, ok
}

// Tables returns all tables in plan display order.
func (s *State) Tables() []*Table {
	tables := make([]*Table, len(s.order))
	for i, class := range s.order {
		tables[i] = s.tables[class]
	}
	return tables
}

// RemainingBalance returns the outstanding contribution, or the drift from
// value neutrality if there is no contribution.
func (s *State) RemainingBalance() decimal.Decimal {
	if contribution := s.Contribution(); contribution.IsPositive() {
		remaining := contribution
		for _, table := range s.tables {
			remaining = remaining.Sub(table.TotalAllocated())
		}
		return remaining
	}
	remaining := s.seededTotal.Neg()
	for _, table := range s.tables {
		remaining = remaining.Add(table.TotalNew())
	}
	return remaining
}

// CanAdvance returns true if the remaining balance is within one cent of
// zero and no row has a negative new value.
func (s *State) CanAdvance() bool {
	return s.RemainingBalance().Abs().LessThanOrEqual(amount.Epsilon) && len(s.negativeResultErrors()) == 0
}

// Finalize returns an error if the state cannot advance.
//
// The result joins an *UnbalancedError and one *NegativeResultError per
// negative row, in plan display order.
func (s *State) Finalize() error {
	var errs []error
	if remaining := s.RemainingBalance(); remaining.Abs().GreaterThan(amount.Epsilon) {
		errs = append(errs, &UnbalancedError{Remaining: remaining})
	}
	errs = append(errs, s.negativeResultErrors()...)
	return errors.Join(errs...)
}

func (s *State) negativeResultErrors() []error {
	var errs []error
	for _, class := range s.order {
		errs = append(errs, s.tables[class].negativeResultErrors()...)
	}
	return errs
}

// with returns a copy of the state with one table replaced.
func (s *State) with(table *Table) *State {
	tables := maps.Clone(s.tables)
	tables[table.Class()] = table
	return &State{
		plan:        s.plan,
		records:     s.records,
		seededTotal: s.seededTotal,
		order:       s.order,
		tables:      tables,
	}
}

// *** EDITS ***

// Edit is an edit of one class table.
type Edit interface {
	// EditClass returns the class the edit applies to.
	EditClass() rebalasset.Class

	apply(table *Table) (*Table, error)
	// changedRow returns the index in the edited table of the row whose new
	// value the edit changed, if any.
	changedRow(next *Table) (int, bool)
}

// EditRow sets the reallocated amount of a row.
type EditRow struct {
	Class             rebalasset.Class
	Row               int
	ReallocatedAmount decimal.Decimal
}

// EditClass implements Edit.
func (e EditRow) EditClass() rebalasset.Class {
	return e.Class
}

func (e EditRow) apply(table *Table) (*Table, error) {
	if err := checkRow(table, e.Row); err != nil {
		return nil, err
	}
	return table.withReallocated(e.Row, e.ReallocatedAmount), nil
}

func (e EditRow) changedRow(*Table) (int, bool) {
	return e.Row, true
}

// AddRow appends a synthetic row with no current value.
type AddRow struct {
	Class             rebalasset.Class
	AssetName         string
	ReallocatedAmount decimal.Decimal
}

// EditClass implements Edit.
func (e AddRow) EditClass() rebalasset.Class {
	return e.Class
}

func (e AddRow) apply(table *Table) (*Table, error) {
	if e.AssetName == "" {
		return nil, errors.New("added row must have an asset name")
	}
	return table.withRowAdded(e.AssetName, e.ReallocatedAmount), nil
}

func (e AddRow) changedRow(next *Table) (int, bool) {
	return next.Len() - 1, true
}

// RemoveRow deletes a row.
type RemoveRow struct {
	Class rebalasset.Class
	Row   int
}

// EditClass implements Edit.
func (e RemoveRow) EditClass() rebalasset.Class {
	return e.Class
}

func (e RemoveRow) apply(table *Table) (*Table, error) {
	if err := checkRow(table, e.Row); err != nil {
		return nil, err
	}
	return table.withRowRemoved(e.Row), nil
}

func (e RemoveRow) changedRow(*Table) (int, bool) {
	return 0, false
}

// EditLiquidity overrides the liquidity tag of a row.
//
// The tag is free text normalized by reballiquidity.Normalize, so unparseable
// input becomes the empty tag. Only tables of plans with a contribution
// accept liquidity edits.
type EditLiquidity struct {
	Class        rebalasset.Class
	Row          int
	LiquidityTag string
}

// EditClass implements Edit.
func (e EditLiquidity) EditClass() rebalasset.Class {
	return e.Class
}

func (e EditLiquidity) apply(table *Table) (*Table, error) {
	if !table.LiquidityEditable() {
		return nil, fmt.Errorf("liquidity of %q is read-only without a contribution", table.Class())
	}
	if err := checkRow(table, e.Row); err != nil {
		return nil, err
	}
	return table.withLiquidity(e.Row, reballiquidity.Normalize(e.LiquidityTag)), nil
}

func (e EditLiquidity) changedRow(*Table) (int, bool) {
	return 0, false
}

// Apply applies an edit to a state.
//
// If the edit is rejected, the input state is returned with the error. If
// the edit leaves the row it changed with a negative new value, the new state
// is returned together with a *NegativeResultError for that row: the edit is
// recorded, but the state cannot advance. Rows that were already negative
// before the edit are not reported again, see State.Finalize.
func Apply(state *State, edit Edit) (*State, error) {
	class := edit.EditClass()
	table, ok := state.tables[class]
	if !ok {
		return state, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	next, err := edit.apply(table)
	if err != nil {
		return state, err
	}
	nextState := state.with(next)
	if index, ok := edit.changedRow(next); ok {
		return nextState, next.negativeResultError(index)
	}
	return nextState, nil
}

func checkRow(table *Table, index int) error {
	if index < 0 || index >= table.Len() {
		return fmt.Errorf("row %d of %q out of range [0, %d)", index, table.Class(), table.Len())
	}
	return nil
}

// *** ERRORS ***

// NegativeResultError is returned when a row has a negative new value.
type NegativeResultError struct {
	Class     rebalasset.Class
	Row       int
	AssetName string
	NewValue  decimal.Decimal
}

// Error implements error.
func (e *NegativeResultError) Error() string {
	return fmt.Sprintf("%q row %d (%q) has negative new value %s", e.Class, e.Row, e.AssetName, e.NewValue.StringFixed(amount.Places))
}

// UnbalancedError is returned when the remaining balance is not zero.
type UnbalancedError struct {
	Remaining decimal.Decimal
}

// Error implements error.
func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("remaining balance is %s, must be zero", e.Remaining.StringFixed(amount.Places))
}
