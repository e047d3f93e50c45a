// Copyright 2026 Peter Edge
//
// All rights reserved.

package rebaledit

import (
	"maps"
	"slices"

	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/shopspring/decimal"
)

// Row is one editable asset row of a class table.
//
// Synthetic rows were added during editing and have no current value.
type Row struct {
	AssetName         string            `json:"asset_name"`
	CurrentValue      decimal.Decimal   `json:"current_value"`
	ReallocatedAmount decimal.Decimal   `json:"reallocated_amount"`
	NewValue          decimal.Decimal   `json:"new_value"`
	LiquidityTag      string            `json:"liquidity_tag,omitempty"`
	Synthetic         bool              `json:"synthetic,omitempty"`
	Metrics           map[string]string `json:"metrics,omitempty"`
}

// Table is the editable table of one class.
//
// Tables are immutable. Edits produce a new Table with an incremented version.
type Table struct {
	class             rebalasset.Class
	liquidityEditable bool
	rows              []Row
	version           int
}

// NewTable seeds a table with the records of a class.
//
// Every row starts with a zero reallocated amount and a new value equal to
// its current value. Records of other classes are ignored. Seeding the same
// records twice yields identical tables.
func NewTable(class rebalasset.Class, records []rebalasset.Record, liquidityEditable bool) *Table {
	var rows []Row
	for _, record := range records {
		if record.Class != class {
			continue
		}
		var metrics map[string]string
		if len(record.Metrics) > 0 {
			metrics = maps.Clone(record.Metrics)
		}
		rows = append(
			rows,
			Row{
				AssetName:         record.Name,
				CurrentValue:      record.CurrentValue,
				ReallocatedAmount: decimal.Zero,
				NewValue:          record.CurrentValue,
				LiquidityTag:      record.LiquidityTag,
				Metrics:           metrics,
			},
		)
	}
	return &Table{
		class:             class,
		liquidityEditable: liquidityEditable,
		rows:              rows,
	}
}

// Class returns the class of the table.
func (t *Table) Class() rebalasset.Class {
	return t.class
}

// LiquidityEditable returns true if liquidity tags may be edited.
func (t *Table) LiquidityEditable() bool {
	return t.liquidityEditable
}

// Version returns the number of edits applied since seeding.
func (t *Table) Version() int {
	return t.version
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of the rows.
func (t *Table) Rows() []Row {
	return slices.Clone(t.rows)
}

// Row returns the row at index.
func (t *Table) Row(index int) (Row, bool) {
	if index < 0 || index >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[index], true
}

// TotalCurrent returns Σ current value.
func (t *Table) TotalCurrent() decimal.Decimal {
	return t.sum(func(row Row) decimal.Decimal { return row.CurrentValue })
}

// TotalNew returns Σ new value.
func (t *Table) TotalNew() decimal.Decimal {
	return t.sum(func(row Row) decimal.Decimal { return row.NewValue })
}

// TotalReallocated returns Σ reallocated amount.
func (t *Table) TotalReallocated() decimal.Decimal {
	return t.sum(func(row Row) decimal.Decimal { return row.ReallocatedAmount })
}

// TotalAllocated returns Σ positive reallocated amount.
func (t *Table) TotalAllocated() decimal.Decimal {
	return t.sum(
		func(row Row) decimal.Decimal {
			if row.ReallocatedAmount.IsPositive() {
				return row.ReallocatedAmount
			}
			return decimal.Zero
		},
	)
}

func (t *Table) sum(valueOf func(Row) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, row := range t.rows {
		total = total.Add(valueOf(row))
	}
	return total
}

func (t *Table) negativeResultErrors() []error {
	var errs []error
	for i := range t.rows {
		if err := t.negativeResultError(i); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// negativeResultError returns nil if the row's new value is not negative.
func (t *Table) negativeResultError(index int) error {
	row := t.rows[index]
	if !row.NewValue.IsNegative() {
		return nil
	}
	return &NegativeResultError{
		Class:     t.class,
		Row:       index,
		AssetName: row.AssetName,
		NewValue:  row.NewValue,
	}
}

// next returns a copy of the table with its version incremented.
func (t *Table) next() *Table {
	return &Table{
		class:             t.class,
		liquidityEditable: t.liquidityEditable,
		rows:              slices.Clone(t.rows),
		version:           t.version + 1,
	}
}

func (t *Table) withReallocated(index int, reallocatedAmount decimal.Decimal) *Table {
	next := t.next()
	row := &next.rows[index]
	row.ReallocatedAmount = reallocatedAmount
	row.NewValue = row.CurrentValue.Add(reallocatedAmount)
	return next
}

func (t *Table) withRowAdded(assetName string, reallocatedAmount decimal.Decimal) *Table {
	next := t.next()
	next.rows = append(
		next.rows,
		Row{
			AssetName:         assetName,
			CurrentValue:      decimal.Zero,
			ReallocatedAmount: reallocatedAmount,
			NewValue:          reallocatedAmount,
			Synthetic:         true,
		},
	)
	return next
}

func (t *Table) withRowRemoved(index int) *Table {
	next := t.next()
	next.rows = slices.Delete(next.rows, index, index+1)
	return next
}

func (t *Table) withLiquidity(index int, liquidityTag string) *Table {
	next := t.next()
	next.rows[index].LiquidityTag = liquidityTag
	return next
}
