// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rebalplan computes per-class rebalancing plans.
//
// A plan compares a distribution against a model allocation over the
// distribution's base (current total plus any contribution). For every class
// in either the distribution or the model, the target value is the model
// percentage of the base rounded to the cent, and the delta is the target
// minus the current value.
//
// Deltas always reconcile with the contribution: the sum of positive deltas
// minus the sum of negative deltas equals the contribution exactly. Any
// rounding residue is absorbed by the single class with the largest positive
// delta.
package rebalplan

import (
	"fmt"
	"slices"

	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/rebaldist"
	"github.com/bufdev/rebal/internal/rebal/rebalmodel"
	"github.com/shopspring/decimal"
)

// ResidualTolerance is the largest discrepancy left uncorrected.
var ResidualTolerance = decimal.New(1, -6)

// Bucket is the direction of a class in a plan.
type Bucket int

const (
	// BucketUnchanged is a class whose |delta| is below amount.Epsilon.
	BucketUnchanged Bucket = iota
	// BucketIncrease is a class that needs more money.
	BucketIncrease
	// BucketDecrease is a class that needs less money.
	BucketDecrease
)

// String implements fmt.Stringer.
func (b Bucket) String() string {
	switch b {
	case BucketIncrease:
		return "increase"
	case BucketDecrease:
		return "decrease"
	default:
		return "unchanged"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (b Bucket) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// BucketFor returns the bucket of a delta.
func BucketFor(delta decimal.Decimal) Bucket {
	switch {
	case delta.GreaterThanOrEqual(amount.Epsilon):
		return BucketIncrease
	case delta.LessThanOrEqual(amount.Epsilon.Neg()):
		return BucketDecrease
	default:
		return BucketUnchanged
	}
}

// Entry is the plan for one class.
type Entry struct {
	Class          rebalasset.Class `json:"class"`
	CurrentValue   decimal.Decimal  `json:"current_value"`
	CurrentPercent decimal.Decimal  `json:"current_percent"`
	TargetPercent  decimal.Decimal  `json:"target_percent"`
	TargetValue    decimal.Decimal  `json:"target_value"`
	Delta          decimal.Decimal  `json:"delta"`
	Bucket         Bucket           `json:"bucket"`
}

// Correction records the residue absorbed by a plan.
//
// Discrepancy was subtracted from the delta of Class. If Floored, the delta
// was floored at zero and part of the discrepancy could not be absorbed.
type Correction struct {
	Class       rebalasset.Class `json:"class"`
	Discrepancy decimal.Decimal  `json:"discrepancy"`
	Floored     bool             `json:"floored"`
}

// Plan is a rebalancing plan.
//
// Entries are in display order: increases by delta descending, then
// decreases by delta ascending, then unchanged classes in encounter order.
// Correction is nil if no residue needed to be absorbed.
type Plan struct {
	ModelName     string          `json:"model_name"`
	RiskProfile   string          `json:"risk_profile"`
	Base          decimal.Decimal `json:"base"`
	Contribution  decimal.Decimal `json:"contribution"`
	Entries       []Entry         `json:"entries"`
	TotalIncrease decimal.Decimal `json:"total_increase"`
	TotalDecrease decimal.Decimal `json:"total_decrease"`
	Correction    *Correction     `json:"correction,omitempty"`
}

// New computes a plan for a distribution against a model.
//
// Returns an *rebalmodel.InvalidModelError if the model does not sum to 100,
// and an *UnabsorbedResidualError if a residue must be absorbed but no class
// has a positive delta.
func New(distribution *rebaldist.Distribution, model *rebalmodel.Allocation) (*Plan, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	entries := newEntries(distribution, model)
	totalIncrease, totalDecrease := totals(entries)
	discrepancy := totalIncrease.Sub(totalDecrease).Sub(distribution.Contribution)
	var correction *Correction
	if discrepancy.Abs().GreaterThan(ResidualTolerance) {
		index := largestPositiveDelta(entries)
		if index < 0 {
			return nil, &UnabsorbedResidualError{Discrepancy: discrepancy}
		}
		entry := &entries[index]
		corrected := entry.Delta.Sub(discrepancy)
		floored := corrected.IsNegative()
		if floored {
			corrected = decimal.Zero
		}
		entry.Delta = corrected
		entry.TargetValue = entry.CurrentValue.Add(corrected)
		correction = &Correction{
			Class:       entry.Class,
			Discrepancy: discrepancy,
			Floored:     floored,
		}
		totalIncrease, totalDecrease = totals(entries)
	}
	for i := range entries {
		entries[i].Bucket = BucketFor(entries[i].Delta)
	}
	return &Plan{
		ModelName:     model.Name(),
		RiskProfile:   model.RiskProfile(),
		Base:          distribution.Base,
		Contribution:  distribution.Contribution,
		Entries:       sortForDisplay(entries),
		TotalIncrease: totalIncrease,
		TotalDecrease: totalDecrease,
		Correction:    correction,
	}, nil
}

// Entry returns the entry of a class.
func (p *Plan) Entry(class rebalasset.Class) (Entry, bool) {
	for _, entry := range p.Entries {
		if entry.Class == class {
			return entry, true
		}
	}
	return Entry{}, false
}

// Order returns the classes in display order.
func (p *Plan) Order() []rebalasset.Class {
	order := make([]rebalasset.Class, len(p.Entries))
	for i, entry := range p.Entries {
		order[i] = entry.Class
	}
	return order
}

// Increases returns the entries in the increase bucket.
func (p *Plan) Increases() []Entry {
	return p.bucket(BucketIncrease)
}

// Decreases returns the entries in the decrease bucket.
func (p *Plan) Decreases() []Entry {
	return p.bucket(BucketDecrease)
}

// Unchanged returns the entries in the unchanged bucket.
func (p *Plan) Unchanged() []Entry {
	return p.bucket(BucketUnchanged)
}

// TotalToReallocate returns the total amount moved into classes.
func (p *Plan) TotalToReallocate() decimal.Decimal {
	return p.TotalIncrease
}

func (p *Plan) bucket(bucket Bucket) []Entry {
	var entries []Entry
	for _, entry := range p.Entries {
		if entry.Bucket == bucket {
			entries = append(entries, entry)
		}
	}
	return entries
}

// UnabsorbedResidualError is returned when a plan has a residue but no class
// with a positive delta to absorb it.
type UnabsorbedResidualError struct {
	Discrepancy decimal.Decimal
}

// Error implements error.
func (e *UnabsorbedResidualError) Error() string {
	return fmt.Sprintf("plan has a residual of %s but no class with a positive delta to absorb it", e.Discrepancy.String())
}

// newEntries returns one entry per class, distribution classes first, then
// model-only classes in model order.
func newEntries(distribution *rebaldist.Distribution, model *rebalmodel.Allocation) []Entry {
	var classes []rebalasset.Class
	seen := make(map[rebalasset.Class]struct{})
	for _, classDistribution := range distribution.Classes {
		classes = append(classes, classDistribution.Class)
		seen[classDistribution.Class] = struct{}{}
	}
	for _, weight := range model.Weights() {
		if _, ok := seen[weight.Class]; !ok {
			classes = append(classes, weight.Class)
			seen[weight.Class] = struct{}{}
		}
	}
	entries := make([]Entry, len(classes))
	for i, class := range classes {
		targetPercent := model.Percent(class)
		targetValue := amount.Round(targetPercent.Mul(distribution.Base).Div(amount.Hundred))
		currentValue := distribution.Value(class)
		entries[i] = Entry{
			Class:          class,
			CurrentValue:   currentValue,
			CurrentPercent: distribution.Percent(class),
			TargetPercent:  targetPercent,
			TargetValue:    targetValue,
			Delta:          targetValue.Sub(currentValue),
		}
	}
	return entries
}

func totals(entries []Entry) (decimal.Decimal, decimal.Decimal) {
	totalIncrease := decimal.Zero
	totalDecrease := decimal.Zero
	for _, entry := range entries {
		switch {
		case entry.Delta.IsPositive():
			totalIncrease = totalIncrease.Add(entry.Delta)
		case entry.Delta.IsNegative():
			totalDecrease = totalDecrease.Add(entry.Delta.Abs())
		}
	}
	return totalIncrease, totalDecrease
}

// largestPositiveDelta returns the index of the first entry with the largest
// positive delta, or -1 if no delta is positive.
func largestPositiveDelta(entries []Entry) int {
	index := -1
	for i, entry := range entries {
		if !entry.Delta.IsPositive() {
			continue
		}
		if index < 0 || entry.Delta.GreaterThan(entries[index].Delta) {
			index = i
		}
	}
	return index
}

func sortForDisplay(entries []Entry) []Entry {
	var increases, decreases, unchanged []Entry
	for _, entry := range entries {
		switch entry.Bucket {
		case BucketIncrease:
			increases = append(increases, entry)
		case BucketDecrease:
			decreases = append(decreases, entry)
		default:
			unchanged = append(unchanged, entry)
		}
	}
	slices.SortStableFunc(increases, func(a Entry, b Entry) int {
		return b.Delta.Cmp(a.Delta)
	})
	slices.SortStableFunc(decreases, func(a Entry, b Entry) int {
		return a.Delta.Cmp(b.Delta)
	})
	sorted := make([]Entry, 0, len(entries))
	sorted = append(sorted, increases...)
	sorted = append(sorted, decreases...)
	return append(sorted, unchanged...)
}
