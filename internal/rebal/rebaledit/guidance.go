// Copyright 2026 Peter Edge
//
// All rights reserved.

package rebaledit

import (
	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/shopspring/decimal"
)

// Direction is the direction of a guidance residual.
type Direction int

const (
	// DirectionBalanced means the class reallocation matches the suggestion.
	DirectionBalanced Direction = iota
	// DirectionIncrease means the class should receive more.
	DirectionIncrease
	// DirectionDecrease means the class should receive less.
	DirectionDecrease
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case DirectionIncrease:
		return "increase"
	case DirectionDecrease:
		return "decrease"
	default:
		return "balanced"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Guidance compares the planner's suggested delta of a class against what
// has been reallocated so far. It is advisory and never blocks advancing.
type Guidance struct {
	Direction Direction       `json:"direction"`
	Amount    decimal.Decimal `json:"amount"`
}

// Text returns the guidance as text, e.g. "increase by R$2.000,00".
func (g Guidance) Text(currencyCode string) string {
	if g.Direction == DirectionBalanced {
		return g.Direction.String()
	}
	return g.Direction.String() + " by " + amount.Format(g.Amount, currencyCode)
}

// ClassSummary is the header of a class table.
type ClassSummary struct {
	Class          rebalasset.Class `json:"class"`
	CurrentPercent decimal.Decimal  `json:"current_percent"`
	TargetPercent  decimal.Decimal  `json:"target_percent"`
	CurrentTotal   decimal.Decimal  `json:"current_total"`
	NewTotal       decimal.Decimal  `json:"new_total"`
	Reallocated    decimal.Decimal  `json:"reallocated"`
	SuggestedDelta decimal.Decimal  `json:"suggested_delta"`
	Guidance       Guidance         `json:"guidance"`
}

// Guidance returns the guidance of a class.
//
// Returns false if the class has no table.
func (s *State) Guidance(class rebalasset.Class) (Guidance, bool) {
	table, ok := s.tables[class]
	if !ok {
		return Guidance{}, false
	}
	entry, _ := s.plan.Entry(class)
	return newGuidance(entry.Delta.Sub(table.TotalReallocated())), true
}

// Summaries returns the summary of every class in plan display order.
func (s *State) Summaries() []ClassSummary {
	summaries := make([]ClassSummary, 0, len(s.order))
	for _, class := range s.order {
		table := s.tables[class]
		entry, _ := s.plan.Entry(class)
		reallocated := table.TotalReallocated()
		summaries = append(
			summaries,
			ClassSummary{
				Class:          class,
				CurrentPercent: entry.CurrentPercent,
				TargetPercent:  entry.TargetPercent,
				CurrentTotal:   table.TotalCurrent(),
				NewTotal:       table.TotalNew(),
				Reallocated:    reallocated,
				SuggestedDelta: entry.Delta,
				Guidance:       newGuidance(entry.Delta.Sub(reallocated)),
			},
		)
	}
	return summaries
}

func newGuidance(residual decimal.Decimal) Guidance {
	switch {
	case amount.IsNegligible(residual):
		return Guidance{Direction: DirectionBalanced, Amount: decimal.Zero}
	case residual.IsPositive():
		return Guidance{Direction: DirectionIncrease, Amount: residual}
	default:
		return Guidance{Direction: DirectionDecrease, Amount: residual.Abs()}
	}
}
