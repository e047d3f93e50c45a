// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rebalmodel provides target model allocations.
//
// An Allocation maps classes to target percentages that must sum to 100
// within Tolerance before it can be planned against. Named models come from
// a fixed catalog; custom models are built with a CustomModel.
package rebalmodel

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/shopspring/decimal"
)

const (
	// Conservative is the conservative named model.
	Conservative = "Conservative"
	// Moderate is the moderate named model.
	Moderate = "Moderate"
	// Sophisticated is the sophisticated named model.
	Sophisticated = "Sophisticated"
	// Custom is the risk profile of any model that is not a named model.
	Custom = "Custom"
)

// Tolerance is the allowed distance between the sum of a valid model and 100.
var Tolerance = decimal.New(1, -2)

// Weight is the target percentage of one class.
type Weight struct {
	Class   rebalasset.Class `json:"class"`
	Percent decimal.Decimal  `json:"percent"`
}

// Allocation is an ordered set of class weights.
//
// Allocations are immutable.
type Allocation struct {
	name    string
	weights []Weight
}

// NewAllocation returns a new Allocation.
//
// Weights must have specified and unique classes. The sum is not checked
// here, call Validate before planning.
func NewAllocation(name string, weights []Weight) (*Allocation, error) {
	seen := make(map[rebalasset.Class]struct{}, len(weights))
	for _, weight := range weights {
		if !weight.Class.IsValid() {
			return nil, fmt.Errorf("model %q: weight has no class", name)
		}
		if _, ok := seen[weight.Class]; ok {
			return nil, fmt.Errorf("model %q: duplicate class %q", name, weight.Class)
		}
		if weight.Percent.IsNegative() || weight.Percent.GreaterThan(amount.Hundred) {
			return nil, fmt.Errorf("model %q: percent %s for %q must be between 0 and 100", name, weight.Percent, weight.Class)
		}
		seen[weight.Class] = struct{}{}
	}
	return &Allocation{
		name:    name,
		weights: slices.Clone(weights),
	}, nil
}

// Name returns the name of the allocation.
func (a *Allocation) Name() string {
	return a.name
}

// Weights returns a copy of the weights in model order.
func (a *Allocation) Weights() []Weight {
	return slices.Clone(a.weights)
}

// Percent returns the target percentage of a class, or zero if the class is not in the model.
func (a *Allocation) Percent(class rebalasset.Class) decimal.Decimal {
	for _, weight := range a.weights {
		if weight.Class == class {
			return weight.Percent
		}
	}
	return decimal.Zero
}

// Sum returns the sum of all percentages.
func (a *Allocation) Sum() decimal.Decimal {
	return sumWeights(a.weights)
}

// Validate returns an *InvalidModelError if the percentages do not sum to 100.
func (a *Allocation) Validate() error {
	sum := a.Sum()
	if sum.Sub(amount.Hundred).Abs().GreaterThan(Tolerance) {
		return &InvalidModelError{Name: a.name, Sum: sum}
	}
	return nil
}

// RiskProfile returns the risk profile label of the allocation.
//
// Named models are their own profile, everything else is Custom.
func (a *Allocation) RiskProfile() string {
	switch a.name {
	case Conservative, Moderate, Sophisticated:
		return a.name
	default:
		return Custom
	}
}

// InvalidModelError is returned when model percentages do not sum to 100.
type InvalidModelError struct {
	Name string
	Sum  decimal.Decimal
}

// Error implements error.
func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("model %q percentages sum to %s%%, must sum to 100%%", e.Name, e.Sum.String())
}

// *** CATALOG ***

var namedModelAliases = map[string]string{
	"conservative":  Conservative,
	"conservadora":  Conservative,
	"moderate":      Moderate,
	"moderada":      Moderate,
	"sophisticated": Sophisticated,
	"sofisticada":   Sophisticated,
}

// NamedModel returns a model from the fixed catalog.
//
// Names are case-insensitive and may also be given in Portuguese.
func NamedModel(name string) (*Allocation, error) {
	canonical, ok := namedModelAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown model %q, must be one of: %s", name, strings.Join(NamedModelNames(), ", "))
	}
	return newNamedModel(canonical), nil
}

// NamedModelNames returns the names of the fixed catalog.
func NamedModelNames() []string {
	return []string{Conservative, Moderate, Sophisticated}
}

func newNamedModel(name string) *Allocation {
	var weights []Weight
	switch name {
	case Conservative:
		weights = []Weight{
			newWeight(rebalasset.ClassPostFixed, "70"),
			newWeight(rebalasset.ClassPreFixed, "5"),
			newWeight(rebalasset.ClassInflation, "15"),
			newWeight(rebalasset.ClassGlobalFixedIncome, "10"),
		}
	case Moderate:
		weights = []Weight{
			newWeight(rebalasset.ClassPostFixed, "35"),
			newWeight(rebalasset.ClassPreFixed, "7.5"),
			newWeight(rebalasset.ClassInflation, "20"),
			newWeight(rebalasset.ClassMultiStrategy, "5"),
			newWeight(rebalasset.ClassDomesticEquity, "10"),
			newWeight(rebalasset.ClassListedFunds, "5"),
			newWeight(rebalasset.ClassAlternatives, "2.5"),
			newWeight(rebalasset.ClassGlobalFixedIncome, "10"),
			newWeight(rebalasset.ClassGlobalEquity, "5"),
		}
	case Sophisticated:
		weights = []Weight{
			newWeight(rebalasset.ClassPostFixed, "15"),
			newWeight(rebalasset.ClassPreFixed, "10"),
			newWeight(rebalasset.ClassInflation, "25"),
			newWeight(rebalasset.ClassMultiStrategy, "5"),
			newWeight(rebalasset.ClassDomesticEquity, "15"),
			newWeight(rebalasset.ClassListedFunds, "7.5"),
			newWeight(rebalasset.ClassAlternatives, "7.5"),
			newWeight(rebalasset.ClassGlobalFixedIncome, "5"),
			newWeight(rebalasset.ClassGlobalEquity, "10"),
		}
	}
	return &Allocation{name: name, weights: weights}
}

func newWeight(class rebalasset.Class, percent string) Weight {
	return Weight{Class: class, Percent: decimal.RequireFromString(percent)}
}

// Catalog resolves models by name from the fixed catalog plus extra models.
type Catalog struct {
	extra []*Allocation
}

// NewCatalog returns a new Catalog.
//
// Extra models must be valid and must not shadow a named model.
func NewCatalog(extra ...*Allocation) (*Catalog, error) {
	seen := make(map[string]struct{}, len(extra))
	for _, allocation := range extra {
		if err := allocation.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(allocation.Name())
		if _, ok := namedModelAliases[key]; ok {
			return nil, fmt.Errorf("model %q shadows a named model", allocation.Name())
		}
		if _, ok := seen[key]; ok {
			return nil, fmt.Errorf("duplicate model %q", allocation.Name())
		}
		seen[key] = struct{}{}
	}
	return &Catalog{extra: slices.Clone(extra)}, nil
}

// Get returns the model with the given name. Names are case-insensitive.
func (c *Catalog) Get(name string) (*Allocation, error) {
	for _, allocation := range c.extra {
		if strings.EqualFold(allocation.Name(), strings.TrimSpace(name)) {
			return allocation, nil
		}
	}
	return NamedModel(name)
}

// Names returns the names of all models, named models first.
func (c *Catalog) Names() []string {
	names := NamedModelNames()
	for _, allocation := range c.extra {
		names = append(names, allocation.Name())
	}
	return names
}

func sumWeights(weights []Weight) decimal.Decimal {
	sum := decimal.Zero
	for _, weight := range weights {
		sum = sum.Add(weight.Percent)
	}
	return sum
}
