// Copyright 2026 Peter Edge
//
// All rights reserved.

package rebalmodel

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/rebaldist"
	"github.com/shopspring/decimal"
)

// CustomModel is a model being edited row by row.
//
// A CustomModel may sum to anything while being edited. Freeze refuses to
// produce an Allocation until it sums to 100.
type CustomModel struct {
	name    string
	weights []Weight
}

// NewCustomModel returns a new empty CustomModel.
func NewCustomModel(name string) *CustomModel {
	return &CustomModel{name: name}
}

// NewCustomModelFromDistribution returns a new CustomModel seeded with the
// current percentages of a distribution, rounded to two places.
func NewCustomModelFromDistribution(name string, distribution *rebaldist.Distribution) *CustomModel {
	customModel := NewCustomModel(name)
	for _, classDistribution := range distribution.Classes {
		if !classDistribution.Class.IsValid() {
			continue
		}
		customModel.weights = append(
			customModel.weights,
			Weight{
				Class:   classDistribution.Class,
				Percent: amount.Round(classDistribution.CurrentPercent),
			},
		)
	}
	return customModel
}

// Set sets the percentage of a class, adding the class if it is not present.
func (c *CustomModel) Set(class rebalasset.Class, percent decimal.Decimal) error {
	if !class.IsValid() {
		return errors.New("cannot set percent of unspecified class")
	}
	if percent.IsNegative() || percent.GreaterThan(amount.Hundred) {
		return fmt.Errorf("percent %s for %q must be between 0 and 100", percent, class)
	}
	if index := c.index(class); index >= 0 {
		c.weights[index].Percent = percent
		return nil
	}
	c.weights = append(c.weights, Weight{Class: class, Percent: percent})
	return nil
}

// Remove removes a class from the model.
func (c *CustomModel) Remove(class rebalasset.Class) error {
	index := c.index(class)
	if index < 0 {
		return fmt.Errorf("class %q is not in model %q", class, c.name)
	}
	c.weights = slices.Delete(c.weights, index, index+1)
	return nil
}

// Rename moves the percentage of one class to another class not yet in the model.
func (c *CustomModel) Rename(from rebalasset.Class, to rebalasset.Class) error {
	index := c.index(from)
	if index < 0 {
		return fmt.Errorf("class %q is not in model %q", from, c.name)
	}
	if !to.IsValid() {
		return fmt.Errorf("cannot rename %q to unspecified class", from)
	}
	if from == to {
		return nil
	}
	if c.index(to) >= 0 {
		return fmt.Errorf("class %q is already in model %q", to, c.name)
	}
	c.weights[index].Class = to
	return nil
}

// Weights returns a copy of the current weights.
func (c *CustomModel) Weights() []Weight {
	return slices.Clone(c.weights)
}

// Sum returns the running sum of all percentages.
func (c *CustomModel) Sum() decimal.Decimal {
	return sumWeights(c.weights)
}

// Valid returns true if the model sums to 100 within Tolerance.
func (c *CustomModel) Valid() bool {
	return c.Sum().Sub(amount.Hundred).Abs().LessThanOrEqual(Tolerance)
}

// Freeze returns the model as an immutable Allocation.
//
// Returns an *InvalidModelError if the model does not sum to 100.
func (c *CustomModel) Freeze() (*Allocation, error) {
	allocation, err := NewAllocation(c.name, c.weights)
	if err != nil {
		return nil, err
	}
	if err := allocation.Validate(); err != nil {
		return nil, err
	}
	return allocation, nil
}

func (c *CustomModel) index(class rebalasset.Class) int {
	return slices.IndexFunc(c.weights, func(weight Weight) bool { return weight.Class == class })
}
