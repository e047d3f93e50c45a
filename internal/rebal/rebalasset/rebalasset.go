// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rebalasset provides the canonical asset records of a portfolio.
//
// Records are produced from raw statement holdings by FromRaw, classified
// through a Store, and must pass ValidateClassification before planning.
package rebalasset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/shopspring/decimal"
)

// Record is one holding.
//
// ReallocatedAmount and NewValue are only set on exported records.
type Record struct {
	Name              string            `json:"name"`
	Class             Class             `json:"class"`
	CurrentValue      decimal.Decimal   `json:"current_value"`
	LiquidityTag      string            `json:"liquidity_tag,omitempty"`
	ReallocatedAmount decimal.Decimal   `json:"reallocated_amount"`
	NewValue          decimal.Decimal   `json:"new_value"`
	Metrics           map[string]string `json:"metrics,omitempty"`
}

// RawAsset is a holding as produced by a statement parser.
//
// All fields are unvalidated text.
type RawAsset struct {
	Name         string
	CurrentValue string
	ClassHint    string
	LiquidityTag string
	Metrics      map[string]string
}

// StatementParser parses a custody statement into raw holdings.
type StatementParser interface {
	Parse(ctx context.Context, reader io.Reader) ([]RawAsset, error)
}

// LiquidityResolver resolves the liquidity tag of an asset by name.
//
// An empty result means the liquidity is unknown.
type LiquidityResolver interface {
	ResolveLiquidity(assetName string) string
}

// FromRaw converts raw holdings into records.
//
// Malformed values are treated as zero. Negative values are rejected. A class
// hint that does not name a known class leaves the record unclassified.
// The resolver may be nil, in which case the raw liquidity tag is used.
func FromRaw(rawAssets []RawAsset, resolver LiquidityResolver) ([]Record, error) {
	records := make([]Record, 0, len(rawAssets))
	var errs []error
	for i, rawAsset := range rawAssets {
		currentValue := amount.ParseLenient(rawAsset.CurrentValue)
		if currentValue.IsNegative() {
			errs = append(errs, fmt.Errorf("asset %d (%q) has negative value %s", i, rawAsset.Name, currentValue))
			continue
		}
		class, err := ParseClass(rawAsset.ClassHint)
		if err != nil {
			class = ClassUnspecified
		}
		liquidityTag := rawAsset.LiquidityTag
		if resolver != nil {
			if resolved := resolver.ResolveLiquidity(rawAsset.Name); resolved != "" {
				liquidityTag = resolved
			}
		}
		var metrics map[string]string
		if len(rawAsset.Metrics) > 0 {
			metrics = maps.Clone(rawAsset.Metrics)
		}
		records = append(
			records,
			Record{
				Name:         rawAsset.Name,
				Class:        class,
				CurrentValue: currentValue,
				LiquidityTag: liquidityTag,
				Metrics:      metrics,
			},
		)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return records, nil
}

// IncompleteClassificationError is returned for a record without a class.
type IncompleteClassificationError struct {
	Index int
	Name  string
}

// Error implements error.
func (e *IncompleteClassificationError) Error() string {
	return fmt.Sprintf("asset %d (%q) has no class", e.Index, e.Name)
}

// ValidateClassification returns one IncompleteClassificationError per
// unclassified record, joined, or nil if every record has a class.
func ValidateClassification(records []Record) error {
	var errs []error
	for i, record := range records {
		if !record.Class.IsValid() {
			errs = append(errs, &IncompleteClassificationError{Index: i, Name: record.Name})
		}
	}
	return errors.Join(errs...)
}

// Store holds the records being classified.
type Store struct {
	records []Record
}

// NewStore returns a new Store over a copy of the records.
func NewStore(records []Record) *Store {
	return &Store{records: slices.Clone(records)}
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}

// SetClass sets the class of the record at index.
func (s *Store) SetClass(index int, class Class) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if !class.IsValid() {
		return fmt.Errorf("cannot set asset %d to unspecified class", index)
	}
	s.records[index].Class = class
	return nil
}

// SetLiquidity sets the liquidity tag of the record at index.
func (s *Store) SetLiquidity(index int, liquidityTag string) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.records[index].LiquidityTag = liquidityTag
	return nil
}

// Records returns a copy of the records.
func (s *Store) Records() []Record {
	return slices.Clone(s.records)
}

// Validate validates that every record is classified.
func (s *Store) Validate() error {
	return ValidateClassification(s.records)
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.records) {
		return fmt.Errorf("asset index %d out of range [0, %d)", index, len(s.records))
	}
	return nil
}
