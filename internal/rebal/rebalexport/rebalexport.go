// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rebalexport flattens an edited plan into asset records and builds
// the report consumed by renderers.
package rebalexport

import (
	"maps"
	"slices"

	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/rebaldist"
	"github.com/bufdev/rebal/internal/rebal/rebaledit"
	"github.com/bufdev/rebal/internal/rebal/reballiquidity"
	"github.com/bufdev/rebal/internal/rebal/rebalplan"
	"github.com/shopspring/decimal"
)

// NoContributionText is the contribution text of a report without a contribution.
const NoContributionText = "Sem aporte"

// Export flattens the tables of a state into records.
//
// Classes are in plan display order and rows in editor order. Liquidity tags
// are prepared with reballiquidity.ExportTag.
func Export(state *rebaledit.State) []rebalasset.Record {
	var records []rebalasset.Record
	for _, table := range state.Tables() {
		for _, row := range table.Rows() {
			var metrics map[string]string
			if len(row.Metrics) > 0 {
				metrics = maps.Clone(row.Metrics)
			}
			records = append(
				records,
				rebalasset.Record{
					Name:              row.AssetName,
					Class:             table.Class(),
					CurrentValue:      row.CurrentValue,
					LiquidityTag:      reballiquidity.ExportTag(row.LiquidityTag),
					ReallocatedAmount: row.ReallocatedAmount,
					NewValue:          row.NewValue,
					Metrics:           metrics,
				},
			)
		}
	}
	return records
}

// Difference compares the current and proposed percentage of a class.
//
// Adjustment is ProposedPercent - CurrentPercent rounded to two places.
type Difference struct {
	Class           rebalasset.Class `json:"class"`
	CurrentPercent  decimal.Decimal  `json:"current_percent"`
	ProposedPercent decimal.Decimal  `json:"proposed_percent"`
	Adjustment      decimal.Decimal  `json:"adjustment"`
	Action          rebalplan.Bucket `json:"action"`
}

// Report is everything a renderer needs for the client-facing report.
type Report struct {
	ModelName        string                     `json:"model_name"`
	RiskProfile      string                     `json:"risk_profile"`
	Contribution     decimal.Decimal            `json:"contribution"`
	ContributionText string                     `json:"contribution_text"`
	Before           *rebaldist.Distribution    `json:"before"`
	After            *rebaldist.Distribution    `json:"after"`
	Plan             *rebalplan.Plan            `json:"plan"`
	Records          []rebalasset.Record        `json:"records"`
	Differences      []Difference               `json:"differences"`
	Allocated        []rebalasset.Record        `json:"allocated"`
	Redeemed         []rebalasset.Record        `json:"redeemed"`
	Liquidity        []reballiquidity.BandTotal `json:"liquidity"`
}

// NewReport builds the report of a state.
//
// Returns the error of state.Finalize if the state cannot advance.
func NewReport(state *rebaledit.State, currencyCode string) (*Report, error) {
	if err := state.Finalize(); err != nil {
		return nil, err
	}
	plan := state.Plan()
	records := Export(state)
	before := rebaldist.Compute(state.Records(), decimal.Zero)
	after := rebaldist.ComputeNew(records)
	contributionText := NoContributionText
	if plan.Contribution.IsPositive() {
		contributionText = amount.Format(plan.Contribution, currencyCode)
	}
	var allocated, redeemed []rebalasset.Record
	exposures := make([]reballiquidity.Exposure, 0, len(records))
	for _, record := range records {
		switch {
		case record.ReallocatedAmount.IsPositive():
			allocated = append(allocated, record)
		case record.ReallocatedAmount.IsNegative():
			redeemed = append(redeemed, record)
		}
		exposures = append(exposures, reballiquidity.Exposure{Tag: record.LiquidityTag, Value: record.NewValue})
	}
	return &Report{
		ModelName:        plan.ModelName,
		RiskProfile:      plan.RiskProfile,
		Contribution:     plan.Contribution,
		ContributionText: contributionText,
		Before:           before,
		After:            after,
		Plan:             plan,
		Records:          records,
		Differences:      newDifferences(before, after),
		Allocated:        allocated,
		Redeemed:         redeemed,
		Liquidity:        reballiquidity.Profile(exposures),
	}, nil
}

// newDifferences returns one difference per class of either distribution,
// sorted by adjustment descending.
func newDifferences(before *rebaldist.Distribution, after *rebaldist.Distribution) []Difference {
	var classes []rebalasset.Class
	for _, distribution := range []*rebaldist.Distribution{before, after} {
		for _, classDistribution := range distribution.Classes {
			if !slices.Contains(classes, classDistribution.Class) {
				classes = append(classes, classDistribution.Class)
			}
		}
	}
	differences := make([]Difference, 0, len(classes))
	for _, class := range classes {
		currentPercent := before.Percent(class)
		proposedPercent := after.Percent(class)
		adjustment := amount.Round(proposedPercent.Sub(currentPercent))
		differences = append(
			differences,
			Difference{
				Class:           class,
				CurrentPercent:  currentPercent,
				ProposedPercent: proposedPercent,
				Adjustment:      adjustment,
				Action:          rebalplan.BucketFor(adjustment),
			},
		)
	}
	slices.SortStableFunc(differences, func(a Difference, b Difference) int {
		return b.Adjustment.Cmp(a.Adjustment)
	})
	return differences
}
