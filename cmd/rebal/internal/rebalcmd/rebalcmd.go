// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rebalcmd provides shared wiring for rebal commands that need the
// configuration, the holdings, or a plan.
package rebalcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/rebalconfig"
	"github.com/bufdev/rebal/internal/rebal/rebaldist"
	"github.com/bufdev/rebal/internal/rebal/rebalinput"
	"github.com/bufdev/rebal/internal/rebal/reballiquidity"
	"github.com/bufdev/rebal/internal/rebal/rebalmodel"
	"github.com/bufdev/rebal/internal/rebal/rebalpath"
	"github.com/bufdev/rebal/internal/rebal/rebalplan"
	"github.com/shopspring/decimal"
)

const (
	// DirFlagName is the flag name for the rebal directory.
	DirFlagName = "dir"
	// DirFlagUsage is the usage of the rebal directory flag.
	DirFlagUsage = "The rebal directory containing rebal.yaml"
	// ModelFlagName is the flag name for the target model.
	ModelFlagName = "model"
	// ContributionFlagName is the flag name for the contribution.
	ContributionFlagName = "contribution"
	// FormatFlagName is the flag name for the output format.
	FormatFlagName = "format"
	// WeightFlagName is the flag name for custom model weights.
	WeightFlagName = "weight"
	// WeightFlagUsage is the usage of the custom model weights flag.
	WeightFlagUsage = "A class=percent weight of a custom model seeded with the current distribution, replaces --model (0 removes the class, may be repeated)"
)

// Portfolio is the configuration and holdings of a rebal directory.
type Portfolio struct {
	// Config is the validated configuration.
	Config *rebalconfig.Config
	// Records are the holdings in file order, possibly unclassified.
	Records []rebalasset.Record
}

// LoadPortfolio reads the configuration and the holdings of a rebal directory.
//
// Classes configured by asset name override the holdings file, and liquidity
// tags are normalized. Unclassified holdings are logged as warnings, they are not errors until a
// plan is computed.
func LoadPortfolio(ctx context.Context, container appext.Container, dirPath string) (*Portfolio, error) {
	config, err := rebalconfig.ReadConfig(dirPath)
	if err != nil {
		return nil, err
	}
	rawAssets, err := rebalinput.ReadHoldingsFile(ctx, rebalpath.HoldingsFilePath(dirPath, config.HoldingsFile))
	if err != nil {
		return nil, err
	}
	records, err := rebalasset.FromRaw(rawAssets, config.LiquidityResolver)
	if err != nil {
		return nil, err
	}
	store := rebalasset.NewStore(records)
	for i, record := range records {
		if class, ok := config.ClassOverride(record.Name); ok {
			if err := store.SetClass(i, class); err != nil {
				return nil, err
			}
		}
		// Tags that do not normalize are kept as written.
		if liquidityTag := reballiquidity.Normalize(record.LiquidityTag); liquidityTag != "" && liquidityTag != record.LiquidityTag {
			if err := store.SetLiquidity(i, liquidityTag); err != nil {
				return nil, err
			}
		}
	}
	records = store.Records()
	logger := container.Logger()
	for i, record := range records {
		if !record.Class.IsValid() {
			logger.Warn("asset not classified", "asset", record.Name, "index", i)
		}
	}
	return &Portfolio{
		Config:  config,
		Records: records,
	}, nil
}

// Distribution returns the distribution of the portfolio.
func (p *Portfolio) Distribution(contribution decimal.Decimal) *rebaldist.Distribution {
	return rebaldist.Compute(p.Records, contribution)
}

// Plan computes a plan of the portfolio against a model.
//
// If weightValues is empty, the model is the named model. Otherwise the model
// is a custom model, see NewCustomModel. Every holding must be classified.
func (p *Portfolio) Plan(
	container appext.Container,
	modelName string,
	weightValues []string,
	contribution decimal.Decimal,
) (*rebalplan.Plan, error) {
	if err := rebalasset.ValidateClassification(p.Records); err != nil {
		return nil, fmt.Errorf("classify every holding in the holdings file before planning:\n%w", err)
	}
	distribution := p.Distribution(contribution)
	var model *rebalmodel.Allocation
	if len(weightValues) > 0 {
		weights, err := ParseWeights(weightValues)
		if err != nil {
			return nil, err
		}
		// Seed with the percentages of the current value, without the contribution.
		model, err = NewCustomModel(p.Distribution(decimal.Zero), weights)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		model, err = p.Config.Catalog.Get(modelName)
		if err != nil {
			return nil, appcmd.NewInvalidArgumentError(err.Error())
		}
	}
	plan, err := rebalplan.New(distribution, model)
	if err != nil {
		return nil, err
	}
	if correction := plan.Correction; correction != nil {
		container.Logger().Debug(
			"rounding residue absorbed",
			"class", correction.Class.Key(),
			"discrepancy", correction.Discrepancy.String(),
		)
		if correction.Floored {
			container.Logger().Warn(
				"rounding residue could not be fully absorbed",
				"class", correction.Class.Key(),
				"discrepancy", correction.Discrepancy.String(),
			)
		}
	}
	return plan, nil
}

// ParseContribution parses the value of the contribution flag.
//
// The empty string is no contribution. Negative contributions are rejected.
func ParseContribution(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	contribution, err := amount.Parse(value)
	if err != nil {
		return decimal.Zero, appcmd.NewInvalidArgumentErrorf("--%s: %v", ContributionFlagName, err)
	}
	if contribution.IsNegative() {
		return decimal.Zero, appcmd.NewInvalidArgumentErrorf("--%s must not be negative", ContributionFlagName)
	}
	return amount.Round(contribution), nil
}

// ParseWeights parses values of the weight flag.
//
// Each value is class=percent, where class is a class key or label.
func ParseWeights(values []string) ([]rebalmodel.Weight, error) {
	weights := make([]rebalmodel.Weight, 0, len(values))
	for _, value := range values {
		classValue, percentValue, ok := strings.Cut(value, "=")
		if !ok {
			return nil, appcmd.NewInvalidArgumentErrorf("--%s %q must be of the form class=percent", WeightFlagName, value)
		}
		class, err := rebalasset.ParseClass(classValue)
		if err != nil {
			return nil, appcmd.NewInvalidArgumentErrorf("--%s %q: %v", WeightFlagName, value, err)
		}
		if !class.IsValid() {
			return nil, appcmd.NewInvalidArgumentErrorf("--%s %q has no class", WeightFlagName, value)
		}
		percent, err := amount.Parse(percentValue)
		if err != nil {
			return nil, appcmd.NewInvalidArgumentErrorf("--%s %q: %v", WeightFlagName, value, err)
		}
		weights = append(weights, rebalmodel.Weight{Class: class, Percent: percent})
	}
	return weights, nil
}

// NewCustomModel returns a custom model seeded with the current percentages
// of the distribution and edited with the given weights.
//
// A weight of 0 removes its class. The edited model must sum to 100.
func NewCustomModel(distribution *rebaldist.Distribution, weights []rebalmodel.Weight) (*rebalmodel.Allocation, error) {
	customModel := rebalmodel.NewCustomModelFromDistribution(rebalmodel.Custom, distribution)
	for _, weight := range weights {
		if weight.Percent.IsZero() {
			if err := customModel.Remove(weight.Class); err != nil {
				return nil, appcmd.NewInvalidArgumentErrorf("--%s: %v", WeightFlagName, err)
			}
			continue
		}
		if err := customModel.Set(weight.Class, weight.Percent); err != nil {
			return nil, appcmd.NewInvalidArgumentErrorf("--%s: %v", WeightFlagName, err)
		}
	}
	if !customModel.Valid() {
		return nil, appcmd.NewInvalidArgumentErrorf(
			"--%s: custom model sums to %s%%, must sum to 100%%",
			WeightFlagName,
			amount.FormatPlain(customModel.Sum()),
		)
	}
	return customModel.Freeze()
}

// NewOutput returns the writer for command output.
//
// If filePath is empty, output goes to the container's stdout and the
// returned close function is a no-op.
func NewOutput(container appext.Container, filePath string) (io.Writer, func() error, error) {
	if filePath == "" {
		return container.Stdout(), func() error { return nil }, nil
	}
	file, err := os.Create(filePath)
	if err != nil {
		return nil, nil, err
	}
	return file, file.Close, nil
}
