// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package plan implements the "plan" command.
package plan

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/rebal/cmd/rebal/internal/rebalcmd"
	"github.com/bufdev/rebal/internal/pkg/cliio"
	"github.com/bufdev/rebal/internal/rebal/rebalmodel"
	"github.com/bufdev/rebal/internal/rebal/rebalview"
	"github.com/spf13/pflag"
)

// NewCommand returns a new plan command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Compute the per-class rebalancing plan against a model",
		Args:  appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Dir is the rebal directory containing rebal.yaml.
	Dir string
	// Model is the target model name.
	Model string
	// Weights are the custom model weights.
	Weights []string
	// Contribution is the new cash to distribute.
	Contribution string
	// Format is the output format (table, csv, json, xlsx).
	Format string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, rebalcmd.DirFlagName, ".", rebalcmd.DirFlagUsage)
	flagSet.StringVar(&f.Model, rebalcmd.ModelFlagName, rebalmodel.Moderate, "The target model name")
	flagSet.StringArrayVar(&f.Weights, rebalcmd.WeightFlagName, nil, rebalcmd.WeightFlagUsage)
	flagSet.StringVar(&f.Contribution, rebalcmd.ContributionFlagName, "", "New cash to add to the portfolio (e.g., 10000 or 10.000,00)")
	flagSet.StringVar(&f.Format, rebalcmd.FormatFlagName, "table", "Output format (table, csv, json, xlsx)")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	contribution, err := rebalcmd.ParseContribution(flags.Contribution)
	if err != nil {
		return err
	}
	portfolio, err := rebalcmd.LoadPortfolio(ctx, container, flags.Dir)
	if err != nil {
		return err
	}
	plan, err := portfolio.Plan(container, flags.Model, flags.Weights, contribution)
	if err != nil {
		return err
	}
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable:
		currencyCode := portfolio.Config.CurrencyCode
		return cliio.WriteTableWithTotals(
			writer,
			rebalview.PlanHeaders(),
			rebalview.PlanToTableRows(plan, currencyCode),
			rebalview.PlanTotalsTableRow(plan, currencyCode),
		)
	case cliio.FormatCSV:
		records := make([][]string, 0, len(plan.Entries)+1)
		records = append(records, rebalview.PlanHeaders())
		for _, entry := range plan.Entries {
			records = append(records, rebalview.EntryToRow(entry))
		}
		return cliio.WriteCSVRecords(writer, records)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, plan)
	case cliio.FormatXLSX:
		rows := make([][]string, 0, len(plan.Entries))
		for _, entry := range plan.Entries {
			rows = append(rows, rebalview.EntryToRow(entry))
		}
		return cliio.WriteXLSX(writer, "Plan", rebalview.PlanHeaders(), rows)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}
