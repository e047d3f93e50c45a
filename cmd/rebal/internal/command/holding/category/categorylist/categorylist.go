// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package categorylist implements the "holding category list" command.
package categorylist

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/rebal/cmd/rebal/internal/rebalcmd"
	"github.com/bufdev/rebal/internal/pkg/cliio"
	"github.com/bufdev/rebal/internal/rebal/rebalview"
	"github.com/spf13/pflag"
)

// NewCommand returns a new category list command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List holdings aggregated by class",
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
	// Format is the output format (table, csv, json).
	Format string
	// Contribution is the new cash added to the percentage base.
	Contribution string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, rebalcmd.DirFlagName, ".", rebalcmd.DirFlagUsage)
	flagSet.StringVar(&f.Format, rebalcmd.FormatFlagName, "table", "Output format (table, csv, json)")
	flagSet.StringVar(&f.Contribution, rebalcmd.ContributionFlagName, "", "New cash to add to the portfolio (e.g., 10000 or 10.000,00)")
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
	distribution := portfolio.Distribution(contribution)
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable:
		currencyCode := portfolio.Config.CurrencyCode
		return cliio.WriteTableWithTotals(
			writer,
			rebalview.DistributionHeaders(),
			rebalview.DistributionToTableRows(distribution, currencyCode),
			rebalview.DistributionTotalsTableRow(distribution, currencyCode),
		)
	case cliio.FormatCSV:
		records := [][]string{rebalview.DistributionHeaders()}
		records = append(records, rebalview.DistributionToRows(distribution)...)
		return cliio.WriteCSVRecords(writer, records)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, distribution)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}
