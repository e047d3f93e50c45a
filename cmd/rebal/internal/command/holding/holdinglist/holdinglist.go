// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package holdinglist implements the "holding list" command.
package holdinglist

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/rebal/cmd/rebal/internal/rebalcmd"
	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/pkg/cliio"
	"github.com/bufdev/rebal/internal/rebal/rebalview"
	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
)

// NewCommand returns a new holding list command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List holdings with their class and liquidity",
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
	// Format is the output format (table, csv, json, xlsx).
	Format string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, rebalcmd.DirFlagName, ".", rebalcmd.DirFlagUsage)
	flagSet.StringVar(&f.Format, rebalcmd.FormatFlagName, "table", "Output format (table, csv, json, xlsx)")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	portfolio, err := rebalcmd.LoadPortfolio(ctx, container, flags.Dir)
	if err != nil {
		return err
	}
	records := portfolio.Records
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable:
		currencyCode := portfolio.Config.CurrencyCode
		rows := make([][]string, 0, len(records))
		total := decimal.Zero
		for _, record := range records {
			rows = append(rows, rebalview.HoldingToTableRow(record, currencyCode))
			total = total.Add(record.CurrentValue)
		}
		return cliio.WriteTableWithTotals(
			writer,
			rebalview.HoldingHeaders(),
			rows,
			[]string{rebalview.TotalLabel, "", amount.Format(total, currencyCode), ""},
		)
	case cliio.FormatCSV:
		csvRecords := make([][]string, 0, len(records)+1)
		csvRecords = append(csvRecords, rebalview.HoldingHeaders())
		for _, record := range records {
			csvRecords = append(csvRecords, rebalview.HoldingToRow(record))
		}
		return cliio.WriteCSVRecords(writer, csvRecords)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, records...)
	case cliio.FormatXLSX:
		rows := make([][]string, 0, len(records))
		for _, record := range records {
			rows = append(rows, rebalview.HoldingToRow(record))
		}
		return cliio.WriteXLSX(writer, "Holdings", rebalview.HoldingHeaders(), rows)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}
