// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package modelshow implements the "model show" command.
package modelshow

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/rebal/cmd/rebal/internal/rebalcmd"
	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/pkg/cliio"
	"github.com/bufdev/rebal/internal/rebal/rebalconfig"
	"github.com/bufdev/rebal/internal/rebal/rebalview"
	"github.com/spf13/pflag"
)

// NewCommand returns a new model show command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " <model>",
		Short: "Show the class weights of a model",
		Args:  appcmd.ExactArgs(1),
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
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, rebalcmd.DirFlagName, ".", rebalcmd.DirFlagUsage)
	flagSet.StringVar(&f.Format, rebalcmd.FormatFlagName, "table", "Output format (table, csv, json)")
}

func run(_ context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	config, err := rebalconfig.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	model, err := config.Catalog.Get(container.Arg(0))
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	weights := model.Weights()
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable:
		rows := make([][]string, 0, len(weights))
		for _, weight := range weights {
			rows = append(rows, rebalview.WeightToTableRow(weight))
		}
		return cliio.WriteTableWithTotals(
			writer,
			rebalview.WeightHeaders(),
			rows,
			[]string{rebalview.TotalLabel, amount.FormatPercent(model.Sum())},
		)
	case cliio.FormatCSV:
		records := make([][]string, 0, len(weights)+1)
		records = append(records, rebalview.WeightHeaders())
		for _, weight := range weights {
			records = append(records, rebalview.WeightToRow(weight))
		}
		return cliio.WriteCSVRecords(writer, records)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, weights...)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}
