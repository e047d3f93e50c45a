// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package modellist implements the "model list" command.
package modellist

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/rebal/cmd/rebal/internal/rebalcmd"
	"github.com/bufdev/rebal/internal/pkg/cliio"
	"github.com/bufdev/rebal/internal/rebal/rebalconfig"
	"github.com/bufdev/rebal/internal/rebal/rebalmodel"
	"github.com/bufdev/rebal/internal/rebal/rebalview"
	"github.com/spf13/pflag"
)

// NewCommand returns a new model list command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List the named and configured models",
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
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, rebalcmd.DirFlagName, ".", rebalcmd.DirFlagUsage)
	flagSet.StringVar(&f.Format, rebalcmd.FormatFlagName, "table", "Output format (table, csv, json)")
}

type modelOverview struct {
	Name        string              `json:"name"`
	RiskProfile string              `json:"risk_profile"`
	Weights     []rebalmodel.Weight `json:"weights"`
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
	names := config.Catalog.Names()
	models := make([]*rebalmodel.Allocation, 0, len(names))
	for _, name := range names {
		model, err := config.Catalog.Get(name)
		if err != nil {
			return err
		}
		models = append(models, model)
	}
	writer := container.Stdout()
	switch format {
	case cliio.FormatTable:
		rows := make([][]string, 0, len(models))
		for _, model := range models {
			rows = append(rows, rebalview.ModelToRow(model))
		}
		return cliio.WriteTable(writer, rebalview.ModelHeaders(), rows)
	case cliio.FormatCSV:
		records := make([][]string, 0, len(models)+1)
		records = append(records, rebalview.ModelHeaders())
		for _, model := range models {
			records = append(records, rebalview.ModelToRow(model))
		}
		return cliio.WriteCSVRecords(writer, records)
	case cliio.FormatJSON:
		overviews := make([]modelOverview, 0, len(models))
		for _, model := range models {
			overviews = append(
				overviews,
				modelOverview{
					Name:        model.Name(),
					RiskProfile: model.RiskProfile(),
					Weights:     model.Weights(),
				},
			)
		}
		return cliio.WriteJSON(writer, overviews...)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}
