// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package proposal implements the "proposal" command.
package proposal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/rebal/cmd/rebal/internal/rebalcmd"
	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/pkg/cliio"
	"github.com/bufdev/rebal/internal/rebal/rebaledit"
	"github.com/bufdev/rebal/internal/rebal/rebalexport"
	"github.com/bufdev/rebal/internal/rebal/rebalinput"
	"github.com/bufdev/rebal/internal/rebal/rebalmodel"
	"github.com/bufdev/rebal/internal/rebal/rebalpath"
	"github.com/bufdev/rebal/internal/rebal/rebalview"
	"github.com/spf13/pflag"
)

const (
	// editsFlagName is the flag name for the edits file.
	editsFlagName = "edits"
	// outputFlagName is the flag name for the output file.
	outputFlagName = "output"
)

// NewCommand returns a new proposal command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Apply per-asset edits to a plan and export the proposal",
		Long: `Edits are read from a YAML list of operations:

  - op: edit_row
    class: inflation
    row: 0
    amount: "-2000"
  - op: add_row
    class: post_fixed
    name: CDB Banco Y
    amount: "2000"

The proposal is exported once the reallocated amounts balance: with a
contribution, the positive amounts must add up to the contribution; without
one, the amounts must add up to zero.`,
		Args: appcmd.NoArgs,
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
	// Edits is the edits file path.
	Edits string
	// Format is the output format (table, csv, json, xlsx).
	Format string
	// Output is the output file path, stdout if empty.
	Output string
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
	flagSet.StringVar(&f.Edits, editsFlagName, "", "The edits file, relative to the rebal directory (default edits.yaml if present)")
	flagSet.StringVar(&f.Format, rebalcmd.FormatFlagName, "table", "Output format (table, csv, json, xlsx)")
	flagSet.StringVar(&f.Output, outputFlagName, "", "The output file path, stdout if not set")
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
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
	state, err := rebaledit.NewState(plan, portfolio.Records)
	if err != nil {
		return err
	}
	edits, err := readEdits(flags.Dir, flags.Edits)
	if err != nil {
		return err
	}
	session := rebaledit.NewSession(state)
	logger := container.Logger()
	for i, edit := range edits {
		if _, err := session.Apply(edit); err != nil {
			var negativeResultError *rebaledit.NegativeResultError
			if !errors.As(err, &negativeResultError) {
				return fmt.Errorf("edit %d: %w", i, err)
			}
			logger.Warn(
				"edit leaves a negative new value",
				"edit", i,
				"class", negativeResultError.Class.Key(),
				"asset", negativeResultError.AssetName,
				"new_value", negativeResultError.NewValue.String(),
			)
		}
	}
	state = session.State()
	currencyCode := portfolio.Config.CurrencyCode
	for _, table := range state.Tables() {
		logger.Debug(
			"class table",
			"class", table.Class().Key(),
			"edits", table.Version(),
			"total_new", table.TotalNew().String(),
		)
	}
	logger.Info(
		"editor state",
		"edits", len(edits),
		"remaining_balance", state.RemainingBalance().String(),
		"can_advance", state.CanAdvance(),
	)
	report, err := rebalexport.NewReport(state, currencyCode)
	if err != nil {
		// Nothing is written to the output file unless the proposal can be exported.
		if format == cliio.FormatTable {
			if summaryErr := writeSummaries(container.Stdout(), state, currencyCode); summaryErr != nil {
				return errors.Join(err, summaryErr)
			}
		}
		return err
	}
	writer, closeOutput, err := rebalcmd.NewOutput(container, flags.Output)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, closeOutput())
	}()
	if format == cliio.FormatTable {
		if err := writeSummaries(writer, state, currencyCode); err != nil {
			return err
		}
	}
	switch format {
	case cliio.FormatTable:
		return writeReportTables(writer, report, currencyCode)
	case cliio.FormatCSV:
		records := make([][]string, 0, len(report.Records)+1)
		records = append(records, rebalview.ExportHeaders())
		for _, record := range report.Records {
			records = append(records, rebalview.ExportToRow(record))
		}
		return cliio.WriteCSVRecords(writer, records)
	case cliio.FormatJSON:
		return cliio.WriteJSON(writer, report)
	case cliio.FormatXLSX:
		rows := make([][]string, 0, len(report.Records))
		for _, record := range report.Records {
			rows = append(rows, rebalview.ExportToRow(record))
		}
		return cliio.WriteXLSX(writer, "Proposal", rebalview.ExportHeaders(), rows)
	default:
		return appcmd.NewInvalidArgumentErrorf("unsupported format: %s", format)
	}
}

// readEdits reads the edits file.
//
// If no file was given and the default edits file does not exist, there are
// no edits.
func readEdits(dirPath string, editsFile string) ([]rebaledit.Edit, error) {
	filePath := rebalpath.EditsFilePath(dirPath, editsFile)
	if editsFile == "" {
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			return nil, nil
		}
	}
	return rebalinput.ReadEditsFile(filePath)
}

func writeSummaries(writer io.Writer, state *rebaledit.State, currencyCode string) error {
	summaries := state.Summaries()
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, rebalview.SummaryToTableRow(summary, currencyCode))
	}
	if err := cliio.WriteTable(writer, rebalview.SummaryHeaders(), rows); err != nil {
		return err
	}
	_, err := fmt.Fprintf(
		writer,
		"\nRemaining balance: %s\n\n",
		amount.Format(state.RemainingBalance(), currencyCode),
	)
	return err
}

func writeReportTables(writer io.Writer, report *rebalexport.Report, currencyCode string) error {
	if _, err := fmt.Fprintf(
		writer,
		"Model: %s (%s)\nContribution: %s\n\n",
		report.ModelName,
		report.RiskProfile,
		report.ContributionText,
	); err != nil {
		return err
	}
	differenceRows := make([][]string, 0, len(report.Differences))
	for _, difference := range report.Differences {
		differenceRows = append(differenceRows, rebalview.DifferenceToTableRow(difference))
	}
	if err := cliio.WriteTable(writer, rebalview.DifferenceHeaders(), differenceRows); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(writer); err != nil {
		return err
	}
	recordRows := make([][]string, 0, len(report.Records))
	for _, record := range report.Records {
		recordRows = append(recordRows, rebalview.ExportToTableRow(record, currencyCode))
	}
	if err := cliio.WriteTableWithTotals(
		writer,
		rebalview.ExportHeaders(),
		recordRows,
		[]string{
			rebalview.TotalLabel,
			"",
			amount.Format(report.Before.Total, currencyCode),
			"",
			amount.Format(report.After.Total, currencyCode),
			"",
		},
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(writer); err != nil {
		return err
	}
	liquidityRows := make([][]string, 0, len(report.Liquidity))
	for _, bandTotal := range report.Liquidity {
		liquidityRows = append(liquidityRows, rebalview.BandTotalToTableRow(bandTotal, currencyCode))
	}
	return cliio.WriteTable(writer, rebalview.LiquidityHeaders(), liquidityRows)
}
