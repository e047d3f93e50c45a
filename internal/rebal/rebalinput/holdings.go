// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rebalinput reads holdings and editor edits from files.
//
// Holdings files are YAML lists or CSV files with a header row. Known CSV
// columns are name, class, current_value and liquidity. Any other column is
// carried through as an opaque metric:
//
//	name,class,current_value,liquidity,bank
//	Tesouro Selic 2029,Pós Fixado,"7.000,00",D+1,XP
//
// Edits files are YAML lists of editor operations, see ReadEdits.
package rebalinput

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"gopkg.in/yaml.v3"
)

const (
	nameColumn         = "name"
	classColumn        = "class"
	currentValueColumn = "current_value"
	liquidityColumn    = "liquidity"
)

// ExternalHolding is the YAML-serializable structure of one holding.
type ExternalHolding struct {
	// Name is the asset name.
	Name string `yaml:"name"`
	// Class is the class key or label, may be empty.
	Class string `yaml:"class"`
	// CurrentValue is the current balance (e.g., "7000.00" or "7.000,00").
	CurrentValue string `yaml:"current_value"`
	// Liquidity is the liquidity tag, may be empty.
	Liquidity string `yaml:"liquidity"`
	// Metrics are opaque performance figures.
	Metrics map[string]string `yaml:"metrics"`
}

// NewYAMLParser returns a new rebalasset.StatementParser for YAML holdings.
func NewYAMLParser() rebalasset.StatementParser {
	return yamlParser{}
}

// NewCSVParser returns a new rebalasset.StatementParser for CSV holdings.
func NewCSVParser() rebalasset.StatementParser {
	return csvParser{}
}

// ReadHoldingsFile reads raw holdings from a file.
//
// Files ending in .csv are parsed as CSV, everything else as YAML.
func ReadHoldingsFile(ctx context.Context, filePath string) (_ []rebalasset.RawAsset, retErr error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("holdings file not found at %s", filePath)
		}
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	parser := NewYAMLParser()
	if strings.EqualFold(filepath.Ext(filePath), ".csv") {
		parser = NewCSVParser()
	}
	rawAssets, err := parser.Parse(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("parsing holdings file %s: %w", filePath, err)
	}
	return rawAssets, nil
}

type yamlParser struct{}

func (yamlParser) Parse(ctx context.Context, reader io.Reader) ([]rebalasset.RawAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var externalHoldings []ExternalHolding
	if err := decodeYAMLStrict(reader, &externalHoldings); err != nil {
		return nil, err
	}
	rawAssets := make([]rebalasset.RawAsset, 0, len(externalHoldings))
	for i, externalHolding := range externalHoldings {
		if externalHolding.Name == "" {
			return nil, fmt.Errorf("holding %d: name is required", i)
		}
		rawAssets = append(
			rawAssets,
			rebalasset.RawAsset{
				Name:         externalHolding.Name,
				CurrentValue: externalHolding.CurrentValue,
				ClassHint:    externalHolding.Class,
				LiquidityTag: externalHolding.Liquidity,
				Metrics:      externalHolding.Metrics,
			},
		)
	}
	return rawAssets, nil
}

type csvParser struct{}

func (csvParser) Parse(ctx context.Context, reader io.Reader) ([]rebalasset.RawAsset, error) {
	csvReader := csv.NewReader(reader)
	// Don't treat leading spaces as significant.
	csvReader.TrimLeadingSpace = true
	header, err := csvReader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, column := range header {
		columns[strings.ToLower(strings.TrimSpace(column))] = i
	}
	nameIndex, ok := columns[nameColumn]
	if !ok {
		return nil, fmt.Errorf("CSV header is missing the %q column", nameColumn)
	}
	if _, ok := columns[currentValueColumn]; !ok {
		return nil, fmt.Errorf("CSV header is missing the %q column", currentValueColumn)
	}
	var rawAssets []rebalasset.RawAsset
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		name := strings.TrimSpace(record[nameIndex])
		// Skip blank lines left by spreadsheet exports.
		if name == "" {
			continue
		}
		rawAsset := rebalasset.RawAsset{
			Name:         name,
			CurrentValue: field(record, columns, currentValueColumn),
			ClassHint:    field(record, columns, classColumn),
			LiquidityTag: field(record, columns, liquidityColumn),
		}
		for column, index := range columns {
			switch column {
			case nameColumn, classColumn, currentValueColumn, liquidityColumn:
				continue
			}
			if value := strings.TrimSpace(record[index]); value != "" {
				if rawAsset.Metrics == nil {
					rawAsset.Metrics = make(map[string]string)
				}
				rawAsset.Metrics[column] = value
			}
		}
		rawAssets = append(rawAssets, rawAsset)
	}
	return rawAssets, nil
}

func field(record []string, columns map[string]int, column string) string {
	index, ok := columns[column]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

// decodeYAMLStrict decodes YAML with strict field checking.
// An empty document decodes to the zero value.
func decodeYAMLStrict(reader io.Reader, v any) error {
	yamlDecoder := yaml.NewDecoder(reader)
	// Reject unknown fields.
	yamlDecoder.KnownFields(true)
	if err := yamlDecoder.Decode(v); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("could not unmarshal as YAML: %w", err)
	}
	return nil
}
