// Copyright 2026 Peter Edge
//
// All rights reserved.

package rebalinput

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bufdev/rebal/internal/pkg/amount"
	"github.com/bufdev/rebal/internal/rebal/rebalasset"
	"github.com/bufdev/rebal/internal/rebal/rebaledit"
)

const (
	// OpEditRow sets the reallocated amount of an existing row.
	OpEditRow = "edit_row"
	// OpAddRow appends a new row.
	OpAddRow = "add_row"
	// OpRemoveRow removes a row.
	OpRemoveRow = "remove_row"
	// OpEditLiquidity sets the liquidity tag of a row.
	OpEditLiquidity = "edit_liquidity"
)

// ExternalEdit is the YAML-serializable structure of one editor edit.
//
//	- op: edit_row
//	  class: inflation
//	  row: 0
//	  amount: "-2.000,00"
//	- op: add_row
//	  class: post_fixed
//	  name: CDB Banco Y
//	  amount: "2000"
type ExternalEdit struct {
	Op        string `yaml:"op"`
	Class     string `yaml:"class"`
	Row       *int   `yaml:"row"`
	Name      string `yaml:"name"`
	Amount    string `yaml:"amount"`
	Liquidity string `yaml:"liquidity"`
}

// ReadEditsFile reads edits from a YAML file.
func ReadEditsFile(filePath string) (_ []rebaledit.Edit, retErr error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("edits file not found at %s", filePath)
		}
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, file.Close())
	}()
	edits, err := ReadEdits(file)
	if err != nil {
		return nil, fmt.Errorf("parsing edits file %s: %w", filePath, err)
	}
	return edits, nil
}

// ReadEdits reads a YAML list of edits.
//
// Amounts are parsed leniently, so unparseable amounts are zero. Unknown
// operations and classes are errors, as are row operations without a row.
func ReadEdits(reader io.Reader) ([]rebaledit.Edit, error) {
	var externalEdits []ExternalEdit
	if err := decodeYAMLStrict(reader, &externalEdits); err != nil {
		return nil, err
	}
	edits := make([]rebaledit.Edit, 0, len(externalEdits))
	for i, externalEdit := range externalEdits {
		edit, err := newEdit(externalEdit)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		edits = append(edits, edit)
	}
	return edits, nil
}

func newEdit(externalEdit ExternalEdit) (rebaledit.Edit, error) {
	class, err := rebalasset.ParseClass(externalEdit.Class)
	if err != nil {
		return nil, err
	}
	if !class.IsValid() {
		return nil, errors.New("class is required")
	}
	switch externalEdit.Op {
	case OpEditRow:
		row, err := requireRow(externalEdit)
		if err != nil {
			return nil, err
		}
		return rebaledit.EditRow{
			Class:             class,
			Row:               row,
			ReallocatedAmount: amount.ParseLenient(externalEdit.Amount),
		}, nil
	case OpAddRow:
		return rebaledit.AddRow{
			Class:             class,
			AssetName:         externalEdit.Name,
			ReallocatedAmount: amount.ParseLenient(externalEdit.Amount),
		}, nil
	case OpRemoveRow:
		row, err := requireRow(externalEdit)
		if err != nil {
			return nil, err
		}
		return rebaledit.RemoveRow{
			Class: class,
			Row:   row,
		}, nil
	case OpEditLiquidity:
		row, err := requireRow(externalEdit)
		if err != nil {
			return nil, err
		}
		return rebaledit.EditLiquidity{
			Class:        class,
			Row:          row,
			LiquidityTag: externalEdit.Liquidity,
		}, nil
	default:
		return nil, fmt.Errorf("unknown op %q", externalEdit.Op)
	}
}

func requireRow(externalEdit ExternalEdit) (int, error) {
	if externalEdit.Row == nil {
		return 0, fmt.Errorf("op %q requires a row", externalEdit.Op)
	}
	return *externalEdit.Row, nil
}
