// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package rebalpath derives file paths from the rebal base directory.
// All layout is defined here so callers don't duplicate path construction
// logic.
//
// The base directory (--dir flag) contains:
//
//	rebal.yaml       Config file
//	holdings.yaml    Holdings (default, configurable, may be CSV)
//	edits.yaml       Editor session edits (default, overridable by flag)
package rebalpath

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// ConfigFileName is the well-known config file name within the base directory.
	ConfigFileName = "rebal.yaml"
	// DefaultHoldingsFileName is the holdings file used when the config does not name one.
	DefaultHoldingsFileName = "holdings.yaml"
	// DefaultEditsFileName is the edits file used when no path is given.
	DefaultEditsFileName = "edits.yaml"
)

// ConfigFilePath returns the path to the config file within the base directory.
func ConfigFilePath(dirPath string) string {
	return filepath.Join(dirPath, ConfigFileName)
}

// HoldingsFilePath returns the path to the holdings file.
//
// Relative paths are resolved against the base directory.
func HoldingsFilePath(dirPath string, holdingsFile string) string {
	if holdingsFile == "" {
		holdingsFile = DefaultHoldingsFileName
	}
	return resolve(dirPath, holdingsFile)
}

// EditsFilePath returns the path to an edits file.
//
// Relative paths are resolved against the base directory.
func EditsFilePath(dirPath string, editsFile string) string {
	if editsFile == "" {
		editsFile = DefaultEditsFileName
	}
	return resolve(dirPath, editsFile)
}

// resolve expands a leading ~ to the home directory and joins relative paths
// onto dirPath. If the home directory is unknown, ~ is left as is.
func resolve(dirPath string, filePath string) string {
	if rest, ok := strings.CutPrefix(filePath, "~"); ok && (rest == "" || rest[0] == filepath.Separator) {
		if homeDirPath, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDirPath, rest)
		}
	}
	if filepath.IsAbs(filePath) {
		return filePath
	}
	return filepath.Join(dirPath, filePath)
}
