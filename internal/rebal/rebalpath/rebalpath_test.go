// Copyright 2026 Peter Edge
//
// All rights reserved.

package rebalpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	t.Parallel()
	require.Equal(t, filepath.Join("base", "rebal.yaml"), ConfigFilePath("base"))
	require.Equal(t, filepath.Join("base", "holdings.yaml"), HoldingsFilePath("base", ""))
	require.Equal(t, filepath.Join("base", "data", "xp.csv"), HoldingsFilePath("base", filepath.Join("data", "xp.csv")))
	absolutePath := filepath.Join(t.TempDir(), "holdings.yaml")
	require.Equal(t, absolutePath, HoldingsFilePath("base", absolutePath))
	require.Equal(t, filepath.Join("base", "edits.yaml"), EditsFilePath("base", ""))
}

func TestHomePaths(t *testing.T) {
	t.Parallel()
	homeDirPath, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	require.Equal(t, filepath.Join(homeDirPath, "edits.yaml"), EditsFilePath("base", filepath.Join("~", "edits.yaml")))
	require.Equal(t, filepath.Join("base", "~edits.yaml"), EditsFilePath("base", "~edits.yaml"))
}
