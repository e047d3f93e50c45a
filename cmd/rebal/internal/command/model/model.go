// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package model implements the "model" command group.
package model

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/rebal/cmd/rebal/internal/command/model/modellist"
	"github.com/bufdev/rebal/cmd/rebal/internal/command/model/modelshow"
)

// NewCommand returns a new model command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Display target allocation models",
		SubCommands: []*appcmd.Command{
			modellist.NewCommand("list", builder),
			modelshow.NewCommand("show", builder),
		},
	}
}
