// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/rebal/cmd/rebal/internal/command/config"
	"github.com/bufdev/rebal/cmd/rebal/internal/command/holding"
	"github.com/bufdev/rebal/cmd/rebal/internal/command/model"
	"github.com/bufdev/rebal/cmd/rebal/internal/command/plan"
	"github.com/bufdev/rebal/cmd/rebal/internal/command/proposal"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("rebal"))
}

// newRootCommand creates the root rebal command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:                 name,
		Short:               "Rebalance an investment portfolio against a target allocation model",
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			config.NewCommand("config", builder),
			holding.NewCommand("holding", builder),
			model.NewCommand("model", builder),
			plan.NewCommand("plan", builder),
			proposal.NewCommand("proposal", builder),
		},
	}
}
