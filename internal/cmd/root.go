// Package cmd implements the jqcheck command line tool: offline inspection of
// saved response bodies for jQuery-style scripting calls, and rule-driven
// conformance checks against them.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Execute runs the root command and returns the process exit code.
func Execute() int {
	gs := newGlobalState()
	if err := newRootCommand(gs).cmd.Execute(); err != nil {
		gs.logger.Error(err.Error())
		return 1
	}
	return 0
}

type rootCommand struct {
	gs  *globalState
	cmd *cobra.Command
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	c.cmd = &cobra.Command{
		Use:           "jqcheck",
		Short:         "Inspect response bodies for jQuery-style scripting calls",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return gs.applyFlags()
		},
	}

	c.cmd.PersistentFlags().AddFlagSet(rootPersistentFlagSet(gs))
	c.cmd.AddCommand(getScanCmd(gs))
	c.cmd.AddCommand(getCheckCmd(gs))
	return c
}

func rootPersistentFlagSet(gs *globalState) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVar(&gs.flags.LogLevel, "log-level", gs.flags.LogLevel,
		"logging level (debug, info, warn, error)")
	flags.BoolVar(&gs.flags.NoColor, "no-color", gs.flags.NoColor,
		"disable colored output")
	return flags
}
