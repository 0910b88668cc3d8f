package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/domtest/jqassert/htmlsel"
	"github.com/domtest/jqassert/scriptcall"
)

type scanCmd struct {
	gs        *globalState
	fragments bool
}

func getScanCmd(gs *globalState) *cobra.Command {
	c := &scanCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "scan <bodyfile>",
		Short: "List every jQuery-style call found in a saved response body",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	cmd.Flags().BoolVar(&c.fragments, "fragments", false,
		"also print the parsed fragment outline of each HTML payload")
	return cmd
}

func (c *scanCmd) run(_ *cobra.Command, args []string) error {
	body, err := afero.ReadFile(c.gs.fs, args[0])
	if err != nil {
		return fmt.Errorf("cannot read body file: %w", err)
	}

	calls := scriptcall.Scan(string(body))
	c.gs.logger.WithField("calls", len(calls)).Debug("body scanned")
	if len(calls) == 0 {
		fmt.Fprintln(c.gs.stdout, "no calls found")
		return nil
	}

	shape := scriptcall.Shape{}
	for _, call := range calls {
		argv := make([]string, len(call.Args))
		for i, a := range call.Args {
			argv[i] = a.String()
		}
		fmt.Fprintf(c.gs.stdout, "%6d  $(%s).%s(%s)\n",
			call.Pos, call.Receiver, call.Method, strings.Join(argv, ", "))

		if !c.fragments {
			continue
		}
		payload, ok := shape.Payload(call)
		if !ok {
			continue
		}
		sel, err := htmlsel.ParseFragments(scriptcall.Unescape(payload))
		if err != nil {
			return fmt.Errorf("cannot parse payload at offset %d: %w", call.Pos, err)
		}
		sel.Each(func(_ int, frag htmlsel.Selection) {
			fmt.Fprintf(c.gs.stdout, "        <%s> %s\n", frag.NodeName(), oneLine(frag.Text()))
		})
	}
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
