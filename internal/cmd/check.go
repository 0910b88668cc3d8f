package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/domtest/jqassert"
	"github.com/domtest/jqassert/htmlsel"
)

type checkCmd struct {
	gs    *globalState
	rules string
}

func getCheckCmd(gs *globalState) *cobra.Command {
	c := &checkCmd{gs: gs}
	cmd := &cobra.Command{
		Use:   "check <bodyfile>",
		Short: "Verify a saved response body against a YAML rules file",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	cmd.Flags().StringVar(&c.rules, "rules", "jqcheck.yaml", "rules file to evaluate")
	return cmd
}

func (c *checkCmd) run(_ *cobra.Command, args []string) error {
	body, err := afero.ReadFile(c.gs.fs, args[0])
	if err != nil {
		return fmt.Errorf("cannot read body file: %w", err)
	}
	rf, err := loadRules(c.gs.fs, c.rules)
	if err != nil {
		return err
	}

	pass := c.gs.color(color.FgGreen).Sprint("PASS")
	fail := c.gs.color(color.FgRed).Sprint("FAIL")

	failed := 0
	for _, r := range rf.Checks {
		rep := &reporter{log: c.gs.logger}
		a := jqassert.New(rep, jqassert.NewResponse(0, string(body))).
			WithLogger(c.gs.logger)
		rep.runRule(a, r)

		if len(rep.failures) == 0 {
			fmt.Fprintf(c.gs.stdout, "%s  %s\n", pass, r.title())
			continue
		}
		failed++
		fmt.Fprintf(c.gs.stdout, "%s  %s\n", fail, r.title())
		for _, f := range rep.failures {
			fmt.Fprintf(c.gs.stdout, "      %s\n", f)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(rf.Checks))
	}
	fmt.Fprintf(c.gs.stdout, "%d checks passed\n", len(rf.Checks))
	return nil
}

// reporter implements jqassert.TB outside a test binary. Fatalf records the
// diagnostic and aborts the current rule by panicking with a sentinel, the
// same way testing ends a goroutine on FailNow; the asserter's deferred
// scope restoration still runs during the unwind.
type reporter struct {
	log      interface{ Printf(string, ...interface{}) }
	failures []string
}

type ruleAbort struct{}

func (r *reporter) Helper() {}

func (r *reporter) Logf(format string, args ...interface{}) {
	r.log.Printf(format, args...)
}

func (r *reporter) Fatalf(format string, args ...interface{}) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
	panic(ruleAbort{})
}

func (r *reporter) runRule(a *jqassert.Asserter, ru rule) {
	defer func() {
		if rec := recover(); rec != nil {
			if _, ok := rec.(ruleAbort); !ok {
				panic(rec)
			}
		}
	}()

	if len(ru.Select) == 0 {
		a.SelectJQuery(ru.shape())
		return
	}
	a.SelectJQuery(ru.shape(), func(htmlsel.Selection) {
		for _, sr := range ru.Select {
			a.Select(sr.Selector, sr.checks()...)
		}
	})
}
