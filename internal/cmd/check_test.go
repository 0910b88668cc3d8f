package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkBody = `
	$("#cart").replaceWith("<div class=\"cart\"><span class=\"total\">$12.00<\/span><\/div>");
	$("#flash").remove();
`

const checkRules = `
checks:
  - name: cart updated
    method: replaceWith
    identifier: "#cart"
    select:
      - selector: "span.total"
        count: 1
        text: "$12.00"
  - name: flash cleared
    method: remove
    identifier: "#flash"
`

func writeFiles(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func runCommand(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	gs := newTestGlobalState(fs, stdout, stderr)
	root := newRootCommand(gs)
	root.cmd.SetArgs(args)
	root.cmd.SetOut(stdout)
	root.cmd.SetErr(stderr)
	err := root.cmd.Execute()
	return stdout.String(), err
}

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	t.Run("AllRulesPass", func(t *testing.T) {
		t.Parallel()
		fs := writeFiles(t, map[string]string{
			"body.html":    checkBody,
			"jqcheck.yaml": checkRules,
		})
		out, err := runCommand(t, fs, "check", "body.html", "--rules", "jqcheck.yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "PASS  cart updated")
		assert.Contains(t, out, "PASS  flash cleared")
		assert.Contains(t, out, "2 checks passed")
	})

	t.Run("FailingRule", func(t *testing.T) {
		t.Parallel()
		fs := writeFiles(t, map[string]string{
			"body.html": checkBody,
			"rules.yaml": `
checks:
  - name: wrong total
    method: replaceWith
    select:
      - selector: "span.total"
        text: "$99.00"
`,
		})
		out, err := runCommand(t, fs, "check", "body.html", "--rules", "rules.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 1 checks failed")
		assert.Contains(t, out, "FAIL  wrong total")
		assert.Contains(t, out, "$99.00")
	})

	t.Run("NoMatchingCall", func(t *testing.T) {
		t.Parallel()
		fs := writeFiles(t, map[string]string{
			"body.html": `<p>plain html, no scripting calls</p>`,
			"rules.yaml": `
checks:
  - name: cart updated
    identifier: "#cart"
`,
		})
		out, err := runCommand(t, fs, "check", "body.html", "--rules", "rules.yaml")
		require.Error(t, err)
		assert.Contains(t, out, "FAIL  cart updated")
		assert.Contains(t, out, "no jQuery call matches")
	})

	t.Run("MissingBodyFile", func(t *testing.T) {
		t.Parallel()
		fs := writeFiles(t, map[string]string{"rules.yaml": checkRules})
		_, err := runCommand(t, fs, "check", "gone.html", "--rules", "rules.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot read body file")
	})

	t.Run("BadRulesFile", func(t *testing.T) {
		t.Parallel()
		fs := writeFiles(t, map[string]string{
			"body.html":  checkBody,
			"rules.yaml": "checks: [",
		})
		_, err := runCommand(t, fs, "check", "body.html", "--rules", "rules.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot parse rules file")
	})

	t.Run("EmptyRules", func(t *testing.T) {
		t.Parallel()
		fs := writeFiles(t, map[string]string{
			"body.html":  checkBody,
			"rules.yaml": "checks: []",
		})
		_, err := runCommand(t, fs, "check", "body.html", "--rules", "rules.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "declares no checks")
	})
}
