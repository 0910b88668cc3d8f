package cmd

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// globalState bundles everything the commands touch in the environment, so
// tests can swap in an in-memory filesystem and buffers for output.
type globalState struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	logger *logrus.Logger

	flags globalFlags
}

type globalFlags struct {
	LogLevel string `envconfig:"JQCHECK_LOG_LEVEL"`
	NoColor  bool   `envconfig:"JQCHECK_NO_COLOR"`
}

func newGlobalState() *globalState {
	flags := globalFlags{LogLevel: logrus.InfoLevel.String()}
	// Flags still override whatever the environment set.
	_ = envconfig.Process("", &flags)

	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		flags.NoColor = true
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	return &globalState{
		fs:     afero.NewOsFs(),
		stdout: colorable.NewColorable(os.Stdout),
		stderr: os.Stderr,
		logger: logger,
		flags:  flags,
	}
}

// newTestGlobalState is what command tests build their environment from.
func newTestGlobalState(fs afero.Fs, stdout, stderr io.Writer) *globalState {
	logger := logrus.New()
	logger.SetOutput(stderr)
	return &globalState{
		fs:     fs,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
		flags:  globalFlags{LogLevel: logrus.InfoLevel.String(), NoColor: true},
	}
}

func (gs *globalState) applyFlags() error {
	level, err := logrus.ParseLevel(gs.flags.LogLevel)
	if err != nil {
		return err
	}
	gs.logger.SetLevel(level)
	return nil
}

func (gs *globalState) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if gs.flags.NoColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c
}
