package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/stiefelloader/stiefel/go/boot"
	"github.com/stiefelloader/stiefel/go/firmware"
	"github.com/stiefelloader/stiefel/go/models"
	"github.com/stiefelloader/stiefel/go/report"
)

// LoaderCmd holds what every subcommand shares: flags, config and the
// console the loader reports to.
type LoaderCmd struct {
	Config *models.Config
	Flags  *flag.FlagSet
	// Usage line suffix, e.g. "<esp-dir>".
	Args string

	Stdout  io.Writer
	con     *report.Console
	closers []io.Closer
}

func NewLoaderCmd(args string) *LoaderCmd {
	return &LoaderCmd{
		Config: &models.Config{Color: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())},
		Flags:  flag.NewFlagSet("cli", flag.ExitOnError),
		Args:   args,
		Stdout: colorable.NewColorableStdout(),
	}
}

// Parse loads settings, then lets flags override them. It returns the
// positional arguments.
func (c *LoaderCmd) Parse(argv []string) []string {
	log.SetHandler(cli.New(os.Stderr))
	log.SetLevel(log.InfoLevel)
	if err := LoadSettings(c.Config); err != nil {
		log.WithError(err).Warn("ignoring settings")
	}

	fs := c.Flags
	fs.BoolVar(&c.Config.Color, "color", c.Config.Color, "color the level tag of console lines")
	fs.BoolVar(&c.Config.Verbose, "v", c.Config.Verbose, "verbose output")
	fs.BoolVar(&c.Config.StrictFormat, "strict", c.Config.StrictFormat, "exit with Load Error when the kernel header is rejected")
	fs.StringVar(&c.Config.Transcript, "transcript", c.Config.Transcript, "also write the console transcript to <file>")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] %s\n\nOptions:\n", argv[0], c.Args)
		var flags []*flag.Flag
		fs.VisitAll(func(f *flag.Flag) { flags = append(flags, f) })
		models.PrintFlags(os.Stderr, flags)
	}
	fs.Parse(argv[1:])
	if c.Config.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	args := fs.Args()
	if len(args) < 1 {
		fs.Usage()
		os.Exit(1)
	}
	return args
}

// Console returns the reporter, building it on first use and attaching the
// transcript file when configured.
func (c *LoaderCmd) Console() (*report.Console, error) {
	if c.con != nil {
		return c.con, nil
	}
	con := report.NewConsole(c.Stdout, c.Config.Color)
	if c.Config.Transcript != "" {
		f, err := os.OpenFile(c.Config.Transcript, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create transcript")
		}
		log.WithField("path", c.Config.Transcript).Debug("writing transcript")
		con.SetTranscript(f)
		c.closers = append(c.closers, f)
	}
	c.con = con
	return con, nil
}

// NewLoader serves dir as the boot volume and returns a loader bound to it.
func (c *LoaderCmd) NewLoader(dir string) (*boot.Loader, error) {
	volume, err := firmware.OpenHostVolume(dir)
	if err != nil {
		return nil, err
	}
	con, err := c.Console()
	if err != nil {
		return nil, err
	}
	fw := firmware.New(volume, c.Stdout)
	return boot.NewLoader(fw.BootContext(), con, c.Config), nil
}

func (c *LoaderCmd) Close() {
	for _, cl := range c.closers {
		cl.Close()
	}
	c.closers = nil
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// PrintError prints err and, when it carries one, its stack trace.
func (c *LoaderCmd) PrintError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	st, ok := err.(stackTracer)
	if !ok || !c.Config.Verbose {
		return
	}
	for _, f := range st.StackTrace() {
		method := fmt.Sprintf("%n", f)
		fmt.Fprintf(os.Stderr, "  %-40s | %s()\n", fmt.Sprintf("%s:%d", f, f), method)
		if method == "main" {
			break
		}
	}
}

// Exit closes open files and exits with the status carried by err.
func (c *LoaderCmd) Exit(err error) {
	c.Close()
	if err == nil {
		os.Exit(0)
	}
	if e, ok := errors.Cause(err).(models.ExitStatus); ok {
		os.Exit(int(e))
	}
	c.PrintError(err)
	os.Exit(1)
}
