// Package report writes the loader's console transcript. Every line has the
// shape "[ LEVEL ] ::-> message" followed by CRLF, which is what the firmware
// text console expects.
package report

import (
	"fmt"
	"io"

	"github.com/lunixbochs/vtclean"
	"github.com/mgutz/ansi"
	"github.com/pkg/errors"

	"github.com/stiefelloader/stiefel/go/models"
)

type Level string

const (
	NOTICE Level = "NOTICE"
	WARN   Level = "WARN"
	OK     Level = "OK"
	ERROR  Level = "ERROR"
	FATAL  Level = "FATAL"
)

var levelColor = map[Level]string{
	NOTICE: ansi.ColorCode("cyan"),
	WARN:   ansi.ColorCode("yellow+b"),
	OK:     ansi.ColorCode("green+b"),
	ERROR:  ansi.ColorCode("red+b"),
	FATAL:  ansi.ColorCode("white+b:red"),
}

type Console struct {
	out        io.Writer
	color      bool
	transcript io.Writer
}

func NewConsole(out io.Writer, color bool) *Console {
	return &Console{out: out, color: color}
}

// SetTranscript mirrors every line into w with escape sequences removed.
func (c *Console) SetTranscript(w io.Writer) {
	c.transcript = w
}

func (c *Console) Log(level Level, format string, args ...interface{}) {
	tag := string(level)
	if c.color {
		tag = levelColor[level] + tag + ansi.Reset
	}
	line := fmt.Sprintf("[ %s ] ::-> %s", tag, fmt.Sprintf(format, args...))
	fmt.Fprint(c.out, line+"\r\n")
	if c.transcript != nil {
		fmt.Fprint(c.transcript, vtclean.Clean(line, false)+"\n")
	}
}

func (c *Console) Notice(format string, args ...interface{}) { c.Log(NOTICE, format, args...) }
func (c *Console) Warn(format string, args ...interface{})   { c.Log(WARN, format, args...) }
func (c *Console) OK(format string, args ...interface{})     { c.Log(OK, format, args...) }
func (c *Console) Error(format string, args ...interface{})  { c.Log(ERROR, format, args...) }
func (c *Console) Fatal(format string, args ...interface{})  { c.Log(FATAL, format, args...) }

// Check logs the outcome of a firmware step and hands err back unchanged, so
// callers keep ordinary `if err != nil { return }` propagation.
func (c *Console) Check(err error, what string) error {
	if err == nil {
		c.OK("Successfully managed to %s", what)
		return nil
	}
	c.Error("An UEFI Error occured while trying to %s", what)
	if s, ok := errors.Cause(err).(models.Status); ok {
		c.Error("%s", s)
	} else {
		c.Error("%s", err)
	}
	return err
}
