// Package boot is the image-resolution and header-validation pipeline:
// resolve the boot volume, open the kernel, read its ELF header and validate
// it for this machine.
package boot

import (
	"debug/elf"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/stiefelloader/stiefel/go/loader"
	"github.com/stiefelloader/stiefel/go/models"
	"github.com/stiefelloader/stiefel/go/report"
)

type Outcome int

const (
	// Failed covers resolution and I/O errors.
	Failed Outcome = iota
	NotFound
	RejectedFormat
	Accepted
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case RejectedFormat:
		return "rejected format"
	case NotFound:
		return "not found"
	}
	return "failed"
}

type Result struct {
	Outcome Outcome
	// Header is only set once the full header was read.
	Header *loader.Header
	Info   *models.FileInfo
	Err    error
}

// Status maps the outcome to the status handed back to whatever started the
// loader. A format rejection is advisory unless strict is set.
func (r *Result) Status(strict bool) models.Status {
	switch r.Outcome {
	case Accepted:
		return models.Success
	case NotFound:
		return models.NotFound
	case RejectedFormat:
		if strict {
			return models.LoadError
		}
		return models.Success
	}
	return models.StatusOf(r.Err)
}

type Loader struct {
	ctx     *models.BootContext
	con     *report.Console
	config  *models.Config
	machine elf.Machine
}

func NewLoader(ctx *models.BootContext, con *report.Console, config *models.Config) *Loader {
	if config == nil {
		config = &models.Config{}
	}
	return &Loader{ctx: ctx, con: con, config: config, machine: loader.NativeMachine}
}

// Run executes the pipeline once. The kernel handle is released on every
// path out of Run.
func (l *Loader) Run() *Result {
	l.con.Notice("Launching Stiefelloader...")

	fs, err := l.ResolveFileSystem()
	if err != nil {
		l.con.Fatal("Failed to resolve the boot volume.")
		return &Result{Outcome: Failed, Err: err}
	}
	kernel, err := l.Locate(fs, nil, KernelPath)
	if err != nil {
		l.con.Fatal("Failed to load the kernel file at /%s.", KernelPath)
		return &Result{Outcome: NotFound, Err: err}
	}
	defer l.release(kernel, "kernel file")

	return l.Inspect(kernel, KernelPath)
}

// Inspect reads and validates the header of an already open image. name is
// only used for reporting.
func (l *Loader) Inspect(kernel models.File, name string) *Result {
	header, info, err := l.ReadHeader(kernel, name)
	if err != nil {
		l.con.Fatal("Failed to read the kernel header from /%s.", name)
		return &Result{Outcome: Failed, Info: info, Err: err}
	}

	if err := loader.Validate(header, l.machine); err != nil {
		l.con.Error("The format of the kernel.elf (/%s) is bad.", name)
		l.con.Warn("%s", err)
		return &Result{Outcome: RejectedFormat, Header: header, Info: info, Err: errors.WithStack(err)}
	}
	l.con.OK("Verified format of /%s.", name)
	return &Result{Outcome: Accepted, Header: header, Info: info}
}

// ReadHeader reads the kernel header, reporting the metadata query and the
// read as separate steps.
func (l *Loader) ReadHeader(kernel models.File, name string) (*loader.Header, *models.FileInfo, error) {
	header, info, err := loader.ReadHeader(kernel)
	if info == nil {
		l.con.Check(err, "get kernel info")
		return nil, nil, err
	}
	l.con.Check(nil, "get kernel info")
	l.con.Notice("Kernel image /%s is %s.", name, humanize.IBytes(info.Size))
	if err := l.con.Check(err, "read the kernel header"); err != nil {
		return nil, info, err
	}
	if l.config.Verbose {
		l.con.Notice("%s %s, entry %#x, %d program headers at %#x",
			header.Arch(), elf.Type(header.Type), header.Entry, header.Phnum, header.Phoff)
	}
	return header, info, nil
}
