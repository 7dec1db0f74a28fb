package boot

import (
	"bytes"
	"debug/elf"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/stiefelloader/stiefel/go/firmware"
	"github.com/stiefelloader/stiefel/go/loader"
	"github.com/stiefelloader/stiefel/go/models"
	"github.com/stiefelloader/stiefel/go/models/mock"
	"github.com/stiefelloader/stiefel/go/report"
)

func kernelImage(t *testing.T, mutate func(h *loader.Header)) []byte {
	h := loader.NewExecHeader(loader.NativeMachine)
	if mutate != nil {
		mutate(h)
	}
	p, err := h.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return append(p, make([]byte, 0x1000)...)
}

func runMock(t *testing.T, bs *mock.BootServices) (*Result, string) {
	var out bytes.Buffer
	ctx := mock.NewBootContext(bs, &out)
	res := NewLoader(ctx, report.NewConsole(ctx.SystemTable().ConOut, false), nil).Run()
	return res, out.String()
}

func expectLines(t *testing.T, transcript string, lines ...string) {
	for _, line := range lines {
		if !strings.Contains(transcript, line+"\r\n") {
			t.Errorf("transcript missing %q:\n%s", line, transcript)
		}
	}
}

func rejectLines(t *testing.T, transcript string, fragments ...string) {
	for _, frag := range fragments {
		if strings.Contains(transcript, frag) {
			t.Errorf("transcript should not contain %q:\n%s", frag, transcript)
		}
	}
}

func TestAccepted(t *testing.T) {
	bs, fs := mock.NewVolume(map[string][]byte{KernelPath: kernelImage(t, nil)})
	res, out := runMock(t, bs)
	if res.Outcome != Accepted || res.Err != nil {
		t.Fatalf("expected accepted; got %s (%v)\n%s", res.Outcome, res.Err, out)
	}
	if res.Header == nil || elf.Machine(res.Header.Machine) != loader.NativeMachine {
		t.Fatalf("unexpected header %+v", res.Header)
	}
	expectLines(t, out,
		"[ NOTICE ] ::-> Launching Stiefelloader...",
		"[ OK ] ::-> Successfully managed to handle the loaded image protocol",
		"[ OK ] ::-> Successfully managed to handle the simple file system protocol",
		"[ OK ] ::-> Successfully managed to open the root volume",
		"[ OK ] ::-> Successfully managed to open the kernel file",
		"[ OK ] ::-> Successfully managed to get kernel info",
		"[ OK ] ::-> Successfully managed to read the kernel header",
		"[ OK ] ::-> Verified format of /esque.",
	)
	rejectLines(t, out, "ERROR", "FATAL")
	if st := res.Status(true); st != models.Success {
		t.Errorf("expected Success; got %s", st)
	}

	kernel := fs.Root.Children[KernelPath]
	if kernel.Closes != 1 || fs.Root.Closes != 1 {
		t.Errorf("handles not released: kernel=%d root=%d", kernel.Closes, fs.Root.Closes)
	}
}

func TestKernelMissing(t *testing.T) {
	bs, fs := mock.NewVolume(map[string][]byte{"vmlinuz": kernelImage(t, nil)})
	res, out := runMock(t, bs)
	if res.Outcome != NotFound {
		t.Fatalf("expected not found; got %s", res.Outcome)
	}
	if st := res.Status(false); st != models.NotFound {
		t.Errorf("expected Not Found status; got %s", st)
	}
	expectLines(t, out,
		"[ ERROR ] ::-> An UEFI Error occured while trying to open the kernel file",
		"[ ERROR ] ::-> Not Found",
		"[ FATAL ] ::-> Failed to load the kernel file at /esque.",
	)
	rejectLines(t, out, "get kernel info", "read the kernel header", "format")
	if res.Header != nil {
		t.Error("no header should be read")
	}
	if fs.Root.Closes != 1 {
		t.Errorf("root volume not released: %d", fs.Root.Closes)
	}
	if fs.Root.Children["vmlinuz"].Reads != 0 {
		t.Error("unrelated file was read")
	}
}

func TestBadMagic(t *testing.T) {
	image := kernelImage(t, nil)
	copy(image, "\x7fELG")
	bs, fs := mock.NewVolume(map[string][]byte{KernelPath: image})
	res, out := runMock(t, bs)
	if res.Outcome != RejectedFormat {
		t.Fatalf("expected rejected; got %s", res.Outcome)
	}
	expectLines(t, out, "[ ERROR ] ::-> The format of the kernel.elf (/esque) is bad.")
	rejectLines(t, out, "Verified format")
	if fs.Root.Children[KernelPath].Closes != 1 {
		t.Error("kernel not released after rejection")
	}
}

func TestRelocatableRejected(t *testing.T) {
	bs, _ := mock.NewVolume(map[string][]byte{KernelPath: kernelImage(t, func(h *loader.Header) {
		h.Type = uint16(elf.ET_REL)
	})})
	res, out := runMock(t, bs)
	if res.Outcome != RejectedFormat {
		t.Fatalf("expected rejected; got %s", res.Outcome)
	}
	if fe, ok := errors.Cause(res.Err).(*loader.FormatError); !ok || fe.Field != "type" {
		t.Errorf("expected type failure; got %v", res.Err)
	}
	expectLines(t, out, "[ WARN ] ::-> bad type: got ET_REL, want ET_EXEC")
}

func TestRejectStatus(t *testing.T) {
	res := &Result{Outcome: RejectedFormat}
	if st := res.Status(false); st != models.Success {
		t.Errorf("advisory rejection: expected Success; got %s", st)
	}
	if st := res.Status(true); st != models.LoadError {
		t.Errorf("strict rejection: expected Load Error; got %s", st)
	}
}

func TestShortReadNeverValidated(t *testing.T) {
	bs, fs := mock.NewVolume(map[string][]byte{KernelPath: kernelImage(t, nil)})
	kernel := fs.Root.Children[KernelPath]
	kernel.ShortRead = 40
	res, out := runMock(t, bs)
	if res.Outcome != Failed || res.Header != nil {
		t.Fatalf("expected failure without header; got %s %+v", res.Outcome, res.Header)
	}
	if errors.Cause(res.Err) != loader.ErrShortRead {
		t.Errorf("expected short read; got %v", res.Err)
	}
	expectLines(t, out,
		"[ ERROR ] ::-> An UEFI Error occured while trying to read the kernel header",
		"[ FATAL ] ::-> Failed to read the kernel header from /esque.",
	)
	rejectLines(t, out, "format")
	if kernel.Closes != 1 {
		t.Error("kernel not released after short read")
	}
	if st := res.Status(false); st != models.LoadError {
		t.Errorf("expected Load Error; got %s", st)
	}
}

func TestUndersizedKernel(t *testing.T) {
	bs, fs := mock.NewVolume(map[string][]byte{KernelPath: []byte("\x7fELF\x02\x01\x01")})
	res, out := runMock(t, bs)
	if res.Outcome != Failed {
		t.Fatalf("expected failure; got %s", res.Outcome)
	}
	if fs.Root.Children[KernelPath].Reads != 0 {
		t.Error("undersized kernel should not be read")
	}
	rejectLines(t, out, "format")
}

func TestResolutionFailures(t *testing.T) {
	specs := []struct {
		setup func(bs *mock.BootServices)
		step  string
		exp   models.Status
	}{
		{func(bs *mock.BootServices) { bs.ImageErr = models.InvalidParameter }, "handle the loaded image protocol", models.InvalidParameter},
		{func(bs *mock.BootServices) { bs.DeviceErr = models.Unsupported }, "handle the simple file system protocol", models.Unsupported},
		{func(bs *mock.BootServices) { bs.LoadedImage = "not an image" }, "handle the loaded image protocol", models.Unsupported},
		{func(bs *mock.BootServices) { bs.FileSystem = nil }, "handle the simple file system protocol", models.Unsupported},
	}
	for specIndex, spec := range specs {
		bs, fs := mock.NewVolume(map[string][]byte{KernelPath: kernelImage(t, nil)})
		spec.setup(bs)
		res, out := runMock(t, bs)
		if res.Outcome != Failed {
			t.Errorf("[spec %d] expected failure; got %s", specIndex, res.Outcome)
		}
		if st := res.Status(false); st != spec.exp {
			t.Errorf("[spec %d] expected status %s; got %s", specIndex, spec.exp, st)
		}
		if !strings.Contains(out, "An UEFI Error occured while trying to "+spec.step) {
			t.Errorf("[spec %d] missing error for %q:\n%s", specIndex, spec.step, out)
		}
		if fs.Volumes != 0 {
			t.Errorf("[spec %d] volume opened after resolution failure", specIndex)
		}
	}
}

func TestVolumeFailure(t *testing.T) {
	bs, fs := mock.NewVolume(nil)
	fs.Err = models.NoMedia
	res, out := runMock(t, bs)
	if res.Outcome != NotFound {
		t.Fatalf("expected not found; got %s", res.Outcome)
	}
	expectLines(t, out, "[ ERROR ] ::-> No Media", "[ FATAL ] ::-> Failed to load the kernel file at /esque.")
}

func TestCloseFailureIsWarned(t *testing.T) {
	bs, fs := mock.NewVolume(map[string][]byte{KernelPath: kernelImage(t, nil)})
	fs.Root.Children[KernelPath].CloseErr = models.DeviceError
	res, out := runMock(t, bs)
	if res.Outcome != Accepted {
		t.Fatalf("expected accepted; got %s", res.Outcome)
	}
	expectLines(t, out, "[ WARN ] ::-> Failed to close the kernel file: Device Error")
}

func TestLocateWithDirectory(t *testing.T) {
	bs, fs := mock.NewVolume(map[string][]byte{KernelPath: kernelImage(t, nil)})
	var out bytes.Buffer
	l := NewLoader(mock.NewBootContext(bs, &out), report.NewConsole(&out, false), nil)
	f, err := l.Locate(fs, fs.Root, KernelPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if fs.Volumes != 0 || fs.Root.Closes != 0 {
		t.Error("a supplied directory must be used as-is and left open")
	}
}

func TestHostedFirmware(t *testing.T) {
	volume := afero.NewMemMapFs()
	if err := afero.WriteFile(volume, "/esque", kernelImage(t, nil), 0644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	fw := firmware.New(volume, &out)
	res := NewLoader(fw.BootContext(), report.NewConsole(&out, false), &models.Config{Verbose: true}).Run()
	if res.Outcome != Accepted {
		t.Fatalf("expected accepted; got %s\n%s", res.Outcome, out.String())
	}
	expectLines(t, out.String(), "[ NOTICE ] ::-> Kernel image /esque is 4.1 KiB.")
	if !strings.Contains(out.String(), "entry 0x200000") {
		t.Errorf("verbose output missing entry point:\n%s", out.String())
	}
}

func TestHostedFirmwareMissingKernel(t *testing.T) {
	var out bytes.Buffer
	fw := firmware.New(afero.NewMemMapFs(), &out)
	res := NewLoader(fw.BootContext(), report.NewConsole(&out, false), nil).Run()
	if res.Outcome != NotFound || res.Status(true) != models.NotFound {
		t.Fatalf("expected not found; got %s", res.Outcome)
	}
}
