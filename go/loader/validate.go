package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
)

// FormatError names the first header field that failed validation.
type FormatError struct {
	Field string
	Got   string
	Want  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("bad %s: got %s, want %s", e.Field, e.Got, e.Want)
}

// Validate accepts h only if it is a little-endian ELF64 executable for
// machine at the current format version.
func Validate(h *Header, machine elf.Machine) error {
	if len(h.Ident) < elf.EI_NIDENT || !bytes.Equal(h.Ident[:len(elfMagic)], elfMagic) {
		var got []byte
		if len(h.Ident) >= len(elfMagic) {
			got = h.Ident[:len(elfMagic)]
		}
		return &FormatError{"magic", fmt.Sprintf("% x", got), fmt.Sprintf("% x", elfMagic)}
	}
	if h.Class() != elf.ELFCLASS64 {
		return &FormatError{"class", h.Class().String(), elf.ELFCLASS64.String()}
	}
	if h.Data() != elf.ELFDATA2LSB {
		return &FormatError{"data encoding", h.Data().String(), elf.ELFDATA2LSB.String()}
	}
	if t := elf.Type(h.Type); t != elf.ET_EXEC {
		return &FormatError{"type", t.String(), elf.ET_EXEC.String()}
	}
	if m := elf.Machine(h.Machine); m != machine {
		return &FormatError{"machine", m.String(), machine.String()}
	}
	if v := elf.Version(h.Version); v != elf.EV_CURRENT {
		return &FormatError{"version", v.String(), elf.EV_CURRENT.String()}
	}
	return nil
}
