package loader

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/stiefelloader/stiefel/go/models"
)

// HeaderSize is the on-disk size of an ELF64 file header.
const HeaderSize = 64

var elfMagic = []byte{0x7f, 0x45, 0x4c, 0x46}

var machineMap = map[elf.Machine]string{
	elf.EM_386:     "x86",
	elf.EM_X86_64:  "x86_64",
	elf.EM_ARM:     "arm",
	elf.EM_AARCH64: "arm64",
	elf.EM_MIPS:    "mips",
	elf.EM_PPC64:   "ppc64",
	elf.EM_RISCV:   "riscv",
}

// Header is the ELF64 file header (Elf64_Ehdr).
type Header struct {
	Ident     []byte `struc:"[16]byte"`
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16
}

// NewExecHeader returns a well-formed little-endian ELF64 executable header
// for machine.
func NewExecHeader(machine elf.Machine) *Header {
	ident := make([]byte, elf.EI_NIDENT)
	copy(ident, elfMagic)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	ident[elf.EI_OSABI] = byte(elf.ELFOSABI_NONE)
	return &Header{
		Ident:     ident,
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(machine),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     0x200000,
		Phoff:     HeaderSize,
		Ehsize:    HeaderSize,
		Phentsize: 56,
		Phnum:     1,
		Shentsize: 64,
	}
}

func (h *Header) Class() elf.Class { return elf.Class(h.Ident[elf.EI_CLASS]) }
func (h *Header) Data() elf.Data   { return elf.Data(h.Ident[elf.EI_DATA]) }

func (h *Header) ByteOrder() binary.ByteOrder {
	return orderOf(h.Ident)
}

// Arch returns a short architecture name, or the raw machine constant.
func (h *Header) Arch() string {
	if name, ok := machineMap[elf.Machine(h.Machine)]; ok {
		return name
	}
	return elf.Machine(h.Machine).String()
}

func (h *Header) Bytes() ([]byte, error) {
	if len(h.Ident) != elf.EI_NIDENT {
		return nil, errors.Errorf("ident must be %d bytes, got %d", elf.EI_NIDENT, len(h.Ident))
	}
	var buf bytes.Buffer
	stream := &models.StrucStream{Stream: &buf, Order: h.ByteOrder()}
	if err := stream.Pack(h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *Header) Pack(w io.Writer) error {
	p, err := h.Bytes()
	if err != nil {
		return err
	}
	_, err = w.Write(p)
	return errors.WithStack(err)
}

// orderOf picks the field byte order from e_ident, defaulting to little endian.
func orderOf(ident []byte) binary.ByteOrder {
	if len(ident) > elf.EI_DATA && elf.Data(ident[elf.EI_DATA]) == elf.ELFDATA2MSB {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func decodeHeader(p []byte) (*Header, error) {
	if len(p) < HeaderSize {
		return nil, errors.WithStack(ErrShortRead)
	}
	h := &Header{}
	stream := &models.StrucStream{Stream: bytes.NewBuffer(p[:HeaderSize]), Order: orderOf(p)}
	if err := stream.Unpack(h); err != nil {
		return nil, errors.Wrap(err, "failed to unpack header")
	}
	return h, nil
}
