package models

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Handle is an opaque firmware handle.
type Handle uintptr

var (
	LoadedImageProtocolGUID      = uuid.MustParse("5b1b31a1-9562-11d2-8e3f-00a0c969723b")
	SimpleFileSystemProtocolGUID = uuid.MustParse("964e5b22-6459-11d2-8e39-00a0c969723b")
	FileInfoGUID                 = uuid.MustParse("09576e92-6d3f-11d2-8e39-00a0c969723b")
)

type OpenMode uint64

const (
	ModeRead   OpenMode = 0x0000000000000001
	ModeWrite  OpenMode = 0x0000000000000002
	ModeCreate OpenMode = 0x8000000000000000
)

type Attribute uint64

const (
	AttrReadOnly  Attribute = 0x01
	AttrHidden    Attribute = 0x02
	AttrSystem    Attribute = 0x04
	AttrDirectory Attribute = 0x10
	AttrArchive   Attribute = 0x20
)

type FileInfo struct {
	Size         uint64
	PhysicalSize uint64
	Attribute    Attribute
	ModTime      time.Time
	FileName     string
}

func (f *FileInfo) IsDir() bool {
	return f.Attribute&AttrDirectory != 0
}

type BootServices interface {
	// HandleProtocol returns the protocol interface registered on handle for
	// the given protocol GUID.
	HandleProtocol(handle Handle, protocol uuid.UUID) (interface{}, error)
}

type LoadedImage interface {
	DeviceHandle() Handle
}

type SimpleFileSystem interface {
	OpenVolume() (File, error)
}

// File mirrors the firmware file protocol. Read reports the number of bytes
// actually transferred, which may be less than len(p); a zero count with a
// nil error means end of file.
type File interface {
	Open(name string, mode OpenMode, attr Attribute) (File, error)
	GetInfo() (*FileInfo, error)
	Read(p []byte) (int, error)
	Close() error
}

type SystemTable struct {
	FirmwareVendor string
	ConOut         io.Writer
	BootServices   BootServices
}
