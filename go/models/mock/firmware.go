package mock

import (
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/stiefelloader/stiefel/go/models"
)

const (
	ImageHandle  models.Handle = 0x1000
	DeviceHandle models.Handle = 0x2000
)

// BootServices serves a fixed image/device pair. Setting ImageErr or
// DeviceErr makes the matching HandleProtocol call fail.
type BootServices struct {
	LoadedImage interface{}
	FileSystem  interface{}
	ImageErr    error
	DeviceErr   error

	Calls []uuid.UUID
}

func (b *BootServices) HandleProtocol(handle models.Handle, protocol uuid.UUID) (interface{}, error) {
	b.Calls = append(b.Calls, protocol)
	switch {
	case handle == ImageHandle && protocol == models.LoadedImageProtocolGUID:
		if b.ImageErr != nil {
			return nil, b.ImageErr
		}
		return b.LoadedImage, nil
	case handle == DeviceHandle && protocol == models.SimpleFileSystemProtocolGUID:
		if b.DeviceErr != nil {
			return nil, b.DeviceErr
		}
		return b.FileSystem, nil
	}
	return nil, models.Unsupported
}

type LoadedImage struct{ Device models.Handle }

func (l *LoadedImage) DeviceHandle() models.Handle { return l.Device }

type FileSystem struct {
	Root    *File
	Err     error
	Volumes int
}

func (f *FileSystem) OpenVolume() (models.File, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	f.Volumes++
	f.Root.pos = 0
	return f.Root, nil
}

// File is both a node in the fake volume and the handle returned for it.
type File struct {
	Name     string
	Data     []byte
	Dir      bool
	Children map[string]*File

	OpenErr  error
	InfoErr  error
	ReadErr  error
	CloseErr error
	// ShortRead caps every Read at this many bytes when non-zero.
	ShortRead int
	// Size overrides the size reported by GetInfo when non-zero.
	Size uint64

	Opens, Reads, Closes int
	pos                  int
}

func (f *File) Open(name string, mode models.OpenMode, attr models.Attribute) (models.File, error) {
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	if !f.Dir {
		return nil, models.InvalidParameter
	}
	if mode&(models.ModeWrite|models.ModeCreate) != 0 {
		return nil, models.WriteProtected
	}
	child, ok := f.Children[strings.TrimLeft(name, `\`)]
	if !ok {
		return nil, models.NotFound
	}
	child.Opens++
	child.pos = 0
	return child, nil
}

func (f *File) GetInfo() (*models.FileInfo, error) {
	if f.InfoErr != nil {
		return nil, f.InfoErr
	}
	info := &models.FileInfo{
		Size:      uint64(len(f.Data)),
		FileName:  f.Name,
		Attribute: models.AttrReadOnly,
	}
	if f.Size != 0 {
		info.Size = f.Size
	}
	if f.Dir {
		info.Attribute |= models.AttrDirectory
	}
	info.PhysicalSize = info.Size
	return info, nil
}

func (f *File) Read(p []byte) (int, error) {
	f.Reads++
	if f.ReadErr != nil {
		return 0, f.ReadErr
	}
	if f.Dir {
		return 0, models.Unsupported
	}
	if f.ShortRead != 0 && len(p) > f.ShortRead {
		p = p[:f.ShortRead]
	}
	n := copy(p, f.Data[f.pos:])
	f.pos += n
	return n, nil
}

func (f *File) Close() error {
	f.Closes++
	return f.CloseErr
}

// NewVolume builds firmware whose boot volume root holds the given files.
func NewVolume(files map[string][]byte) (*BootServices, *FileSystem) {
	root := &File{Name: `\`, Dir: true, Children: make(map[string]*File)}
	for name, data := range files {
		root.Children[name] = &File{Name: name, Data: data}
	}
	fs := &FileSystem{Root: root}
	bs := &BootServices{
		LoadedImage: &LoadedImage{Device: DeviceHandle},
		FileSystem:  fs,
	}
	return bs, fs
}

func NewBootContext(bs models.BootServices, conOut io.Writer) *models.BootContext {
	ctx, err := models.NewBootContext(ImageHandle, &models.SystemTable{
		FirmwareVendor: "mock",
		ConOut:         conOut,
		BootServices:   bs,
	})
	if err != nil {
		panic(err)
	}
	return ctx
}
