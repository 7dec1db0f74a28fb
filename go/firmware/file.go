package firmware

import (
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/stiefelloader/stiefel/go/models"
)

type file struct {
	fs   afero.Fs
	path string
	f    afero.File
	dir  bool
}

func openFile(fs afero.Fs, name string) (*file, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, hostStatus(err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, hostStatus(err)
	}
	return &file{fs: fs, path: name, f: f, dir: st.IsDir()}, nil
}

// volumePath resolves a firmware path ("\dir\name" or "name") against the
// directory at base.
func volumePath(base, name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(name, "/") {
		return path.Clean(name)
	}
	return path.Join(base, name)
}

func (f *file) Open(name string, mode models.OpenMode, attr models.Attribute) (models.File, error) {
	if mode&(models.ModeWrite|models.ModeCreate) != 0 {
		return nil, models.WriteProtected
	}
	if mode&models.ModeRead == 0 {
		return nil, models.InvalidParameter
	}
	if !f.dir {
		return nil, models.InvalidParameter
	}
	child, err := openFile(f.fs, volumePath(f.path, name))
	if err != nil {
		return nil, err
	}
	return child, nil
}

func (f *file) GetInfo() (*models.FileInfo, error) {
	st, err := f.f.Stat()
	if err != nil {
		return nil, hostStatus(err)
	}
	info := &models.FileInfo{
		Size:         uint64(st.Size()),
		PhysicalSize: uint64(st.Size()),
		ModTime:      st.ModTime(),
		FileName:     st.Name(),
		Attribute:    models.AttrReadOnly,
	}
	if f.path == "/" {
		info.FileName = `\`
	}
	if st.IsDir() {
		info.Attribute |= models.AttrDirectory
		info.Size, info.PhysicalSize = 0, 0
	}
	return info, nil
}

func (f *file) Read(p []byte) (int, error) {
	if f.dir {
		return 0, models.Unsupported
	}
	n, err := f.f.Read(p)
	if err == io.EOF {
		return n, nil
	}
	if err != nil {
		return n, models.DeviceError
	}
	return n, nil
}

func (f *file) Close() error {
	if err := f.f.Close(); err != nil {
		return models.DeviceError
	}
	return nil
}

func hostStatus(err error) models.Status {
	switch {
	case os.IsNotExist(err):
		return models.NotFound
	case os.IsPermission(err):
		return models.AccessDenied
	}
	return models.DeviceError
}
