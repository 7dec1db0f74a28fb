// Package firmware runs the loader against a boot volume served from an
// afero.Fs instead of real firmware. It implements the same protocol
// interfaces the firmware would hand over at entry.
package firmware

import (
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/stiefelloader/stiefel/go/models"
)

const (
	imageHandle  models.Handle = 0x1
	deviceHandle models.Handle = 0x2
)

type Firmware struct {
	volume afero.Fs
	conOut io.Writer
	// per-handle protocol database
	protocols map[models.Handle]map[uuid.UUID]interface{}
}

func New(volume afero.Fs, conOut io.Writer) *Firmware {
	fw := &Firmware{volume: volume, conOut: conOut}
	fw.protocols = map[models.Handle]map[uuid.UUID]interface{}{
		imageHandle: {
			models.LoadedImageProtocolGUID: &loadedImage{device: deviceHandle},
		},
		deviceHandle: {
			models.SimpleFileSystemProtocolGUID: &simpleFileSystem{fs: volume},
		},
	}
	return fw
}

// OpenHostVolume serves dir, read-only, as the boot volume.
func OpenHostVolume(dir string) (afero.Fs, error) {
	osfs := afero.NewOsFs()
	ok, err := afero.IsDir(osfs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", dir)
	}
	if !ok {
		return nil, errors.Errorf("%s is not a directory", dir)
	}
	return afero.NewReadOnlyFs(afero.NewBasePathFs(osfs, dir)), nil
}

func (f *Firmware) BootContext() *models.BootContext {
	ctx, _ := models.NewBootContext(imageHandle, &models.SystemTable{
		FirmwareVendor: "stiefel hosted firmware",
		ConOut:         f.conOut,
		BootServices:   f,
	})
	return ctx
}

func (f *Firmware) HandleProtocol(handle models.Handle, protocol uuid.UUID) (interface{}, error) {
	db, ok := f.protocols[handle]
	if !ok {
		return nil, models.InvalidParameter
	}
	iface, ok := db[protocol]
	if !ok {
		return nil, models.Unsupported
	}
	return iface, nil
}

type loadedImage struct {
	device models.Handle
}

func (l *loadedImage) DeviceHandle() models.Handle { return l.device }

type simpleFileSystem struct {
	fs afero.Fs
}

func (s *simpleFileSystem) OpenVolume() (models.File, error) {
	root, err := openFile(s.fs, "/")
	if err != nil {
		return nil, err
	}
	return root, nil
}
