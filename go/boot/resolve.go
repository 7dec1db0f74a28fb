package boot

import (
	"github.com/pkg/errors"

	"github.com/stiefelloader/stiefel/go/models"
)

// ResolveFileSystem finds the file system protocol of the device the running
// image was loaded from.
func (l *Loader) ResolveFileSystem() (models.SimpleFileSystem, error) {
	bs := l.ctx.BootServices()

	iface, err := bs.HandleProtocol(l.ctx.Image(), models.LoadedImageProtocolGUID)
	image, ok := iface.(models.LoadedImage)
	if err == nil && !ok {
		err = models.Unsupported
	}
	if err := l.con.Check(err, "handle the loaded image protocol"); err != nil {
		return nil, errors.Wrap(err, "loaded image protocol")
	}

	iface, err = bs.HandleProtocol(image.DeviceHandle(), models.SimpleFileSystemProtocolGUID)
	fs, ok := iface.(models.SimpleFileSystem)
	if err == nil && !ok {
		err = models.Unsupported
	}
	if err := l.con.Check(err, "handle the simple file system protocol"); err != nil {
		return nil, errors.Wrap(err, "simple file system protocol")
	}
	return fs, nil
}
