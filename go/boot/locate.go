package boot

import (
	"github.com/pkg/errors"

	"github.com/stiefelloader/stiefel/go/models"
)

// KernelPath is where the boot chain expects the kernel: the root of the boot
// volume, no extension.
const KernelPath = "esque"

// Locate opens path read-only relative to dir, or to the volume root when dir
// is nil. A root opened here is closed before returning.
func (l *Loader) Locate(fs models.SimpleFileSystem, dir models.File, path string) (models.File, error) {
	if dir == nil {
		root, err := fs.OpenVolume()
		if err := l.con.Check(err, "open the root volume"); err != nil {
			return nil, errors.Wrap(err, "open volume")
		}
		defer l.release(root, "root volume")
		dir = root
	}

	file, err := dir.Open(path, models.ModeRead, models.AttrReadOnly)
	if err := l.con.Check(err, "open the kernel file"); err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return file, nil
}

func (l *Loader) release(f models.File, what string) {
	if err := f.Close(); err != nil {
		l.con.Warn("Failed to close the %s: %s", what, models.StatusOf(err))
	}
}
