package loader

import (
	"github.com/pkg/errors"

	"github.com/stiefelloader/stiefel/go/models"
)

var (
	ErrTruncated = errors.New("file is smaller than an ELF64 header")
	ErrShortRead = errors.New("short read of ELF64 header")
)

// ReadHeader reads and decodes the ELF header at the start of f. The file
// size is checked before reading and the read must return the whole header;
// no Header is built from partial data.
func ReadHeader(f models.File) (*Header, *models.FileInfo, error) {
	info, err := f.GetInfo()
	if err != nil {
		return nil, nil, errors.Wrap(err, "get kernel info")
	}
	if info.IsDir() {
		return nil, info, errors.Wrapf(models.AccessDenied, "%s is a directory", info.FileName)
	}
	if info.Size < HeaderSize {
		return nil, info, errors.Wrapf(ErrTruncated, "%d < %d bytes", info.Size, HeaderSize)
	}
	buf := make([]byte, HeaderSize)
	n, err := f.Read(buf)
	if err != nil {
		return nil, info, errors.Wrap(err, "read kernel header")
	}
	if n != HeaderSize {
		return nil, info, errors.Wrapf(ErrShortRead, "read %d of %d bytes", n, HeaderSize)
	}
	h, err := decodeHeader(buf)
	if err != nil {
		return nil, info, err
	}
	return h, info, nil
}
