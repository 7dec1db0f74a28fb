package check

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/stiefelloader/stiefel/go/cmd"
	"github.com/stiefelloader/stiefel/go/models"
)

// Main validates the ELF header of each file argument as if it were the
// kernel. The exit status is that of the last failing file.
func Main(args []string) {
	c := cmd.NewLoaderCmd("<file> [file...]")
	var last error
	for _, path := range c.Parse(args) {
		if err := checkFile(c, path); err != nil {
			last = err
		}
	}
	c.Exit(last)
}

func checkFile(c *cmd.LoaderCmd, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.WithStack(err)
	}
	l, err := c.NewLoader(filepath.Dir(abs))
	if err != nil {
		return err
	}

	fs, err := l.ResolveFileSystem()
	if err != nil {
		return models.ExitFor(models.StatusOf(err))
	}
	name := filepath.Base(abs)
	f, err := l.Locate(fs, nil, name)
	if err != nil {
		return models.ExitFor(models.StatusOf(err))
	}
	defer f.Close()
	return models.ExitFor(l.Inspect(f, name).Status(true))
}

func init() { cmd.Register("check", "validate the ELF header of kernel images on the host", Main) }
