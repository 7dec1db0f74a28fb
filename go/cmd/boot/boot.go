package boot

import (
	"github.com/stiefelloader/stiefel/go/cmd"
	"github.com/stiefelloader/stiefel/go/models"
)

func Main(args []string) {
	c := cmd.NewLoaderCmd("<esp-dir>")
	dir := c.Parse(args)[0]
	l, err := c.NewLoader(dir)
	if err != nil {
		c.Exit(err)
	}
	res := l.Run()
	c.Exit(models.ExitFor(res.Status(c.Config.StrictFormat)))
}

func init() { cmd.Register("boot", "run the loader against a directory acting as the boot volume", Main) }
