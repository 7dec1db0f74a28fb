package main

import (
	"github.com/stiefelloader/stiefel/go/cmd"

	_ "github.com/stiefelloader/stiefel/go/cmd/boot"
	_ "github.com/stiefelloader/stiefel/go/cmd/check"
)

func main() { cmd.Main() }
