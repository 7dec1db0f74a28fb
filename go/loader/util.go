package loader

import (
	"bytes"
)

// MatchElf reports whether p starts with the ELF magic.
func MatchElf(p []byte) bool {
	return len(p) >= len(elfMagic) && bytes.Equal(p[:len(elfMagic)], elfMagic)
}
