//go:build !amd64 && !arm64 && !riscv64

package loader

import "debug/elf"

const NativeMachine = elf.EM_X86_64
