package loader

import "debug/elf"

const NativeMachine = elf.EM_AARCH64
