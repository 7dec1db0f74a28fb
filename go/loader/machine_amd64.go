package loader

import "debug/elf"

// NativeMachine is the only machine this loader build accepts.
const NativeMachine = elf.EM_X86_64
