package cpu

const (
	MEMORY_SIZE = 4096   // Words of machine memory.
	DATA_LOC    = 500    // Load address of the assembled data segment.
	STACK_SIZE  = 1024   // Physical depth of the operand stack.
	STACK_EMPTY = 0xffff // Stack pointer value of an empty stack.
	NO_LINE     = -1     // Line number of a location outside the source.
	WORD_MASK   = 0xffff // Mask of a machine word.
)
