package bytecode

import (
	"fmt"
	"strings"

	"github.com/tethal/rnatrix/internal/value"
)

// Disassemble renders chunk's entire code buffer as human-readable
// text. This is purely informational tooling (spec.md §6, "If a
// disassembler dump is emitted... it is informational and not an
// interface contract"), used by cmd/natrixtool's bc subcommand.
func Disassemble(chunk *Chunk, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	offset := 0
	for offset < len(chunk.Code) {
		var instr string
		instr, offset = disassembleInstruction(chunk, offset)
		sb.WriteString(instr)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func disassembleInstruction(chunk *Chunk, offset int) (string, int) {
	op := Op(chunk.Code[offset])
	line := chunk.LineAt(offset)
	next := offset + 1

	switch ImmediateKind(op) {
	case ImmUnsigned:
		n, width, err := Uvarint(chunk.Code[next:])
		if err != nil {
			return fmt.Sprintf("%04d line %4d %-14s <%s>", offset, line, op, err), offset + 1
		}
		next += width
		detail := fmt.Sprintf("%d", n)
		if op == OpPushConst && int(n) < len(chunk.Constants) {
			detail = fmt.Sprintf("%d (%s)", n, value.Display(chunk.Constants[n]))
		}
		return fmt.Sprintf("%04d line %4d %-14s %s", offset, line, op, detail), next

	case ImmSignedInt, ImmSignedJump:
		n, width, err := Varint(chunk.Code[next:])
		if err != nil {
			return fmt.Sprintf("%04d line %4d %-14s <%s>", offset, line, op, err), offset + 1
		}
		next += width
		detail := fmt.Sprintf("%d", n)
		if ImmediateKind(op) == ImmSignedJump {
			detail = fmt.Sprintf("%d -> %04d", n, next+int(n))
		}
		return fmt.Sprintf("%04d line %4d %-14s %s", offset, line, op, detail), next

	default:
		return fmt.Sprintf("%04d line %4d %s", offset, line, op), next
	}
}
