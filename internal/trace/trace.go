// Package trace formats CPU execution traces in the nestest.log layout used
// to diff a run against known-good reference logs.
package trace

import (
	"fmt"
	"strings"

	"nescore/internal/bus"
	"nescore/internal/cpu"
)

// Line renders one instruction boundary of b's current state in the
// classic nestest format:
//
//	C000  4C F5 C5  JMP $C5F5                       A:00 X:00 Y:00 P:24 SP:FD PPU:  0, 21 CYC:7
func Line(b *bus.Bus) string {
	pc := b.CPU.PC
	opcode := b.CPU.PeekMemory(pc)
	instr := b.CPU.CurrentInstruction(opcode)

	bytesStr, asm := disassemble(b, pc, opcode, instr)

	state := b.GetCPUState()
	ppu := b.GetPPUState()

	flags := uint8(unusedMask)
	if state.Flags.N {
		flags |= 0x80
	}
	if state.Flags.V {
		flags |= 0x40
	}
	if state.Flags.D {
		flags |= 0x08
	}
	if state.Flags.I {
		flags |= 0x04
	}
	if state.Flags.Z {
		flags |= 0x02
	}
	if state.Flags.C {
		flags |= 0x01
	}

	return fmt.Sprintf("%04X  %-9s %-31s A:%02X X:%02X Y:%02X P:%02X SP:%02X PPU:%3d,%3d CYC:%d",
		pc, bytesStr, asm,
		state.A, state.X, state.Y, flags, state.SP,
		ppu.Scanline, ppu.Cycle, state.Cycles)
}

const (
	unusedMask = 0x20
	brkMask    = 0x10
)

// disassemble renders the raw instruction bytes and a one-line mnemonic for
// the instruction at pc. Unknown opcodes (illegal opcodes this table
// doesn't cover) fall back to a ".byte" rendering.
func disassemble(b *bus.Bus, pc uint16, opcode uint8, instr *cpu.Instruction) (string, string) {
	if instr == nil {
		return fmt.Sprintf("%02X", opcode), fmt.Sprintf(".byte $%02X", opcode)
	}

	raw := make([]string, instr.Bytes)
	raw[0] = fmt.Sprintf("%02X", opcode)
	for i := uint8(1); i < instr.Bytes; i++ {
		raw[i] = fmt.Sprintf("%02X", b.CPU.PeekMemory(pc+uint16(i)))
	}

	operand := formatOperand(b, pc, instr)
	asm := instr.Name
	if operand != "" {
		asm += " " + operand
	}

	return strings.Join(raw, " "), asm
}

// formatOperand renders the operand text for an instruction's addressing
// mode without re-executing it (PeekMemory never mutates CPU state).
func formatOperand(b *bus.Bus, pc uint16, instr *cpu.Instruction) string {
	switch instr.Mode {
	case cpu.Implied:
		return ""
	case cpu.Accumulator:
		return "A"
	case cpu.Immediate:
		return fmt.Sprintf("#$%02X", b.CPU.PeekMemory(pc+1))
	case cpu.ZeroPage:
		return fmt.Sprintf("$%02X", b.CPU.PeekMemory(pc+1))
	case cpu.ZeroPageX:
		return fmt.Sprintf("$%02X,X", b.CPU.PeekMemory(pc+1))
	case cpu.ZeroPageY:
		return fmt.Sprintf("$%02X,Y", b.CPU.PeekMemory(pc+1))
	case cpu.Relative:
		offset := int8(b.CPU.PeekMemory(pc + 1))
		target := uint16(int32(pc) + 2 + int32(offset))
		return fmt.Sprintf("$%04X", target)
	case cpu.Absolute:
		return fmt.Sprintf("$%04X", readWord(b, pc+1))
	case cpu.AbsoluteX:
		return fmt.Sprintf("$%04X,X", readWord(b, pc+1))
	case cpu.AbsoluteY:
		return fmt.Sprintf("$%04X,Y", readWord(b, pc+1))
	case cpu.Indirect:
		return fmt.Sprintf("($%04X)", readWord(b, pc+1))
	case cpu.IndexedIndirect:
		return fmt.Sprintf("($%02X,X)", b.CPU.PeekMemory(pc+1))
	case cpu.IndirectIndexed:
		return fmt.Sprintf("($%02X),Y", b.CPU.PeekMemory(pc+1))
	default:
		return ""
	}
}

func readWord(b *bus.Bus, address uint16) uint16 {
	lo := uint16(b.CPU.PeekMemory(address))
	hi := uint16(b.CPU.PeekMemory(address + 1))
	return lo | (hi << 8)
}
