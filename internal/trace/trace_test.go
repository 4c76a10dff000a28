package trace

import (
	"bytes"
	"strings"
	"testing"

	"nescore/internal/bus"
	"nescore/internal/cartridge"
)

func buildNROM(prgCode []byte) *cartridge.Cartridge {
	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(1)
	buf.WriteByte(1)
	buf.WriteByte(0)
	buf.WriteByte(0)
	buf.Write(make([]byte, 8))

	prg := make([]byte, 16384)
	copy(prg, prgCode)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	buf.Write(prg)
	buf.Write(make([]byte, 8192))

	cart, err := cartridge.LoadFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		panic(err)
	}
	return cart
}

func TestLineFormatsKnownOpcode(t *testing.T) {
	cart := buildNROM([]byte{0x4C, 0x34, 0x12}) // JMP $1234
	b := bus.New()
	b.LoadCartridge(cart)

	line := Line(b)

	if !strings.HasPrefix(line, "8000  4C 34 12  JMP $1234") {
		t.Fatalf("unexpected trace line: %q", line)
	}
	if !strings.Contains(line, "A:00 X:00 Y:00") {
		t.Fatalf("expected register fields in trace line: %q", line)
	}
	if !strings.Contains(line, "CYC:") {
		t.Fatalf("expected cycle count field in trace line: %q", line)
	}
}

func TestLineFallsBackForUnknownOpcode(t *testing.T) {
	cart := buildNROM([]byte{0x02}) // not assigned in the dispatch table
	b := bus.New()
	b.LoadCartridge(cart)

	line := Line(b)
	if !strings.Contains(line, ".byte $02") {
		t.Fatalf("expected .byte fallback for unknown opcode, got %q", line)
	}
}
