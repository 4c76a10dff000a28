package bus

import (
	"bytes"
	"testing"

	"nescore/internal/cartridge"
)

// buildNROM assembles a minimal one-bank iNES image whose reset vector
// points at $8000, where prgCode is placed.
func buildNROM(prgCode []byte) *cartridge.Cartridge {
	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(1) // 1x16KB PRG
	buf.WriteByte(1) // 1x8KB CHR
	buf.WriteByte(0) // mapper 0, horizontal mirroring
	buf.WriteByte(0)
	buf.Write(make([]byte, 8))

	prg := make([]byte, 16384)
	copy(prg, prgCode)
	prg[0x3FFC] = 0x00 // reset vector low -> $8000
	prg[0x3FFD] = 0x80
	buf.Write(prg)
	buf.Write(make([]byte, 8192)) // CHR

	cart, err := cartridge.LoadFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		panic(err)
	}
	return cart
}

func TestLoadCartridgeResetsCPUToResetVector(t *testing.T) {
	cart := buildNROM([]byte{0xEA, 0xEA, 0xEA}) // NOP NOP NOP
	b := New()
	b.LoadCartridge(cart)

	if b.CPU.PC != 0x8000 {
		t.Fatalf("PC after LoadCartridge: got %#04x, want 0x8000", b.CPU.PC)
	}
}

func TestStepAdvancesCyclesAndPC(t *testing.T) {
	cart := buildNROM([]byte{0xEA, 0xEA, 0xEA})
	b := New()
	b.LoadCartridge(cart)

	startCycles := b.GetCycleCount()
	b.Step()

	if b.GetCycleCount() <= startCycles {
		t.Fatal("expected cycle count to advance after Step")
	}
	if b.CPU.PC != 0x8001 {
		t.Fatalf("PC after one NOP: got %#04x, want 0x8001", b.CPU.PC)
	}
}

func TestOAMDMACopiesPageIntoPPU(t *testing.T) {
	cart := buildNROM([]byte{0xEA})
	b := New()
	b.LoadCartridge(cart)

	for i := 0; i < 256; i++ {
		b.Memory.Write(uint16(i), uint8(i))
	}

	b.TriggerOAMDMA(0x00)

	b.PPU.WriteRegister(0x2003, 0x05) // OAMADDR = 5
	if got := b.PPU.ReadRegister(0x2004); got != 0x05 {
		t.Fatalf("OAM byte 5 after DMA: got %#02x, want 0x05", got)
	}
}

func TestOAMDMASuspendsCPUFor513Or514Cycles(t *testing.T) {
	cart := buildNROM([]byte{0xEA})
	b := New()
	b.LoadCartridge(cart)

	b.TriggerOAMDMA(0x00)
	if !b.IsDMAInProgress() {
		t.Fatal("expected DMA to be in progress immediately after trigger")
	}

	stepsToDrain := 0
	for b.IsDMAInProgress() {
		b.Step()
		stepsToDrain++
		if stepsToDrain > 1000 {
			t.Fatal("DMA never completed")
		}
	}

	if stepsToDrain != 513 && stepsToDrain != 514 {
		t.Fatalf("expected DMA to take 513 or 514 CPU steps, took %d", stepsToDrain)
	}
}

func TestRunAdvancesFrameCount(t *testing.T) {
	cart := buildNROM([]byte{0x4C, 0x00, 0x80}) // JMP $8000 (infinite loop)
	b := New()
	b.LoadCartridge(cart)

	b.Run(1)

	if b.GetFrameCount() != 1 {
		t.Fatalf("expected frame count 1 after Run(1), got %d", b.GetFrameCount())
	}
}

func TestNROMCartridgeNeverAssertsMapperIRQ(t *testing.T) {
	cart := buildNROM([]byte{0xEA})
	b := New()
	b.LoadCartridge(cart)

	if b.cart.IRQPending() {
		t.Fatal("NROM cartridge should never assert IRQ")
	}
}
