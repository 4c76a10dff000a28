package ppu

import (
	"testing"

	"nescore/internal/memory"
)

type fakeCart struct {
	chr [0x2000]uint8
}

func (f *fakeCart) ReadPRG(address uint16) uint8         { return 0 }
func (f *fakeCart) WritePRG(address uint16, value uint8) {}
func (f *fakeCart) ReadCHR(address uint16) uint8          { return f.chr[address] }
func (f *fakeCart) WriteCHR(address uint16, value uint8)  { f.chr[address] = value }

func newTestPPU() *PPU {
	p := New()
	p.SetMemory(memory.NewPPUMemory(&fakeCart{}, memory.MirrorHorizontal))
	p.Reset()
	return p
}

func stepN(p *PPU, n int) {
	for i := 0; i < n; i++ {
		p.Step()
	}
}

func TestVBlankFlagSetsAtScanline241Cycle1(t *testing.T) {
	p := newTestPPU()

	// Reset leaves the PPU at scanline -1, cycle 0. Advance to scanline 241
	// cycle 1: (241 - (-1)) * 341 + 1 steps.
	stepN(p, (241-(-1))*341+1)

	if p.scanline != 241 || p.cycle != 1 {
		t.Fatalf("expected scanline 241 cycle 1, got scanline=%d cycle=%d", p.scanline, p.cycle)
	}
	if p.ReadRegister(0x2002)&0x80 == 0 {
		t.Fatal("expected VBlank flag set at scanline 241, cycle 1")
	}
}

func TestNMIFiresOnceOnVBlankWhenEnabled(t *testing.T) {
	p := newTestPPU()
	fired := 0
	p.SetNMICallback(func() { fired++ })
	p.WriteRegister(0x2000, 0x80) // enable NMI on VBlank

	stepN(p, (241-(-1))*341+1)

	if fired != 1 {
		t.Fatalf("expected NMI callback fired exactly once, got %d", fired)
	}
}

func TestSprite0HitClearsOnlyAtPreRenderCycle1(t *testing.T) {
	p := newTestPPU()
	// Step past pre-render cycle 1 (Reset leaves the PPU at scanline -1,
	// cycle 0) so the flag is set after this frame's clear point.
	p.Step()
	p.sprite0Hit = true
	p.ppuStatus |= 0x40

	// Reading STATUS should not clear sprite-0-hit.
	p.ReadRegister(0x2002)
	if !p.sprite0Hit {
		t.Fatal("sprite0Hit must not clear on a STATUS register read")
	}

	// Advance to VBlank start; it should remain set.
	stepN(p, (241-(-1))*341)
	if !p.sprite0Hit {
		t.Fatal("sprite0Hit must not clear at VBlank start")
	}

	// Advance to the next pre-render scanline, cycle 1.
	for !(p.scanline == -1 && p.cycle == 1) {
		p.Step()
	}
	if p.sprite0Hit {
		t.Fatal("sprite0Hit should clear at pre-render scanline, cycle 1")
	}
}

func TestA12CallbackFiresOnEachTransition(t *testing.T) {
	p := newTestPPU()
	var edges []bool
	p.SetA12Callback(func(rising bool) { edges = append(edges, rising) })

	p.checkA12(0x0000) // low, no prior state change (lastA12 starts false)
	p.checkA12(0x1000) // high: rising edge
	p.checkA12(0x1001) // still high: no callback
	p.checkA12(0x0500) // low: falling edge

	want := []bool{true, false}
	if len(edges) != len(want) {
		t.Fatalf("got %d edges %v, want %v", len(edges), edges, want)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Fatalf("edge %d: got %v, want %v", i, edges[i], want[i])
		}
	}
}

func TestOAMWriteAndRegisterReadback(t *testing.T) {
	p := newTestPPU()
	p.WriteOAM(0x10, 0x77)
	p.WriteRegister(0x2003, 0x10) // OAMADDR
	if got := p.ReadRegister(0x2004); got != 0x77 {
		t.Fatalf("OAMDATA readback: got %#02x, want 0x77", got)
	}
}

func TestFrameCompleteCallbackFiresEveryFrame(t *testing.T) {
	p := newTestPPU()
	frames := 0
	p.SetFrameCompleteCallback(func() { frames++ })

	stepN(p, 341*262) // one full frame of PPU cycles

	if frames != 1 {
		t.Fatalf("expected frame-complete callback exactly once per frame, got %d", frames)
	}
}
