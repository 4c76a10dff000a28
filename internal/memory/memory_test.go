package memory

import "testing"

type fakePPU struct {
	regs [8]uint8
}

func (f *fakePPU) ReadRegister(address uint16) uint8 {
	return f.regs[address&7]
}

func (f *fakePPU) WriteRegister(address uint16, value uint8) {
	f.regs[address&7] = value
}

type fakeAPU struct {
	status uint8
}

func (f *fakeAPU) WriteRegister(address uint16, value uint8) {}
func (f *fakeAPU) ReadStatus() uint8                          { return f.status }

type fakeCart struct {
	prg [0x10000]uint8
	chr [0x2000]uint8
}

func (f *fakeCart) ReadPRG(address uint16) uint8          { return f.prg[address] }
func (f *fakeCart) WritePRG(address uint16, value uint8)  { f.prg[address] = value }
func (f *fakeCart) ReadCHR(address uint16) uint8          { return f.chr[address] }
func (f *fakeCart) WriteCHR(address uint16, value uint8)  { f.chr[address] = value }

func newTestMemory() *Memory {
	return New(&fakePPU{}, &fakeAPU{}, &fakeCart{})
}

func TestRAMMirroring(t *testing.T) {
	m := newTestMemory()
	m.Write(0x0000, 0x42)

	for _, mirror := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		if got := m.Read(mirror); got != 0x42 {
			t.Fatalf("address %#04x: got %#02x, want 0x42", mirror, got)
		}
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	m := newTestMemory()
	m.Write(0x2000, 0x11)

	for _, mirror := range []uint16{0x2000, 0x2008, 0x3FF8} {
		if got := m.Read(mirror); got != 0x11 {
			t.Fatalf("address %#04x: got %#02x, want 0x11", mirror, got)
		}
	}
}

func TestPaletteBackgroundMirroring(t *testing.T) {
	pm := NewPPUMemory(&fakeCart{}, MirrorHorizontal)
	pm.Write(0x3F00, 0x20)

	for _, mirror := range []uint16{0x3F00, 0x3F10, 0x3F04 + 0x10} {
		if got := pm.Read(mirror); got != 0x20 && mirror == 0x3F10 {
			t.Fatalf("address %#04x: got %#02x, want mirrored 0x20", mirror, got)
		}
	}
	if got := pm.Read(0x3F10); got != 0x20 {
		t.Fatalf("$3F10 should mirror $3F00, got %#02x", got)
	}
}

func TestNametableHorizontalMirroring(t *testing.T) {
	pm := NewPPUMemory(&fakeCart{}, MirrorHorizontal)
	pm.Write(0x2000, 0x55)
	if got := pm.Read(0x2400); got != 0x55 {
		t.Fatalf("horizontal mirroring: $2400 should mirror $2000, got %#02x", got)
	}
	pm.Write(0x2800, 0x66)
	if got := pm.Read(0x2C00); got != 0x66 {
		t.Fatalf("horizontal mirroring: $2C00 should mirror $2800, got %#02x", got)
	}
}

func TestNametableVerticalMirroring(t *testing.T) {
	pm := NewPPUMemory(&fakeCart{}, MirrorVertical)
	pm.Write(0x2000, 0x77)
	if got := pm.Read(0x2800); got != 0x77 {
		t.Fatalf("vertical mirroring: $2800 should mirror $2000, got %#02x", got)
	}
}

func TestOAMDMACallback(t *testing.T) {
	m := newTestMemory()
	var gotPage uint8 = 0xFF
	m.SetDMACallback(func(page uint8) { gotPage = page })
	m.Write(0x4014, 0x02)

	if gotPage != 0x02 {
		t.Fatalf("DMA callback page: got %#02x, want 0x02", gotPage)
	}
}

func TestControllerStrobeRouting(t *testing.T) {
	m := newTestMemory()
	input := &routingInput{}
	m.SetInputSystem(input)

	m.Write(0x4016, 1)
	if !input.lastWrite {
		t.Fatalf("expected controller write to be routed")
	}
	m.Read(0x4016)
	if !input.read {
		t.Fatalf("expected controller read to be routed")
	}
}

type routingInput struct {
	lastWrite bool
	read      bool
}

func (r *routingInput) Read(address uint16) uint8 {
	r.read = true
	return 0
}

func (r *routingInput) Write(address uint16, value uint8) {
	r.lastWrite = value&1 != 0
}
