package apu

import "testing"

func TestDMCFetchesSampleBytesThroughMemoryReader(t *testing.T) {
	apu := New()

	mem := map[uint16]uint8{0xC000: 0xAA, 0xC001: 0xBB}
	var reads []uint16
	apu.SetMemoryReader(func(address uint16) uint8 {
		reads = append(reads, address)
		return mem[address]
	})

	apu.writeDMCSampleAddress(0) // sampleAddress = 0xC000
	apu.writeDMCSampleLength(0)  // sampleLength = 1 byte
	apu.writeDMCControl(0x0F)    // fastest rate, no loop, no irq
	apu.writeChannelEnable(0x10) // enable DMC, starts fetch sequence

	// Drive enough timer steps to force the first sample byte load.
	for i := 0; i < 4; i++ {
		apu.stepDMCTimer(&apu.dmc)
	}

	if len(reads) == 0 {
		t.Fatal("expected DMC to fetch at least one sample byte via the memory reader")
	}
	if reads[0] != 0xC000 {
		t.Fatalf("expected first DMC fetch at $C000, got %#04x", reads[0])
	}
}

func TestDMCSampleAddressWrapsAtTopOfAddressSpace(t *testing.T) {
	apu := New()
	apu.SetMemoryReader(func(address uint16) uint8 { return 0 })

	apu.dmc.currentAddress = 0xFFFF
	apu.dmc.bytesRemaining = 2
	apu.dmc.sampleBufferEmpty = false
	apu.dmc.sampleBufferBits = 0
	apu.dmc.rateIndex = 0
	apu.dmc.timerCounter = 0

	apu.stepDMCTimer(&apu.dmc)

	if apu.dmc.currentAddress != 0x8000 {
		t.Fatalf("expected DMC address to wrap to $8000, got %#04x", apu.dmc.currentAddress)
	}
}

func TestIRQPendingAggregatesFrameAndDMC(t *testing.T) {
	apu := New()
	if apu.IRQPending() {
		t.Fatal("no IRQ should be pending initially")
	}

	apu.frameIRQFlag = true
	if !apu.IRQPending() {
		t.Fatal("expected IRQPending when frame IRQ flag is set")
	}

	apu.frameIRQFlag = false
	apu.dmc.irqFlag = true
	if !apu.IRQPending() {
		t.Fatal("expected IRQPending when DMC IRQ flag is set")
	}
}

func TestChannelEnableClearsLengthCountersWhenDisabled(t *testing.T) {
	apu := New()
	apu.pulse1.lengthCounter = 10
	apu.writeChannelEnable(0x00)

	if apu.pulse1.lengthCounter != 0 {
		t.Fatalf("expected pulse1 length counter cleared, got %d", apu.pulse1.lengthCounter)
	}
}
