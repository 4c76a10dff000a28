package input

import "testing"

func TestControllerShiftRegisterOrder(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{true, false, false, true, false, true, false, false})

	c.Write(1)
	c.Write(0)

	want := []uint8{1, 0, 0, 1, 0, 1, 0, 0}
	for i, w := range want {
		got := c.Read()
		if got != w {
			t.Fatalf("bit %d: got %d, want %d", i, got, w)
		}
	}
}

func TestControllerReadsAfterEighthReturnOne(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{true, true, true, true, true, true, true, true})
	c.Write(1)
	c.Write(0)

	for i := 0; i < 8; i++ {
		c.Read()
	}

	for i := 0; i < 3; i++ {
		if got := c.Read(); got != 1 {
			t.Fatalf("read %d past end of shift register: got %d, want 1", i, got)
		}
	}
}

func TestControllerStrobeHighAlwaysReturnsButtonA(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{true, false, false, false, false, false, false, false})
	c.Write(1)

	for i := 0; i < 3; i++ {
		if got := c.Read(); got != 1 {
			t.Fatalf("strobe-high read %d: got %d, want 1", i, got)
		}
	}

	c.SetButton(ButtonA, false)
	if got := c.Read(); got != 0 {
		t.Fatalf("strobe-high read reflects stale latch: got %d, want 0", got)
	}
}

func TestInputStateController2OpenBusBit(t *testing.T) {
	is := NewInputState()
	is.Controller2.SetButtons([8]bool{false, false, false, false, false, false, false, false})
	is.Write(0x4016, 1)
	is.Write(0x4016, 0)

	got := is.Read(0x4017)
	if got&0x40 == 0 {
		t.Fatalf("expected bit 6 set on $4017 reads, got %#02x", got)
	}
}

func TestControllerReset(t *testing.T) {
	c := New()
	c.SetButtons([8]bool{true, true, true, true, true, true, true, true})
	c.Write(1)
	c.Reset()

	if c.Read() != 0 {
		t.Fatalf("expected reset controller to read 0, got nonzero")
	}
}
