package emu

import "testing"

func TestAudioQueueReadReturnsSilenceWhenEmpty(t *testing.T) {
	q := newAudioQueue(16)
	buf := make([]byte, 8)
	n, err := q.Read(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("Read on empty queue: n=%d err=%v", n, err)
	}
	for _, b := range buf {
		if b != 0 {
			t.Fatal("expected silence from an empty audio queue")
		}
	}
}

func TestAudioQueueDrainsWrittenBytes(t *testing.T) {
	q := newAudioQueue(16)
	q.write([]byte{1, 2, 3, 4})

	buf := make([]byte, 4)
	q.Read(buf)

	for i, want := range []byte{1, 2, 3, 4} {
		if buf[i] != want {
			t.Fatalf("byte %d: got %d, want %d", i, buf[i], want)
		}
	}
}

func TestAudioQueueDropsOldestBytesPastCapacity(t *testing.T) {
	q := newAudioQueue(4)
	q.write([]byte{1, 2, 3, 4})
	q.write([]byte{5, 6})

	buf := make([]byte, 4)
	q.Read(buf)

	want := []byte{3, 4, 5, 6}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d: got %d, want %d", i, buf[i], want[i])
		}
	}
}
