package audio

import (
	"encoding/binary"
	"testing"
)

func TestMixQueuedSamples_SumsAndClamps(t *testing.T) {
	queues := map[string]*sampleQueue{
		"alice": {samples: []int16{1000, 30000, -30000}},
		"bob":   {samples: []int16{500, 10000, -10000, 7}},
	}
	mixed := make([]int16, 3)
	mixQueuedSamples(queues, mixed)

	want := []int16{1500, 32767, -32768}
	for i := range want {
		if mixed[i] != want[i] {
			t.Fatalf("mixed[%d] = %d, want %d", i, mixed[i], want[i])
		}
	}
	if queues["alice"].queued() != 0 {
		t.Fatalf("expected alice to be drained, %d samples left", queues["alice"].queued())
	}
	if got := queues["bob"].take(10); len(got) != 1 || got[0] != 7 {
		t.Fatalf("expected bob's extra sample to wait for the next tick, got %v", got)
	}
}

func pcmPacket(n int, v int16) []int16 {
	pcm := make([]int16, n)
	for i := range pcm {
		pcm[i] = v
	}
	return pcm
}

func TestMixQueuedSamples_LongerTickSpansPackets(t *testing.T) {
	// Three 20ms packets at 16kHz fill one 60ms tick.
	q := newSampleQueue(16000)
	for range 3 {
		q.push(pcmPacket(320, 100))
	}
	queues := map[string]*sampleQueue{"alice": q}

	mixed := make([]int16, 960)
	mixQueuedSamples(queues, mixed)

	for i, s := range mixed {
		if s != 100 {
			t.Fatalf("mixed[%d] = %d, want 100", i, s)
		}
	}
	if hasQueuedSamples(queues) {
		t.Fatalf("expected queue to be drained, %d samples left", q.queued())
	}
}

func TestMixQueuedSamples_ShorterTickKeepsRemainder(t *testing.T) {
	// One 20ms packet feeds two 10ms ticks.
	q := newSampleQueue(16000)
	q.push(pcmPacket(320, 50))
	queues := map[string]*sampleQueue{"alice": q}

	for tick := range 2 {
		mixed := make([]int16, 160)
		mixQueuedSamples(queues, mixed)
		for i, s := range mixed {
			if s != 50 {
				t.Fatalf("tick %d: mixed[%d] = %d, want 50", tick, i, s)
			}
		}
	}
	if hasQueuedSamples(queues) {
		t.Fatal("expected the packet to be fully consumed after two ticks")
	}
}

func TestSampleQueue_DropsOldestWhenFull(t *testing.T) {
	q := newSampleQueue(1000)
	limit := 1000 * maxQueuedMs / 1000
	for i := range limit + 5 {
		q.push([]int16{int16(i)})
	}
	if q.queued() != limit {
		t.Fatalf("queue length = %d, want %d", q.queued(), limit)
	}
	if first := q.take(1); first[0] != 5 {
		t.Fatalf("expected oldest samples to be dropped, got first=%d", first[0])
	}
}

func TestWritePCM_LittleEndianAndBounded(t *testing.T) {
	buf := make([]byte, 4)
	n := writePCM(buf, []int16{-2, 258, 99})
	if n != 4 {
		t.Fatalf("wrote %d bytes, want 4", n)
	}
	if got := int16(binary.LittleEndian.Uint16(buf[0:])); got != -2 {
		t.Fatalf("sample 0 = %d", got)
	}
	if got := int16(binary.LittleEndian.Uint16(buf[2:])); got != 258 {
		t.Fatalf("sample 1 = %d", got)
	}
}
