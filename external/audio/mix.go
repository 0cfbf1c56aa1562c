package audio

import "encoding/binary"

// maxQueuedMs bounds how far a single speaker can run ahead of the capture
// clock.
const maxQueuedMs = 1000

// sampleQueue holds decoded PCM for one speaker. Packets and capture ticks
// need not line up: a tick takes exactly as many samples as it needs and the
// rest waits for the next one.
type sampleQueue struct {
	samples []int16
	limit   int
}

func newSampleQueue(sampleRate int) *sampleQueue {
	return &sampleQueue{limit: sampleRate * maxQueuedMs / 1000}
}

func (q *sampleQueue) push(pcm []int16) {
	q.samples = append(q.samples, pcm...)
	if q.limit > 0 && len(q.samples) > q.limit {
		q.samples = q.samples[len(q.samples)-q.limit:]
	}
}

// take returns up to n samples from the front of the queue.
func (q *sampleQueue) take(n int) []int16 {
	n = min(n, len(q.samples))
	out := q.samples[:n]
	q.samples = q.samples[n:]
	if len(q.samples) == 0 {
		q.samples = nil
	}
	return out
}

func (q *sampleQueue) queued() int {
	return len(q.samples)
}

func hasQueuedSamples(queues map[string]*sampleQueue) bool {
	for _, q := range queues {
		if q.queued() > 0 {
			return true
		}
	}
	return false
}

// mixQueuedSamples drains len(mixed) samples from every speaker and sums them
// into mixed.
func mixQueuedSamples(queues map[string]*sampleQueue, mixed []int16) {
	for _, q := range queues {
		for i, s := range q.take(len(mixed)) {
			mixed[i] = clampPCM(int32(mixed[i]) + int32(s))
		}
	}
}

func clampPCM(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

func writePCM(buf []byte, samples []int16) int {
	n := min(len(buf)/2, len(samples))
	for i := range n {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(samples[i]))
	}
	return n * 2
}
