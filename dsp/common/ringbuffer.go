package common

// RingBuffer is a bounded append-only buffer of float64 values.
// When full, appending evicts the oldest value. Used for pitch history,
// resonance history, and the short rolling energy window in the noise gate.
type RingBuffer struct {
	buffer   []float64
	capacity int
	start    int
	count    int
}

// NewRingBuffer creates a ring buffer with the given capacity (minimum 1)
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		buffer:   make([]float64, capacity),
		capacity: capacity,
	}
}

// Push appends a value, evicting the oldest when full
func (rb *RingBuffer) Push(value float64) {
	if rb.count < rb.capacity {
		rb.buffer[(rb.start+rb.count)%rb.capacity] = value
		rb.count++
		return
	}
	rb.buffer[rb.start] = value
	rb.start = (rb.start + 1) % rb.capacity
}

// Len returns the number of stored values
func (rb *RingBuffer) Len() int {
	return rb.count
}

// Values returns the stored values oldest-first as a new slice
func (rb *RingBuffer) Values() []float64 {
	out := make([]float64, rb.count)
	for i := 0; i < rb.count; i++ {
		out[i] = rb.buffer[(rb.start+i)%rb.capacity]
	}
	return out
}

// Last returns the most recently pushed value, or 0 when empty
func (rb *RingBuffer) Last() float64 {
	if rb.count == 0 {
		return 0
	}
	return rb.buffer[(rb.start+rb.count-1)%rb.capacity]
}

// Mean returns the arithmetic mean of the stored values, or 0 when empty
func (rb *RingBuffer) Mean() float64 {
	if rb.count == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < rb.count; i++ {
		sum += rb.buffer[(rb.start+i)%rb.capacity]
	}
	return sum / float64(rb.count)
}

// Reset discards all stored values
func (rb *RingBuffer) Reset() {
	rb.start = 0
	rb.count = 0
}
