package history

import "chatmind/internal/llm"

// Buffer is a bounded FIFO of messages. Once full, each Append evicts the
// oldest entry regardless of its role. Buffer is not safe for concurrent use.
type Buffer struct {
	items []llm.Message
	head  int // index of the oldest entry
	size  int
}

// NewBuffer returns an empty buffer holding at most capacity messages.
// It panics if capacity is not positive.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		panic("history: buffer capacity must be positive")
	}
	return &Buffer{items: make([]llm.Message, capacity)}
}

// Append adds m as the newest entry. It reports the evicted message, if any.
func (b *Buffer) Append(m llm.Message) (evicted llm.Message, ok bool) {
	if b.size == len(b.items) {
		evicted, ok = b.items[b.head], true
		b.items[b.head] = m
		b.head = (b.head + 1) % len(b.items)
		return evicted, ok
	}
	b.items[(b.head+b.size)%len(b.items)] = m
	b.size++
	return llm.Message{}, false
}

func (b *Buffer) Len() int { return b.size }
func (b *Buffer) Cap() int { return len(b.items) }

// Snapshot returns the retained messages, oldest first, as a fresh slice.
func (b *Buffer) Snapshot() []llm.Message {
	out := make([]llm.Message, b.size)
	for i := range b.size {
		out[i] = b.items[(b.head+i)%len(b.items)]
	}
	return out
}
