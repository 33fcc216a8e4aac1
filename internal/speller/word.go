package speller

import (
	"strings"
	"sync"
)

// Buffer is the word being spelled. It is safe for concurrent use.
type Buffer struct {
	mu   sync.RWMutex
	word string
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds letter unless the word already ends with it, and reports
// whether the word changed. Empty letters are ignored.
func (b *Buffer) Append(letter string) bool {
	if letter == "" {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if strings.HasSuffix(b.word, letter) {
		return false
	}
	b.word += letter
	return true
}

// Clear empties the word.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.word = ""
}

// Current returns the word spelled so far.
func (b *Buffer) Current() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.word
}
