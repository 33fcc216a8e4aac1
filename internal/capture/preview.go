package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Preview keeps the most recent frame as JPEG so viewers can watch the
// camera without reading from the device themselves.
type Preview struct {
	mu   sync.RWMutex
	data []byte
	seq  uint64
}

// NewPreview creates an empty Preview.
func NewPreview() *Preview {
	return &Preview{}
}

// Store encodes frame as JPEG and makes it the latest frame.
func (p *Preview) Store(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	p.StoreJPEG(data)
	return nil
}

// StoreJPEG makes data the latest frame. data must not be modified afterwards.
func (p *Preview) StoreJPEG(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = data
	p.seq++
}

// Latest returns the latest JPEG and its sequence number. The sequence is
// zero until the first frame is stored.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data, p.seq
}
