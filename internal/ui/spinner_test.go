package ui

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerLifecycle(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo(&out, "Submitting mint")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Update("Waiting for acceptance")
	time.Sleep(100 * time.Millisecond)
	s.StopWithMsg("done")
	s.Stop()

	got := out.String()
	assert.Contains(t, got, "Submitting mint")
	assert.Contains(t, got, "Waiting for acceptance")
	assert.Contains(t, got, "done\n")
}
