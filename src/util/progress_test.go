package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressLoggerStop(t *testing.T) {
	p := NewProgressLogger(5, "uploading", 10*time.Millisecond)
	p.UpdateFiles(2)
	p.UpdateBytes(1024)

	// Stop mid-flight, as a failed upload would, then again to check it
	// is safe to repeat.
	p.Stop()
	p.Stop()

	// Counters stay usable after the renderer is gone.
	p.UpdateFiles(1)
	files, bytes := p.Snapshot()
	assert.Equal(t, int64(3), files)
	assert.Equal(t, int64(1024), bytes)

	select {
	case <-p.done:
	default:
		t.Fatal("done channel still open after Stop")
	}
}

func TestProgressLoggerZeroFiles(t *testing.T) {
	p := NewProgressLogger(0, "uploading", time.Millisecond)
	p.Stop()

	files, bytes := p.Snapshot()
	assert.Zero(t, files)
	assert.Zero(t, bytes)
}
