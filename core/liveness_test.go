package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Liveness(t *testing.T) {
	l := NewLiveness()
	assert.True(t, l.Alive())

	l.Terminate()
	assert.False(t, l.Alive())

	// idempotent
	l.Terminate()
	assert.False(t, l.Alive())
}

func Test_Liveness_concurrent(t *testing.T) {
	l := NewLiveness()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Terminate()
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Alive()
		}()
	}
	wg.Wait()
	assert.False(t, l.Alive())
}
