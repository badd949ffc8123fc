package safego

import (
	"testing"
	"time"
)

// waitDone fails the test if done is not closed within two seconds.
func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("goroutine did not complete within timeout")
	}
}

func TestGo_RunsFunction(t *testing.T) {
	done := make(chan struct{})
	Go(func() { close(done) })
	waitDone(t, done)
}

func TestGo_RecoversPanic(t *testing.T) {
	// Must not crash the test process; the panic is recovered and logged.
	done := make(chan struct{})
	Go(func() {
		defer close(done)
		panic("intentional panic in test")
	})
	waitDone(t, done)
}
