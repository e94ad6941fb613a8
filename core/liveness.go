package core

import "sync/atomic"

// Liveness tells async continuations whether the view that owns them is still
// mounted. It is created alive and flipped dead exactly once, on teardown.
// There is no request cancellation behind it: in-flight calls run to completion
// and their results are dropped on arrival if the view has gone away.
type Liveness struct {
	dead int32
}

func NewLiveness() *Liveness {
	return &Liveness{}
}

func (l *Liveness) Alive() bool {
	return atomic.LoadInt32(&l.dead) == 0
}

// Terminate marks the owning view as gone. Safe to call more than once.
func (l *Liveness) Terminate() {
	atomic.StoreInt32(&l.dead, 1)
}
