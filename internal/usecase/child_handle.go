package usecase

import (
	"sync"

	"github.com/3-lines-studio/spark/internal/core"
)

// ChildHandle owns at most one live desktop process. Every Replace starts a
// new generation; exit listeners of older generations are never called.
type ChildHandle struct {
	mu   sync.Mutex
	proc core.Process
	gen  uint64
}

func NewChildHandle() *ChildHandle {
	return &ChildHandle{}
}

// Replace installs next (which may be nil) and kills the previous process
// after detaching its exit listener.
func (h *ChildHandle) Replace(next core.Process) error {
	h.mu.Lock()
	old := h.proc
	h.proc = next
	h.gen++
	h.mu.Unlock()

	if old == nil {
		return nil
	}
	return old.Kill()
}

// OnExit calls cb once the current process exits on its own.
func (h *ChildHandle) OnExit(cb func(gen uint64)) {
	h.mu.Lock()
	proc, gen := h.proc, h.gen
	h.mu.Unlock()

	if proc == nil {
		return
	}

	go func() {
		<-proc.Done()
		if h.Generation() == gen {
			cb(gen)
		}
	}()
}

func (h *ChildHandle) Current() core.Process {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.proc
}

func (h *ChildHandle) Generation() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gen
}
