package util

import "sync"

var (
	shutdownMu    sync.Mutex
	shutdownHooks []func()
)

// AddShutdownHook registers fn to run at shutdown. Hooks run in reverse
// registration order, mirroring defer.
func AddShutdownHook(fn func()) {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	shutdownHooks = append(shutdownHooks, fn)
}

// RunShutdownHooks runs and clears all registered hooks. Calling it again
// without new registrations is a no-op.
func RunShutdownHooks() {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	for i := len(shutdownHooks) - 1; i >= 0; i-- {
		shutdownHooks[i]()
	}
	shutdownHooks = nil
}
