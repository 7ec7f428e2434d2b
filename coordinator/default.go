package coordinator

import "sync"

var (
	defaultMu   sync.Mutex
	defaultInst *Coordinator
)

// Default returns the process-wide coordinator, constructing it from cfg on
// first use. Later calls return the existing instance and ignore cfg. It
// exists for the application's top-level wiring point; library code should
// take an explicit *Coordinator instead.
func Default(cfg Config) (*Coordinator, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultInst != nil {
		return defaultInst, nil
	}

	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	defaultInst = c
	return c, nil
}

// ResetDefault closes and forgets the process-wide coordinator so the next
// Default call builds a fresh one.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultInst != nil {
		_ = defaultInst.Close()
		defaultInst = nil
	}
}
