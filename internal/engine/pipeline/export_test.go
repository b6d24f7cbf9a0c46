package pipeline

import "go.trai.ch/relay/internal/core/domain"

// State returns the lifecycle state of the continuous pipeline registered as name.
// This is exported for testing purposes only.
func (a *Assembler) State(name string) domain.PipelineState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.states[name]
}
