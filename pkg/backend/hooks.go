package backend

import "sync"

// Hook names a backend-side script with an optional parameter, attached to a
// write operation.
type Hook struct {
	Script string
	Param  string
}

// HookSet carries the scripts to run around one write operation: Pre before
// the write, Post after it. A nil *HookSet means no scripts.
type HookSet struct {
	Pre  *Hook
	Post *Hook
}

// ScriptHooks is a one-shot token for attaching script hooks to the next
// write operation. Take consumes it atomically: the first caller receives the
// hooks, every later caller receives nil. This keeps retries and fallback
// dispatches within the same request from re-firing scripts.
type ScriptHooks struct {
	mu    sync.Mutex
	hooks *HookSet
}

// NewScriptHooks builds a one-shot token. Either hook may be nil.
func NewScriptHooks(pre, post *Hook) *ScriptHooks {
	if pre == nil && post == nil {
		return nil
	}
	return &ScriptHooks{hooks: &HookSet{Pre: pre, Post: post}}
}

// Take consumes the token. Safe on a nil receiver.
func (s *ScriptHooks) Take() *HookSet {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hooks
	s.hooks = nil
	return h
}
