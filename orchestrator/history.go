package orchestrator

import "lingokit/core"

// DefaultHistoryPairs bounds the conversation memory carried between turns.
const DefaultHistoryPairs = 20

// EvictionPolicy trims conversation history after a turn completes. Policies
// must preserve user/assistant pairing so the window never starts on a
// dangling assistant message.
type EvictionPolicy interface {
	Evict(history []core.ChatMessage) []core.ChatMessage
}

// KeepLastPairs evicts oldest-first, whole pairs at a time, keeping at most
// n user/assistant exchanges.
type KeepLastPairs int

func (n KeepLastPairs) Evict(history []core.ChatMessage) []core.ChatMessage {
	limit := int(n) * 2
	if limit <= 0 || len(history) <= limit {
		return history
	}
	// Drop from the front on pair boundaries only.
	drop := len(history) - limit
	if drop%2 != 0 {
		drop++
	}
	if drop < len(history) && history[drop].Role == core.ChatRoleAssistant {
		drop++
	}
	return history[drop:]
}

// KeepAll retains the full history; useful in tests and short sessions.
type KeepAll struct{}

func (KeepAll) Evict(history []core.ChatMessage) []core.ChatMessage {
	return history
}
