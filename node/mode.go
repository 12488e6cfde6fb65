package node

import "github.com/rs/zerolog/log"

// StrictMode governs what an invariant violation does: panic (the default,
// meant for tests and development) or log a Warn and fall back to the best
// safe value (meant for a running engine, where a single corrupted subtree
// shouldn't take the whole search down).
var StrictMode = true

// invariantViolation reports op having hit a broken invariant. In
// StrictMode it panics with msg; otherwise it logs msg at Warn and returns,
// leaving the caller to apply its own fallback.
func invariantViolation(op, msg string) {
	if StrictMode {
		panic("node: " + op + ": " + msg)
	}
	log.Warn().Str("op", op).Msg("node: invariant violation, falling back: " + msg)
}
