// Package state provides a lightweight session store for Telegram bots.
// It keeps per-user conversation state and scratch data; which handler
// runs for a given state is decided by the caller, keeping the package
// domain-agnostic.
package state
