// Package state provides a lightweight FSM/session manager for Telegram bots.
// Sessions are keyed by the sender id, carry a current State plus scratch
// values, and expire after an idle TTL. It is domain-agnostic so bots register
// their own state handlers on the manager.
package state
