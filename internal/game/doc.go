// Package game implements a rules-exact Texas Hold'em engine as a pure,
// synchronous state transformer.
//
// Every operation takes a prior *GameState and returns a new one; states
// are never mutated once produced, so callers may keep and read old
// snapshots freely. Player actions that break the rules are rejected with
// a typed *Rejection and the input state is returned unchanged. Structural
// misuse (dealing from an exhausted deck, starting a hand with no blinds
// configured) is a caller bug and panics.
//
// Randomness is confined to StartHand, which takes an explicit RNG. All
// other transitions are deterministic, which keeps every hand replayable
// from a seed plus the action sequence.
package game
