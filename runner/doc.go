// Package runner implements the round loop of a discussion.
//
// A round repeatedly asks the turn scheduler for the next persona, paces the
// display (reading time of the previous reply, a pre-think pause and a
// minimum "thinking" placeholder), requests the reply, runs the safety
// rewrite when enabled and records the turn. It ends when the scheduler is
// exhausted, the user is chosen or addressed, or the turn limit is hit, and
// then optionally drafts a suggested user reply.
//
// Every state change goes through session.Apply bound to the round's epoch,
// so a round superseded by a reset or new user input unwinds without touching
// the new state. At most one round runs per session.
package runner
