// Package core provides the foundational domain types shared by every
// BrainTrust component. It defines:
//
//   - Personas, communication styles and palette colors
//   - Messages and the two per-session logs (canonical and display)
//   - Round state, scheduler decisions and the discussion status enum
//   - Generation epochs used to invalidate stale asynchronous work
//   - The error taxonomy used at every collaborator boundary
//
// The package keeps orchestration concerns (assembly, scheduling, pacing)
// out of scope so that those packages depend on a small, stable vocabulary.
package core
