// Package agent contains the provider call sites of a discussion: the batched
// panel request, per-persona enrichment, persona replies, moderator speaker
// selection, the suggested user reply and the safety rewrite.
//
// Every call reads a fresh settings snapshot, renders its prompt template,
// runs under its own timeout and parses the reply through internal/jsonx with
// field-alias fallbacks. Failures are reported with the core error taxonomy:
//   - *core.ProviderError for transport, timeout or empty replies
//   - *core.ParseError when no JSON (or no required field) could be read
//   - core.ErrAborted when the caller's context ended first
//
// Methods that produce persona-visible text return usable fallback content
// alongside provider and parse errors so callers can degrade gracefully.
package agent
