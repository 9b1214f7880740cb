// Package session owns the mutable state of a discussion. A Session is the
// single writer of its State: concurrent work proposes changes through Apply,
// which runs them serially and rejects proposals bound to a stale generation
// epoch. Hosts observe snapshots through Snapshot and Subscribe.
//
// InMemoryStore keeps sessions in a process local map keyed by id.
package session
