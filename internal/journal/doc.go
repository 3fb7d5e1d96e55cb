// Package journal provides durable storage for runtime event logs.
//
// Each production run is identified by a time-sortable run token and
// appends its events, in dispatch order, to a SQLite database. A
// journaled run can later be replayed through the deterministic driver
// to reproduce the exact render sequence.
//
// The journal is an observer: append failures are reported and the
// dispatch loop continues. Durability never gates event processing.
package journal
