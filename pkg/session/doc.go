// Package session holds the current field forest for one editing session and
// routes edits, compilation, export and clipboard copies through it.
//
// Every edit swaps in a new immutable snapshot. Readers take the snapshot and
// compile it without holding the session lock, so the UI always sees a fully
// constructed forest.
package session
