// package tasks implements playlist reconciliation between a source and a
// destination service.
//
// The core abstraction is Engine, which resolves each source track to a
// destination video ID, computes a minimal insert/delete plan with a
// longest-increasing-subsequence pass, and executes the plan insert-first.
// Operations emit progress updates via channels for non-blocking status
// reporting to the CLI layer.
//
// The insert-first discipline exists because the two operation classes
// address the playlist differently: inserts use target positions, deletes
// use stable item IDs. Running every position-sensitive insert before any
// delete means neither class invalidates the other's addressing mid-plan.
package tasks
