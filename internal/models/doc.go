// package models defines the data model for playlist reconciliation.
//
// Domain types (Track, PlaylistItem, SyncOp, SyncResult) are plain value
// structs created fresh for each run. SyncRun is the persisted record of a
// completed run and implements the Model interface used by repositories.
package models
