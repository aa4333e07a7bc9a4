// package services defines the provider interfaces the sync engine
// consumes and their concrete HTTP implementations.
//
// SourceProvider is the read-only side (Spotify). DestinationProvider is
// the mutable side (YouTube Data API v3). Mutating calls distinguish three
// failure classes via wrapped sentinel errors from internal/shared:
// ordinary failures, ambiguous-state failures (shared.ErrSyncAborted), and
// quota exhaustion (shared.ErrQuotaExceeded).
package services
