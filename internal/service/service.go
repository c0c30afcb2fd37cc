// Package service provides the business logic layer for duplicate
// detection, audit previews, manual album reconciliation, and merges.
package service

// CacheEmitter fans response-cache invalidations out after a write commits.
// Fire and forget: implementations must never block the caller.
type CacheEmitter interface {
	EmitUser(reason, userID string)
}

// invalidateUsers queues one invalidation per affected user. Best effort; a
// missed invalidation heals on the next natural cache expiry.
func invalidateUsers(emitter CacheEmitter, reason string, userIDs []string) {
	if emitter == nil {
		return
	}
	for _, userID := range userIDs {
		emitter.EmitUser(reason, userID)
	}
}
