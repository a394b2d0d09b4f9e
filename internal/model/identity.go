package model

import "strings"

// Identity carries the caller's identification as supplied by the transport
// layer: an authenticated user id resolved by the auth layer, an opaque
// anonymous session id generated client-side, or both. The engine never
// generates or parses either value.
type Identity struct {
	UserID    string
	SessionID string
}

// OwnerKey resolves the identity to the key that scopes cart ownership.
// The authenticated user id always wins over a leftover anonymous session
// id, and the two namespaces are disjoint so an anonymous cart and a user
// cart can never collide. Returns false when neither id is usable.
func (i Identity) OwnerKey() (string, bool) {
	if strings.TrimSpace(i.UserID) != "" {
		return "user:" + i.UserID, true
	}
	if strings.TrimSpace(i.SessionID) != "" {
		return "session:" + i.SessionID, true
	}
	return "", false
}
