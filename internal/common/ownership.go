package common

// Decision is the outcome of an ownership check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Authorize allows the caller only when its identifier equals the resource owner's identifier.
// Identifiers are opaque strings; no other identity semantics are assumed.
func Authorize(resourceOwnerID, callerID string) Decision {
	if resourceOwnerID != callerID {
		return Deny
	}

	return Allow
}
