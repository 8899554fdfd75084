// Package tenant defines the tenant identifier threaded through every data
// access. Stores are constructed bound to an ID, so a query that forgets
// the tenant filter is not expressible.
package tenant

import "strings"

// ID is an opaque tenant identifier. It is a distinct type so handlers and
// stores cannot accidentally accept a bare string from request input.
type ID string

// Default is the well-known tenant used for principals created before
// tenant support existed. Keeping the historical value means old tokens
// and old documents keep resolving to the same bucket.
const Default ID = "default_glass_dynamics"

// String returns the identifier as a plain string for storage filters.
func (id ID) String() string { return string(id) }

// OrDefault maps an empty or blank identifier to Default. Tokens issued
// before the tenant migration carry no tenant claim.
func OrDefault(s string) ID {
	if strings.TrimSpace(s) == "" {
		return Default
	}
	return ID(s)
}
