package view

import (
	"fmt"

	"github.com/google/uuid"
)

// Scope identifies one cached listing/snapshot region: an entity's year under
// one status tab. Mutations return the scopes they touched; the invalidation
// dispatcher is the only consumer.
type Scope struct {
	EntityID uuid.UUID
	Year     int
	Status   Status
}

// Key renders the scope as the cache-key prefix shared by every query in it
func (s Scope) Key() string {
	return fmt.Sprintf("scope:%s:%d:%s", s.EntityID, s.Year, s.Status)
}

// MergeScopes deduplicates the scope lists of several mutations
func MergeScopes(lists ...[]Scope) []Scope {
	seen := make(map[Scope]struct{})
	var out []Scope
	for _, list := range lists {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
