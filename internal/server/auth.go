package server

import (
	"errors"
	"net/http"
	"strings"
)

var errNoOwner = errors.New("no owner identifier")

// ownerFromRequest extracts the transport-provided opaque owner identifier.
// It is the only authentication the game has: one participant owns a team's
// actions.
func ownerFromRequest(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	owner, found := strings.CutPrefix(auth, "Bearer ")
	if !found || owner == "" {
		return "", errNoOwner
	}
	return owner, nil
}

// AdminSet is the static allowlist of privileged owner identifiers.
type AdminSet map[string]struct{}

func NewAdminSet(ids []string) AdminSet {
	set := make(AdminSet, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

func (a AdminSet) Contains(id string) bool {
	_, ok := a[id]
	return ok
}

// adminOnly gates a route on membership in the admin allowlist.
func adminOnly(admins AdminSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, err := ownerFromRequest(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "missing owner identifier")
				return
			}
			if !admins.Contains(owner) {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
