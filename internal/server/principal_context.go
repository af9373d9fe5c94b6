package server

import (
	"net/http"
	"strings"
)

// Principal is the caller as asserted by the authenticating gateway in front
// of this service.
type Principal struct {
	ID       string
	TenantID string
	RoleSlug string
}

const (
	headerActorID   = "X-Actor-ID"
	headerActorRole = "X-Actor-Role"
)

func principalFromRequest(r *http.Request, tenantID string) (Principal, bool) {
	role := strings.ToLower(strings.TrimSpace(r.Header.Get(headerActorRole)))
	if role == "" {
		return Principal{}, false
	}
	return Principal{
		ID:       strings.TrimSpace(r.Header.Get(headerActorID)),
		TenantID: tenantID,
		RoleSlug: role,
	}, true
}
