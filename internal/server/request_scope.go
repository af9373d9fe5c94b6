package server

import (
	"context"

	"github.com/jacksonlee411/onboarding-withholding/pkg/authz"
)

// requestScope is what the tenancy middleware established for a request.
// Principal is nil when the gateway asserted no role.
type requestScope struct {
	Tenant    Tenant
	Principal *Principal
}

// RoleSlug falls back to the anonymous role when no principal was asserted.
func (s requestScope) RoleSlug() string {
	if s.Principal == nil || s.Principal.RoleSlug == "" {
		return authz.RoleAnonymous
	}
	return s.Principal.RoleSlug
}

type requestScopeKey struct{}

func withRequestScope(ctx context.Context, s requestScope) context.Context {
	return context.WithValue(ctx, requestScopeKey{}, s)
}

func requestScopeFrom(ctx context.Context) (requestScope, bool) {
	s, ok := ctx.Value(requestScopeKey{}).(requestScope)
	return s, ok
}

// scopedTenantID feeds WithholdingController.TenantID.
func scopedTenantID(ctx context.Context) (string, bool) {
	s, ok := requestScopeFrom(ctx)
	if !ok || s.Tenant.ID == "" {
		return "", false
	}
	return s.Tenant.ID, true
}
