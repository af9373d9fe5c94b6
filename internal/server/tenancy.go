package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Tenant is the employer whose onboarding records a request may touch.
type Tenant struct {
	ID     string
	Domain string
	Name   string
}

type TenancyResolver interface {
	ResolveTenant(ctx context.Context, hostname string) (Tenant, bool, error)
}

// newTenancyResolver builds the resolver named by cfg's tenant source. q is
// only consulted for the database source and may be nil otherwise.
func newTenancyResolver(cfg Config, q queryRower) (TenancyResolver, error) {
	switch src := cfg.tenantSource(); src {
	case TenantSourceStatic:
		if len(cfg.Tenants) == 0 {
			return nil, errors.New("server: static tenant source with no tenants listed")
		}
		return newStaticTenancyResolver(cfg.Tenants), nil
	case TenantSourceDatabase:
		if q == nil {
			return nil, errors.New("server: database tenant source with no database configured")
		}
		return hostTableResolver{q: q}, nil
	default:
		return nil, fmt.Errorf("server: unknown tenant source %q", src)
	}
}

type staticTenancyResolver map[string]Tenant

func newStaticTenancyResolver(tenants map[string]TenantConfig) staticTenancyResolver {
	m := make(staticTenancyResolver, len(tenants))
	for host, t := range tenants {
		host = normalizeHostname(host)
		m[host] = Tenant{ID: strings.TrimSpace(t.ID), Domain: host, Name: t.Name}
	}
	return m
}

func (m staticTenancyResolver) ResolveTenant(_ context.Context, hostname string) (Tenant, bool, error) {
	if hostname = normalizeHostname(hostname); hostname == "" {
		return Tenant{}, false, nil
	}
	t, ok := m[hostname]
	return t, ok, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// hostTableResolver reads withholding.tenant_hosts. Disabled rows resolve to
// no tenant so a host can be parked without deleting its mapping.
type hostTableResolver struct {
	q queryRower
}

const tenantHostSQL = `
SELECT tenant_id::text, tenant_name
FROM withholding.tenant_hosts
WHERE hostname = $1
  AND enabled
`

func (r hostTableResolver) ResolveTenant(ctx context.Context, hostname string) (Tenant, bool, error) {
	if hostname = normalizeHostname(hostname); hostname == "" {
		return Tenant{}, false, nil
	}
	t := Tenant{Domain: hostname}
	err := r.q.QueryRow(ctx, tenantHostSQL, hostname).Scan(&t.ID, &t.Name)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Tenant{}, false, nil
	case err != nil:
		return Tenant{}, false, fmt.Errorf("server: tenant host %s: %w", hostname, err)
	}
	return t, true, nil
}
