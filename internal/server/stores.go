package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/ports"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/infrastructure/persistence"
	"gopkg.in/yaml.v3"
)

// Stores are the collaborators picked from configuration: Postgres when the
// database block (or DATABASE_URL) is set, otherwise an in-memory store seeded
// from a file. Tenancy follows cfg's tenant source in both cases.
type Stores struct {
	Identities ports.IdentityReader
	Submitter  ports.Submitter
	Tenants    TenancyResolver
	Close      func()
}

func OpenStores(ctx context.Context, cfg Config, now func() time.Time) (Stores, error) {
	if dsn := cfg.Database.DSN(); dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return Stores{}, fmt.Errorf("server: database: %w", err)
		}
		tenants, err := newTenancyResolver(cfg, pool)
		if err != nil {
			pool.Close()
			return Stores{}, err
		}
		return Stores{
			Identities: persistence.NewIdentityPGStore(pool),
			Submitter:  persistence.NewSubmissionPGStore(pool),
			Tenants:    tenants,
			Close:      pool.Close,
		}, nil
	}

	tenants, err := newTenancyResolver(cfg, nil)
	if err != nil {
		return Stores{}, err
	}
	mem := persistence.NewMemoryStore(now)
	if cfg.SeedPath != "" {
		if err := seedMemoryStore(mem, cfg.SeedPath); err != nil {
			return Stores{}, err
		}
	}
	return Stores{
		Identities: mem,
		Submitter:  mem,
		Tenants:    tenants,
		Close:      func() {},
	}, nil
}

type seedFile struct {
	Tenants []struct {
		TenantID   string         `yaml:"tenant_id"`
		Identities []seedIdentity `yaml:"identities"`
	} `yaml:"tenants"`
}

type seedIdentity struct {
	OnboardingID  string `yaml:"onboarding_id"`
	FirstName     string `yaml:"first_name"`
	MiddleInitial string `yaml:"middle_initial"`
	LastName      string `yaml:"last_name"`
	SSN           string `yaml:"ssn"`
	AddressLine1  string `yaml:"address_line1"`
	AddressLine2  string `yaml:"address_line2"`
	City          string `yaml:"city"`
	State         string `yaml:"state"`
	Zip           string `yaml:"zip"`
	WorkState     string `yaml:"work_state"`
	Email         string `yaml:"email"`
	Phone         string `yaml:"phone"`
}

func seedMemoryStore(mem *persistence.MemoryStore, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("server: seed: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("server: seed %s: %w", path, err)
	}
	for _, t := range f.Tenants {
		for _, s := range t.Identities {
			if s.OnboardingID == "" {
				return fmt.Errorf("server: seed %s: identity without onboarding_id", path)
			}
			mem.PutIdentity(t.TenantID, types.OnboardingIdentity{
				OnboardingID:  s.OnboardingID,
				FirstName:     s.FirstName,
				MiddleInitial: s.MiddleInitial,
				LastName:      s.LastName,
				SSN:           s.SSN,
				AddressLine1:  s.AddressLine1,
				AddressLine2:  s.AddressLine2,
				City:          s.City,
				State:         s.State,
				Zip:           s.Zip,
				WorkState:     s.WorkState,
				Email:         s.Email,
				Phone:         s.Phone,
			})
		}
	}
	return nil
}
