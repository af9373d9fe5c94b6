package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/ports"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

type IdentityPGStore struct {
	pool pgBeginner
}

func NewIdentityPGStore(pool pgBeginner) ports.IdentityReader {
	return &IdentityPGStore{pool: pool}
}

func (s *IdentityPGStore) ReadIdentity(ctx context.Context, tenantID string, onboardingID string) (types.OnboardingIdentity, error) {
	onboardingID = strings.TrimSpace(onboardingID)
	if onboardingID == "" {
		return types.OnboardingIdentity{}, errors.New("onboarding_id is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.OnboardingIdentity{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, `SELECT set_config('app.current_tenant', $1, true);`, tenantID); err != nil {
		return types.OnboardingIdentity{}, err
	}

	var id types.OnboardingIdentity
	err = tx.QueryRow(ctx, `
	SELECT
	  id::text,
	  first_name,
	  coalesce(middle_initial, ''),
	  last_name,
	  ssn,
	  address_line1,
	  coalesce(address_line2, ''),
	  city,
	  state,
	  zip,
	  work_state,
	  coalesce(email, ''),
	  coalesce(phone, '')
	FROM onboarding.records
	WHERE tenant_id = $1::uuid AND id = $2::uuid
	`, tenantID, onboardingID).Scan(
		&id.OnboardingID,
		&id.FirstName,
		&id.MiddleInitial,
		&id.LastName,
		&id.SSN,
		&id.AddressLine1,
		&id.AddressLine2,
		&id.City,
		&id.State,
		&id.Zip,
		&id.WorkState,
		&id.Email,
		&id.Phone,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.OnboardingIdentity{}, types.ErrOnboardingNotFound
	}
	if err != nil {
		return types.OnboardingIdentity{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.OnboardingIdentity{}, err
	}
	return id, nil
}
