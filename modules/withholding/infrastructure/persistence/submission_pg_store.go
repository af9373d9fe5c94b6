package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/ports"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type SubmissionPGStore struct {
	pool pgBeginner
}

func NewSubmissionPGStore(pool pgBeginner) ports.Submitter {
	return &SubmissionPGStore{pool: pool}
}

func (s *SubmissionPGStore) Submit(ctx context.Context, tenantID string, payload types.SubmissionPayload) (types.SubmissionResult, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return types.SubmissionResult{}, errors.New("tenant_id is required")
	}
	canonical, err := canonicalPayload(payload)
	if err != nil {
		return types.SubmissionResult{}, err
	}
	recordID := submissionRecordID(tenantID, canonical, payload.SignatureImage)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.SubmissionResult{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, `SELECT set_config('app.current_tenant', $1, true);`, tenantID); err != nil {
		return types.SubmissionResult{}, err
	}

	var submittedAt time.Time
	err = tx.QueryRow(ctx, `
	INSERT INTO withholding.submissions (
	  tenant_id, record_id, onboarding_id, state_code, form_id, exempt,
	  payload, signature_image, confirmation_date
	)
	VALUES ($1::uuid, $2::uuid, $3::text, $4::text, $5::text, $6::boolean, $7::jsonb, $8::bytea, NULLIF($9, '')::date)
	ON CONFLICT (tenant_id, record_id) DO NOTHING
	RETURNING submitted_at
	`,
		tenantID,
		recordID,
		payload.Identity.OnboardingID,
		string(payload.StateCode),
		payload.FormID,
		payload.Exempt,
		canonical,
		payload.SignatureImage,
		payload.ConfirmationDate,
	).Scan(&submittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx, `
	SELECT submitted_at
	FROM withholding.submissions
	WHERE tenant_id = $1::uuid AND record_id = $2::uuid
	`, tenantID, recordID).Scan(&submittedAt)
	}
	if err != nil {
		return types.SubmissionResult{}, submissionError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return types.SubmissionResult{}, err
	}
	return types.SubmissionResult{RecordID: recordID, SubmittedAt: submittedAt.UTC()}, nil
}

// submissionError keeps the database's own message, which users see verbatim.
func submissionError(err error) error {
	if pgErr, ok := errors.AsType[*pgconn.PgError](err); ok {
		msg := strings.TrimSpace(pgErr.Message)
		if pgErr.Detail != "" {
			msg += ": " + strings.TrimSpace(pgErr.Detail)
		}
		return fmt.Errorf("%s: %w", msg, errSubmissionRejected)
	}
	return err
}

var errSubmissionRejected = errors.New("submission rejected")
