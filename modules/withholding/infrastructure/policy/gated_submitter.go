package policy

import (
	"context"
	"errors"
	"time"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/ports"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/pkg/uuidv7"
	"go.uber.org/zap"
)

// GatedSubmitter consults the gate before handing a payload to next. Dry-run
// decisions are acknowledged without calling next.
type GatedSubmitter struct {
	gate   ports.SubmissionGate
	next   ports.Submitter
	now    func() time.Time
	logger *zap.Logger
}

func NewGatedSubmitter(gate ports.SubmissionGate, next ports.Submitter, now func() time.Time, logger *zap.Logger) *GatedSubmitter {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GatedSubmitter{gate: gate, next: next, now: now, logger: logger}
}

func (s *GatedSubmitter) Submit(ctx context.Context, tenantID string, payload types.SubmissionPayload) (types.SubmissionResult, error) {
	decision, err := s.gate.Decide(ctx, payload)
	if err != nil {
		return types.SubmissionResult{}, err
	}
	if !decision.Allow {
		msg := "submission not allowed"
		if decision.Reason != "" {
			msg += ": " + decision.Reason
		}
		return types.SubmissionResult{}, errors.New(msg)
	}
	if decision.DryRun {
		id, err := uuidv7.Generator{Now: s.now}.NewString()
		if err != nil {
			return types.SubmissionResult{}, err
		}
		s.logger.Info("withholding submission acknowledged without persistence",
			zap.String("record_id", id),
			zap.String("state", string(payload.StateCode)),
			zap.String("form_id", payload.FormID),
		)
		return types.SubmissionResult{RecordID: id, DryRun: true, SubmittedAt: s.now().UTC()}, nil
	}
	return s.next.Submit(ctx, tenantID, payload)
}
