package ports

import (
	"context"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
)

// IdentityReader loads the identity block of an onboarding record.
type IdentityReader interface {
	ReadIdentity(ctx context.Context, tenantID string, onboardingID string) (types.OnboardingIdentity, error)
}

// SignatureCapture is the freehand signature surface. Only its output is read.
type SignatureCapture interface {
	RasterImage() []byte
	IsEmpty() bool
}

// Submitter persists an assembled payload. Errors are surfaced to the user
// verbatim, so implementations should return messages fit for display.
type Submitter interface {
	Submit(ctx context.Context, tenantID string, payload types.SubmissionPayload) (types.SubmissionResult, error)
}

// SubmissionGate decides whether an assembled payload may be persisted and
// whether it should be acknowledged without persistence.
type SubmissionGate interface {
	Decide(ctx context.Context, payload types.SubmissionPayload) (GateDecision, error)
}

type GateDecision struct {
	Allow  bool
	DryRun bool
	Reason string
}
