package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/forms"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/ports"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"go.uber.org/zap"
)

// Assembler validates a draft and turns it into a submission payload.
type Assembler struct {
	submitter ports.Submitter
	logger    *zap.Logger
}

func NewAssembler(submitter ports.Submitter, logger *zap.Logger) Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Assembler{submitter: submitter, logger: logger}
}

// Assemble returns the first validation failure it finds: signature, then
// identity, then form fields in field order. Overlong or non-digit values in
// constrained fields are sanitized rather than rejected.
func (a Assembler) Assemble(draft types.FormDraft, def types.Definition) (types.SubmissionPayload, error) {
	if len(draft.SignatureImage) == 0 {
		return types.SubmissionPayload{}, types.ErrMissingSignature
	}
	id := sanitizeIdentity(draft.Identity)
	if name := missingIdentityField(id); name != "" {
		return types.SubmissionPayload{}, &types.MissingRequiredFieldError{Field: "identity." + name}
	}

	// Section conditions and blank checks see the values that will be sent.
	values := draft.Values.Clone()
	sanitizeValues(def, values)
	for _, name := range forms.RequiredFields(def, values) {
		if values.IsBlank(name) {
			return types.SubmissionPayload{}, &types.MissingRequiredFieldError{Field: name}
		}
	}

	totals := types.NewDerivedTotals()
	if def.Compute != nil {
		totals = def.Compute(values)
	}

	state := draft.StateCode
	if state == "" {
		state = def.StateCode
	}
	return types.SubmissionPayload{
		Identity:         id,
		StateCode:        state,
		FormID:           def.FormID,
		Exempt:           def.Exempt || totals.Flag("exempt"),
		Values:           values,
		Totals:           totals,
		SignatureImage:   append([]byte(nil), draft.SignatureImage...),
		ConfirmationDate: strings.TrimSpace(draft.ConfirmationDate),
	}, nil
}

// Submit assembles the draft and hands it to the submission collaborator.
// Collaborator failures come back as *types.SubmissionFailedError carrying
// the original message.
func (a Assembler) Submit(ctx context.Context, tenantID string, draft types.FormDraft, def types.Definition) (types.SubmissionPayload, types.SubmissionResult, error) {
	payload, err := a.Assemble(draft, def)
	if err != nil {
		return types.SubmissionPayload{}, types.SubmissionResult{}, err
	}
	if a.submitter == nil {
		return payload, types.SubmissionResult{}, types.NewSubmissionFailed(errors.New("submission service unavailable"))
	}
	result, err := a.submitter.Submit(ctx, tenantID, payload)
	if err != nil {
		a.logger.Warn("withholding submission failed",
			zap.String("onboarding_id", payload.Identity.OnboardingID),
			zap.String("state", string(payload.StateCode)),
			zap.String("form_id", payload.FormID),
			zap.Error(err),
		)
		if _, ok := errors.AsType[*types.SubmissionFailedError](err); ok {
			return payload, types.SubmissionResult{}, err
		}
		return payload, types.SubmissionResult{}, types.NewSubmissionFailed(err)
	}
	return payload, result, nil
}

func missingIdentityField(id types.OnboardingIdentity) string {
	switch {
	case strings.TrimSpace(id.FirstName) == "":
		return "first_name"
	case strings.TrimSpace(id.LastName) == "":
		return "last_name"
	case strings.TrimSpace(id.SSN) == "":
		return "ssn"
	case strings.TrimSpace(id.WorkState) == "":
		return "work_state"
	default:
		return ""
	}
}

func sanitizeValues(def types.Definition, values types.RawValues) {
	for _, f := range def.Fields {
		if f.MaxLength == 0 && !f.DigitsOnly {
			continue
		}
		if values.IsBlank(f.Name) {
			continue
		}
		values[f.Name] = sanitizeText(values.Text(f.Name), f.MaxLength, f.DigitsOnly)
	}
}

func sanitizeIdentity(id types.OnboardingIdentity) types.OnboardingIdentity {
	id.SSN = sanitizeText(id.SSN, 9, true)
	id.Zip = sanitizeText(id.Zip, 5, true)
	id.State = strings.ToUpper(sanitizeText(id.State, 2, false))
	id.WorkState = string(types.NormalizeStateCode(id.WorkState))
	id.MiddleInitial = sanitizeText(id.MiddleInitial, 1, false)
	return id
}

func sanitizeText(s string, maxLen int, digitsOnly bool) string {
	s = strings.TrimSpace(s)
	if digitsOnly {
		s = strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
	}
	if maxLen > 0 {
		if r := []rune(s); len(r) > maxLen {
			s = string(r[:maxLen])
		}
	}
	return s
}
