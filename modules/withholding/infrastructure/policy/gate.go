package policy

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/ports"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/open-policy-agent/opa/v1/rego"
)

//go:embed submission.rego
var DefaultSubmissionPolicy string

const submissionQuery = "data.withholding.submission"

// RegoGate evaluates the submission admission policy. The deployment
// environment is fixed at construction and handed to the policy as
// input.environment.
type RegoGate struct {
	environment string
	query       rego.PreparedEvalQuery
}

func NewRegoGate(ctx context.Context, environment string, source string) (*RegoGate, error) {
	if strings.TrimSpace(source) == "" {
		source = DefaultSubmissionPolicy
	}
	query, err := rego.New(
		rego.Query(submissionQuery),
		rego.Module("submission.rego", source),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare submission policy: %w", err)
	}
	return &RegoGate{environment: strings.ToLower(strings.TrimSpace(environment)), query: query}, nil
}

func (g *RegoGate) Environment() string { return g.environment }

func (g *RegoGate) Decide(ctx context.Context, payload types.SubmissionPayload) (ports.GateDecision, error) {
	input := map[string]any{
		"environment": g.environment,
		"payload": map[string]any{
			"onboarding_id": payload.Identity.OnboardingID,
			"state":         string(payload.StateCode),
			"form_id":       payload.FormID,
			"exempt":        payload.Exempt,
			"signed":        len(payload.SignatureImage) > 0,
		},
	}
	rs, err := g.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return ports.GateDecision{}, fmt.Errorf("evaluate submission policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return ports.GateDecision{}, errors.New("submission policy returned no result")
	}
	doc, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return ports.GateDecision{}, fmt.Errorf("submission policy returned %T", rs[0].Expressions[0].Value)
	}

	decision := ports.GateDecision{}
	decision.Allow, _ = doc["allow"].(bool)
	decision.DryRun, _ = doc["dry_run"].(bool)
	if raw, ok := doc["deny"].([]any); ok {
		reasons := make([]string, 0, len(raw))
		for _, r := range raw {
			if s, ok := r.(string); ok {
				reasons = append(reasons, s)
			}
		}
		slices.Sort(reasons)
		decision.Reason = strings.Join(reasons, "; ")
	}
	return decision, nil
}
