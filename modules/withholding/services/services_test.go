package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/forms"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/ports"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type identityStub map[string]types.OnboardingIdentity

func (s identityStub) ReadIdentity(_ context.Context, _ string, onboardingID string) (types.OnboardingIdentity, error) {
	id, ok := s[onboardingID]
	if !ok {
		return types.OnboardingIdentity{}, errors.New("onboarding record not found")
	}
	return id, nil
}

type submitterFunc func(ctx context.Context, tenantID string, payload types.SubmissionPayload) (types.SubmissionResult, error)

func (f submitterFunc) Submit(ctx context.Context, tenantID string, payload types.SubmissionPayload) (types.SubmissionResult, error) {
	return f(ctx, tenantID, payload)
}

// recordingSubmitter accepts every payload and keeps it.
type recordingSubmitter struct {
	mu       sync.Mutex
	payloads []types.SubmissionPayload
}

func (r *recordingSubmitter) Submit(_ context.Context, _ string, payload types.SubmissionPayload) (types.SubmissionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, payload)
	return types.SubmissionResult{RecordID: "rec-1"}, nil
}

type signatureStub []byte

func (s signatureStub) RasterImage() []byte { return s }

func (s signatureStub) IsEmpty() bool { return len(s) == 0 }

var fixedNow = time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)

func identity(workState string) types.OnboardingIdentity {
	return types.OnboardingIdentity{
		OnboardingID: "onb-" + workState,
		FirstName:    "Ada",
		LastName:     "Lovelace",
		SSN:          "123-45-6789",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		State:        "ca",
		Zip:          "90210-1234",
		WorkState:    workState,
	}
}

func newManager(t *testing.T, submitter ports.Submitter) *SessionManager {
	t.Helper()
	ids := identityStub{}
	for _, state := range []string{"ca", "CO", "TX", "ZZ", "PA"} {
		ids["onb-"+state] = identity(state)
	}
	return NewSessionManager(ids, NewAssembler(submitter, nil), WithClock(func() time.Time { return fixedNow }))
}

func caDraft(values types.RawValues, signature []byte) (types.FormDraft, types.Definition) {
	def, _ := forms.Lookup("CA")
	return types.FormDraft{
		Identity:         identity("CA"),
		StateCode:        "CA",
		FormID:           def.FormID,
		Values:           values,
		SignatureImage:   signature,
		ConfirmationDate: "2026-10-19",
	}, def
}

func TestAssemble_SignatureGate(t *testing.T) {
	a := NewAssembler(nil, nil)
	values := types.RawValues{
		"filing_status":    "single",
		"allow_self":       1,
		"allow_dependents": 2,
	}
	draft, def := caDraft(values, nil)
	if _, err := a.Assemble(draft, def); !errors.Is(err, types.ErrMissingSignature) {
		t.Fatalf("err=%v", err)
	}

	draft.SignatureImage = []byte{0x89, 'P', 'N', 'G'}
	payload, err := a.Assemble(draft, def)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !payload.Totals.Equal(def.Compute(values)) {
		t.Fatalf("totals=%v want=%v", payload.Totals, def.Compute(values))
	}
	if payload.FormID != "CA-DE4" || payload.StateCode != "CA" || payload.Exempt {
		t.Fatalf("payload=%+v", payload)
	}
}

func TestAssemble_SignatureCheckedFirst(t *testing.T) {
	draft, def := caDraft(types.RawValues{}, nil)
	draft.Identity = types.OnboardingIdentity{}
	if _, err := NewAssembler(nil, nil).Assemble(draft, def); !errors.Is(err, types.ErrMissingSignature) {
		t.Fatalf("err=%v", err)
	}
}

func TestAssemble_MissingFields(t *testing.T) {
	sig := []byte("sig")
	cases := []struct {
		name   string
		edit   func(*types.FormDraft)
		values types.RawValues
		want   string
	}{
		{
			name:   "identity before form fields",
			edit:   func(d *types.FormDraft) { d.Identity.SSN = " " },
			values: types.RawValues{},
			want:   "identity.ssn",
		},
		{
			name:   "work state",
			edit:   func(d *types.FormDraft) { d.Identity.WorkState = "" },
			values: types.RawValues{"filing_status": "single"},
			want:   "identity.work_state",
		},
		{
			name:   "static required",
			values: types.RawValues{"filing_status": "  "},
			want:   "filing_status",
		},
		{
			name:   "section required",
			values: types.RawValues{"filing_status": "single", "claims_itemized": true},
			want:   "itemized_deductions",
		},
		{
			name:   "nested section required",
			values: types.RawValues{"filing_status": "single", "claim_exempt": "yes", "exempt_military_spouse": "yes"},
			want:   "exempt_domicile_state",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft, def := caDraft(tc.values, sig)
			if tc.edit != nil {
				tc.edit(&draft)
			}
			_, err := NewAssembler(nil, nil).Assemble(draft, def)
			field, ok := types.IsMissingRequiredField(err)
			if !ok || field != tc.want {
				t.Fatalf("err=%v field=%q", err, field)
			}
		})
	}
}

func TestAssemble_SanitizesInsteadOfRejecting(t *testing.T) {
	def, _ := forms.Lookup("PA")
	draft := types.FormDraft{
		Identity:       identity("PA"),
		StateCode:      "PA",
		SignatureImage: []byte("sig"),
		Values: types.RawValues{
			"psd_code":            "12-3456-789",
			"reciprocal_resident": true,
			"resident_state":      "Ohio",
		},
	}
	payload, err := NewAssembler(nil, nil).Assemble(draft, def)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	want := types.RawValues{"psd_code": "123456", "reciprocal_resident": true, "resident_state": "Oh"}
	if diff := cmp.Diff(want, payload.Values); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if payload.Identity.Zip != "90210" || payload.Identity.SSN != "123456789" || payload.Identity.State != "CA" {
		t.Fatalf("identity=%+v", payload.Identity)
	}
	if draft.Values["psd_code"] != "12-3456-789" {
		t.Fatalf("draft mutated: %v", draft.Values)
	}
	if !payload.Exempt {
		t.Fatal("reciprocal resident should be exempt")
	}

	in, _ := forms.Lookup("IN")
	_, err = NewAssembler(nil, nil).Assemble(types.FormDraft{
		Identity:       identity("IN"),
		StateCode:      "IN",
		SignatureImage: []byte("sig"),
		Values:         types.RawValues{"county_residence": "ab"},
	}, in)
	if missing, ok := errors.AsType[*types.MissingRequiredFieldError](err); !ok || missing.Field != "county_principal_employment" {
		t.Fatalf("err=%v", err)
	}

	noDigits := identity("PA")
	noDigits.SSN = "n/a"
	_, err = NewAssembler(nil, nil).Assemble(types.FormDraft{
		Identity:       noDigits,
		StateCode:      "PA",
		SignatureImage: []byte("sig"),
	}, def)
	if missing, ok := errors.AsType[*types.MissingRequiredFieldError](err); !ok || missing.Field != "identity.ssn" {
		t.Fatalf("err=%v", err)
	}
}

func TestAssemble_NoTaxSkipsWorksheet(t *testing.T) {
	def := forms.NoTaxExemption("TX")
	draft := types.FormDraft{
		Identity:       identity("TX"),
		StateCode:      "TX",
		Values:         types.RawValues{"exempt": true},
		SignatureImage: []byte("sig"),
	}
	payload, err := NewAssembler(nil, nil).Assemble(draft, def)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !payload.Exempt || payload.Totals.Len() != 0 || payload.FormID != forms.NoTaxExemptionFormID {
		t.Fatalf("payload=%+v", payload)
	}
}

func TestAssembler_SubmitFailurePassesMessage(t *testing.T) {
	backend := errors.New("ssn: already on file for this client")
	a := NewAssembler(submitterFunc(func(context.Context, string, types.SubmissionPayload) (types.SubmissionResult, error) {
		return types.SubmissionResult{}, backend
	}), nil)
	draft, def := caDraft(types.RawValues{"filing_status": "single"}, []byte("sig"))
	_, _, err := a.Submit(context.Background(), "t1", draft, def)
	if err == nil || err.Error() != backend.Error() {
		t.Fatalf("err=%v", err)
	}
	if _, ok := errors.AsType[*types.SubmissionFailedError](err); !ok {
		t.Fatalf("err type=%T", err)
	}
	if !errors.Is(err, backend) {
		t.Fatal("original error not wrapped")
	}
}

func TestAssembler_SubmitWithoutCollaborator(t *testing.T) {
	draft, def := caDraft(types.RawValues{"filing_status": "single"}, []byte("sig"))
	_, _, err := NewAssembler(nil, nil).Submit(context.Background(), "t1", draft, def)
	if _, ok := errors.AsType[*types.SubmissionFailedError](err); !ok {
		t.Fatalf("err=%v", err)
	}
}

func TestSession_SpecificFormFlow(t *testing.T) {
	rec := &recordingSubmitter{}
	m := newManager(t, rec)
	ctx := context.Background()

	s, err := m.Open(ctx, "t1", "onb-ca", OpenOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if s.Mode() != ModeForm || s.Definition().FormID != "CA-DE4" {
		t.Fatalf("mode=%s form=%s", s.Mode(), s.Definition().FormID)
	}
	view := s.View()
	if view.StateCode != "CA" || view.Values["filing_status"] != "single" || view.Confirmation != "2026-10-19" {
		t.Fatalf("view=%+v", view)
	}

	if err := s.Apply(FieldEdit{Field: "allow_self", Value: 1}, FieldEdit{Field: "allow_dependents", Value: "2"}); err != nil {
		t.Fatalf("err=%v", err)
	}
	if got := s.Totals().Int("worksheetATotal"); got != 3 {
		t.Fatalf("worksheetATotal=%d", got)
	}
	if err := s.Apply(FieldEdit{Field: "allow_dependents", Value: "5"}, FieldEdit{Field: "bogus", Value: 1}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("err=%v", err)
	}
	if got := s.Totals().Int("worksheetATotal"); got != 3 {
		t.Fatalf("partial edit applied: %d", got)
	}

	if _, err := s.Submit(ctx); !errors.Is(err, types.ErrMissingSignature) {
		t.Fatalf("err=%v", err)
	}
	if s.Status() != StatusOpen || m.Len() != 1 {
		t.Fatalf("status=%s len=%d", s.Status(), m.Len())
	}

	if err := s.AttachSignature(signatureStub("png")); err != nil {
		t.Fatalf("err=%v", err)
	}
	result, err := s.Submit(ctx)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if result.RecordID != "rec-1" || s.Status() != StatusSubmitted {
		t.Fatalf("result=%+v status=%s", result, s.Status())
	}
	if m.Len() != 0 {
		t.Fatalf("len=%d", m.Len())
	}
	if _, err := m.Get(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err=%v", err)
	}
	if err := s.Apply(FieldEdit{Field: "allow_self", Value: true}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("err=%v", err)
	}

	if len(rec.payloads) != 1 {
		t.Fatalf("payloads=%d", len(rec.payloads))
	}
	p := rec.payloads[0]
	if p.Identity.OnboardingID != "onb-ca" || p.ConfirmationDate != "2026-10-19" || string(p.SignatureImage) != "png" {
		t.Fatalf("payload=%+v", p)
	}
}

func TestSession_EmptySignatureClears(t *testing.T) {
	m := newManager(t, &recordingSubmitter{})
	s, err := m.Open(context.Background(), "t1", "onb-ca", OpenOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	_ = s.AttachSignature(signatureStub("png"))
	_ = s.AttachSignature(signatureStub(nil))
	if s.View().HasSignature {
		t.Fatal("signature not cleared")
	}
	_ = s.Cancel()
}

func TestSession_FederalEquivalentChoice(t *testing.T) {
	m := newManager(t, &recordingSubmitter{})
	ctx := context.Background()
	if _, err := m.Open(ctx, "t1", "onb-CO", OpenOptions{}); !errors.Is(err, ErrFederalChoiceRequired) {
		t.Fatalf("err=%v", err)
	}
	s, err := m.Open(ctx, "t1", "onb-CO", OpenOptions{UseFederalEquivalent: true})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	v := s.View()
	if v.FormID != forms.FederalEquivalentFormID || v.StateCode != "CO" || v.Disposition.Kind != types.DispositionFederalEquivalent {
		t.Fatalf("view=%+v", v)
	}
	_ = s.Cancel()
}

func TestSession_NoTaxConfirmation(t *testing.T) {
	rec := &recordingSubmitter{}
	m := newManager(t, rec)
	ctx := context.Background()

	s, err := m.Open(ctx, "t1", "onb-TX", OpenOptions{})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if s.Mode() != ModeExemption {
		t.Fatalf("mode=%s", s.Mode())
	}
	if err := s.Apply(FieldEdit{Field: "exempt", Value: false}); !errors.Is(err, ErrWrongMode) {
		t.Fatalf("err=%v", err)
	}
	if _, err := s.Submit(ctx); !errors.Is(err, ErrWrongMode) {
		t.Fatalf("err=%v", err)
	}
	if _, err := s.ConfirmExempt(ctx); !errors.Is(err, types.ErrMissingSignature) {
		t.Fatalf("err=%v", err)
	}
	_ = s.AttachSignature(signatureStub("png"))
	if _, err := s.ConfirmExempt(ctx); err != nil {
		t.Fatalf("err=%v", err)
	}

	p := rec.payloads[0]
	if !p.Exempt || p.StateCode != "TX" || p.Totals.Len() != 0 {
		t.Fatalf("payload=%+v", p)
	}
	if diff := cmp.Diff(types.RawValues{"exempt": true}, p.Values); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestSession_UnsupportedState(t *testing.T) {
	m := newManager(t, &recordingSubmitter{})
	if _, err := m.Open(context.Background(), "t1", "onb-ZZ", OpenOptions{}); !errors.Is(err, types.ErrUnsupportedState) {
		t.Fatalf("err=%v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("len=%d", m.Len())
	}
}

func TestSession_IdentityError(t *testing.T) {
	m := newManager(t, &recordingSubmitter{})
	if _, err := m.Open(context.Background(), "t1", "missing", OpenOptions{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSession_FailedSubmitKeepsDraft(t *testing.T) {
	calls := 0
	m := newManager(t, submitterFunc(func(context.Context, string, types.SubmissionPayload) (types.SubmissionResult, error) {
		calls++
		if calls == 1 {
			return types.SubmissionResult{}, errors.New("gateway timeout")
		}
		return types.SubmissionResult{RecordID: "rec-2"}, nil
	}))
	ctx := context.Background()
	s, _ := m.Open(ctx, "t1", "onb-ca", OpenOptions{})
	_ = s.Apply(FieldEdit{Field: "allow_self", Value: true})
	_ = s.AttachSignature(signatureStub("png"))

	before := s.View()
	if _, err := s.Submit(ctx); err == nil || err.Error() != "gateway timeout" {
		t.Fatalf("err=%v", err)
	}
	after := s.View()
	if s.Status() != StatusOpen || !after.HasSignature {
		t.Fatalf("status=%s view=%+v", s.Status(), after)
	}
	if diff := cmp.Diff(before.Values, after.Values); diff != "" {
		t.Fatalf("draft changed (-before +after):\n%s", diff)
	}

	result, err := s.Submit(ctx)
	if err != nil || result.RecordID != "rec-2" {
		t.Fatalf("result=%+v err=%v", result, err)
	}
}

func TestSession_CancelDuringSubmit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	m := newManager(t, submitterFunc(func(context.Context, string, types.SubmissionPayload) (types.SubmissionResult, error) {
		close(entered)
		<-release
		return types.SubmissionResult{RecordID: "late"}, nil
	}))
	ctx := context.Background()
	s, _ := m.Open(ctx, "t1", "onb-ca", OpenOptions{})
	_ = s.AttachSignature(signatureStub("png"))

	type outcome struct {
		result types.SubmissionResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := s.Submit(ctx)
		done <- outcome{result, err}
	}()

	<-entered
	if _, err := s.Submit(ctx); !errors.Is(err, ErrSubmitInProgress) {
		t.Fatalf("err=%v", err)
	}
	if err := s.Cancel(); err != nil {
		t.Fatalf("err=%v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("len=%d", m.Len())
	}
	close(release)

	got := <-done
	if !errors.Is(got.err, ErrSessionClosed) || got.result.RecordID != "" {
		t.Fatalf("outcome=%+v", got)
	}
	if s.Status() != StatusCancelled || s.View().Result != nil {
		t.Fatalf("status=%s", s.Status())
	}
}

func TestSession_Cancel(t *testing.T) {
	m := newManager(t, &recordingSubmitter{})
	s, _ := m.Open(context.Background(), "t1", "onb-ca", OpenOptions{})
	if err := s.Cancel(); err != nil {
		t.Fatalf("err=%v", err)
	}
	if err := s.Cancel(); err != nil {
		t.Fatalf("second cancel err=%v", err)
	}
	if len(s.View().Values) != 0 {
		t.Fatal("draft not discarded")
	}
	if err := s.AttachSignature(signatureStub("png")); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("err=%v", err)
	}
}

func TestSession_IndependentDrafts(t *testing.T) {
	m := newManager(t, &recordingSubmitter{})
	ctx := context.Background()
	a, _ := m.Open(ctx, "t1", "onb-ca", OpenOptions{})
	b, _ := m.Open(ctx, "t1", "onb-ca", OpenOptions{})
	if a.ID() == b.ID() {
		t.Fatal("duplicate session ids")
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _ = a.Apply(FieldEdit{Field: "allow_dependents", Value: 4}) }()
		go func() { defer wg.Done(); _ = b.Apply(FieldEdit{Field: "allow_dependents", Value: 1}) }()
	}
	wg.Wait()

	if a.Totals().Int("worksheetATotal") != 4 || b.Totals().Int("worksheetATotal") != 1 {
		t.Fatalf("a=%v b=%v", a.Totals(), b.Totals())
	}
	_ = a.Cancel()
	_ = b.Cancel()
}
