package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/classify"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/forms"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/ports"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/pkg/uuidv7"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound       = errors.New("withholding: session not found")
	ErrSessionClosed         = errors.New("withholding: session closed")
	ErrFederalChoiceRequired = errors.New("withholding: state accepts the federal form; choose it explicitly")
	ErrWrongMode             = errors.New("withholding: action not available for this form")
	ErrUnknownField          = errors.New("withholding: unknown field")
	ErrSubmitInProgress      = errors.New("withholding: submission already in progress")
)

type Mode string

const (
	// ModeForm sessions fill, compute and submit a certificate.
	ModeForm Mode = "form"
	// ModeExemption sessions only confirm that no withholding is required.
	ModeExemption Mode = "exemption"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusSubmitted Status = "submitted"
	StatusCancelled Status = "cancelled"
)

const dateLayout = "2006-01-02"

type OpenOptions struct {
	// UseFederalEquivalent accepts the federal certificate for states that
	// allow it in place of their own.
	UseFederalEquivalent bool
}

type FieldEdit struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

type Option func(*SessionManager)

func WithClock(now func() time.Time) Option {
	return func(m *SessionManager) { m.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *SessionManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithClassifier(c classify.Classifier) Option {
	return func(m *SessionManager) { m.classifier = c }
}

// SessionManager owns the open form sessions of one process.
type SessionManager struct {
	identities ports.IdentityReader
	assembler  Assembler
	classifier classify.Classifier
	now        func() time.Time
	logger     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager(identities ports.IdentityReader, assembler Assembler, opts ...Option) *SessionManager {
	m := &SessionManager{
		identities: identities,
		assembler:  assembler,
		classifier: classify.Default(),
		now:        time.Now,
		logger:     zap.NewNop(),
		sessions:   map[string]*Session{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open starts a session for the onboarding record's work state.
func (m *SessionManager) Open(ctx context.Context, tenantID string, onboardingID string, opts OpenOptions) (*Session, error) {
	identity, err := m.identities.ReadIdentity(ctx, tenantID, onboardingID)
	if err != nil {
		return nil, err
	}
	if identity.OnboardingID == "" {
		identity.OnboardingID = onboardingID
	}

	disposition, def, mode, err := resolve(m.classifier, identity.WorkState, opts.UseFederalEquivalent)
	if err != nil {
		return nil, err
	}
	state := def.StateCode

	now := m.now()
	id, err := uuidv7.Generator{Now: m.now}.NewString()
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:          id,
		tenantID:    tenantID,
		mode:        mode,
		disposition: disposition,
		def:         def,
		reads:       readSet(def),
		assembler:   m.assembler,
		logger:      m.logger.With(zap.String("session_id", id)),
		release:     m.release,
		status:      StatusOpen,
		draft: types.FormDraft{
			Identity:         identity,
			StateCode:        state,
			FormID:           def.FormID,
			Values:           types.RawValues{},
			ConfirmationDate: now.Format(dateLayout),
		},
	}
	if mode == ModeForm {
		s.draft.Values = def.Defaults()
	}
	s.recompute()

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	s.logger.Info("withholding session opened",
		zap.String("onboarding_id", identity.OnboardingID),
		zap.String("state", string(state)),
		zap.String("form_id", def.FormID),
		zap.String("disposition", string(disposition.Kind)),
	)
	return s, nil
}

func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) release(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func readSet(def types.Definition) map[string]bool {
	out := make(map[string]bool, len(def.Reads))
	for _, name := range def.Reads {
		out[name] = true
	}
	return out
}

// Session is one form-filling session. It is safe for concurrent use; the
// submission call runs without holding the session lock.
type Session struct {
	id          string
	tenantID    string
	mode        Mode
	disposition types.Disposition
	def         types.Definition
	reads       map[string]bool
	assembler   Assembler
	logger      *zap.Logger
	release     func(id string)

	mu         sync.Mutex
	status     Status
	submitting bool
	draft      types.FormDraft
	totals     types.DerivedTotals
	result     types.SubmissionResult
}

// View is a read-only snapshot of a session.
type View struct {
	ID             string                  `json:"session_id"`
	Mode           Mode                    `json:"mode"`
	Status         Status                  `json:"status"`
	Disposition    types.Disposition       `json:"disposition"`
	StateCode      types.StateCode         `json:"state"`
	FormID         string                  `json:"form_id"`
	Values         types.RawValues         `json:"values"`
	Totals         types.DerivedTotals     `json:"derived_totals"`
	ActiveSections []string                `json:"active_sections"`
	Required       []string                `json:"required"`
	Hidden         []string                `json:"hidden"`
	HasSignature   bool                    `json:"has_signature"`
	Confirmation   string                  `json:"confirmation_date"`
	Result         *types.SubmissionResult `json:"result,omitempty"`
}

func (s *Session) ID() string { return s.id }

func (s *Session) Mode() Mode { return s.mode }

func (s *Session) TenantID() string { return s.tenantID }

func (s *Session) Definition() types.Definition { return s.def.Clone() }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:           s.id,
		Mode:         s.mode,
		Status:       s.status,
		Disposition:  s.disposition,
		StateCode:    s.draft.StateCode,
		FormID:       s.def.FormID,
		Values:       s.draft.Values.Clone(),
		Totals:       s.totals,
		HasSignature: len(s.draft.SignatureImage) > 0,
		Confirmation: s.draft.ConfirmationDate,
	}
	if s.status == StatusSubmitted {
		result := s.result
		v.Result = &result
	}
	if s.status == StatusOpen && s.mode == ModeForm {
		for _, sec := range forms.ActiveSections(s.def, s.draft.Values) {
			v.ActiveSections = append(v.ActiveSections, sec.Name)
		}
		v.Required = forms.RequiredFields(s.def, s.draft.Values)
		v.Hidden = forms.HiddenFields(s.def, s.draft.Values)
	}
	return v
}

// Totals returns the totals computed after the most recent edit.
func (s *Session) Totals() types.DerivedTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// Apply applies edits in order. Nothing is applied if any edit names a field
// the form does not have. Totals are recomputed when an edit touches a field
// the worksheet reads.
func (s *Session) Apply(edits ...FieldEdit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.mode != ModeForm {
		return ErrWrongMode
	}
	for _, e := range edits {
		if _, ok := s.def.Field(e.Field); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, e.Field)
		}
	}

	dirty := false
	for _, e := range edits {
		if e.Value == nil {
			delete(s.draft.Values, e.Field)
		} else {
			s.draft.Values[e.Field] = e.Value
		}
		dirty = dirty || s.reads[e.Field]
	}
	if dirty {
		s.recompute()
	}
	return nil
}

// AttachSignature copies the capture's raster. An empty capture clears any
// previous signature.
func (s *Session) AttachSignature(capture ports.SignatureCapture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if capture == nil || capture.IsEmpty() {
		s.draft.SignatureImage = nil
		return nil
	}
	s.draft.SignatureImage = append([]byte(nil), capture.RasterImage()...)
	return nil
}

// Submit validates and submits the certificate. A failed submission keeps the
// draft so it can be retried.
func (s *Session) Submit(ctx context.Context) (types.SubmissionResult, error) {
	return s.submit(ctx, ModeForm, nil)
}

// ConfirmExempt submits the no-tax confirmation. It carries exempt=true and no
// worksheet values.
func (s *Session) ConfirmExempt(ctx context.Context) (types.SubmissionResult, error) {
	return s.submit(ctx, ModeExemption, types.RawValues{"exempt": true})
}

func (s *Session) submit(ctx context.Context, want Mode, values types.RawValues) (types.SubmissionResult, error) {
	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return types.SubmissionResult{}, err
	}
	if s.mode != want {
		s.mu.Unlock()
		return types.SubmissionResult{}, ErrWrongMode
	}
	if s.submitting {
		s.mu.Unlock()
		return types.SubmissionResult{}, ErrSubmitInProgress
	}
	if values != nil {
		s.draft.Values = values
	}
	draft := s.draft
	draft.Values = s.draft.Values.Clone()
	draft.SignatureImage = append([]byte(nil), s.draft.SignatureImage...)
	s.submitting = true
	s.mu.Unlock()

	payload, result, err := s.assembler.Submit(ctx, s.tenantID, draft, s.def)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if s.status != StatusOpen {
		s.logger.Info("withholding submission finished after session closed", zap.Bool("failed", err != nil))
		return types.SubmissionResult{}, ErrSessionClosed
	}
	if err != nil {
		return types.SubmissionResult{}, err
	}

	s.status = StatusSubmitted
	s.result = result
	s.totals = payload.Totals
	s.draft = types.FormDraft{}
	s.release(s.id)
	s.logger.Info("withholding submitted",
		zap.String("onboarding_id", payload.Identity.OnboardingID),
		zap.String("state", string(payload.StateCode)),
		zap.String("form_id", payload.FormID),
		zap.String("record_id", result.RecordID),
		zap.Bool("dry_run", result.DryRun),
	)
	return result, nil
}

// Cancel discards the draft. Cancelling twice is a no-op; cancelling a
// submitted session is an error.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.status {
	case StatusCancelled:
		return nil
	case StatusSubmitted:
		return ErrSessionClosed
	}
	s.status = StatusCancelled
	s.draft = types.FormDraft{}
	s.totals = types.NewDerivedTotals()
	s.release(s.id)
	s.logger.Info("withholding session cancelled", zap.Bool("submit_in_flight", s.submitting))
	return nil
}

func (s *Session) checkOpen() error {
	if s.status != StatusOpen {
		return ErrSessionClosed
	}
	return nil
}

func (s *Session) recompute() {
	if s.def.Compute == nil {
		s.totals = types.NewDerivedTotals()
		return
	}
	s.totals = s.def.Compute(s.draft.Values)
}
