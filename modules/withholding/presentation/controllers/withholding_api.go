package controllers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/classify"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/forms"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/services"
	"github.com/jacksonlee411/onboarding-withholding/pkg/httperr"
	"go.uber.org/zap"
)

type TenantIDGetter func(ctx context.Context) (tenantID string, ok bool)

// DefaultMaxBodyBytes bounds request bodies when MaxBodyBytes is unset. It
// leaves room for a base64 signature raster.
const DefaultMaxBodyBytes int64 = 1 << 20

type WithholdingController struct {
	TenantID     TenantIDGetter
	Sessions     *services.SessionManager
	Classifier   classify.Classifier
	Logger       *zap.Logger
	MaxBodyBytes int64
}

type computeAPIRequest struct {
	State                string          `json:"state"`
	Values               types.RawValues `json:"values"`
	UseFederalEquivalent bool            `json:"use_federal_equivalent"`
}

type openSessionAPIRequest struct {
	OnboardingID         string `json:"onboarding_id"`
	UseFederalEquivalent bool   `json:"use_federal_equivalent"`
}

type sessionAPIRequest struct {
	SessionID   string               `json:"session_id"`
	Edits       []services.FieldEdit `json:"edits"`
	ImageBase64 string               `json:"image_base64"`
}

type stateAPIItem struct {
	State  types.StateCode `json:"state"`
	FormID string          `json:"form_id"`
	Title  string          `json:"title"`
}

// rasterSignature adapts an uploaded image to the signature capture port.
type rasterSignature []byte

func (s rasterSignature) RasterImage() []byte { return s }

func (s rasterSignature) IsEmpty() bool { return len(s) == 0 }

func (c WithholdingController) HandleDispositionAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	raw := r.URL.Query().Get("state")
	writeJSON(w, http.StatusOK, map[string]any{
		"state":       types.NormalizeStateCode(raw),
		"disposition": c.Classifier.Classify(raw),
	})
}

func (c WithholdingController) HandleStatesAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	items := make([]stateAPIItem, 0)
	for _, state := range forms.States() {
		def, ok := forms.Lookup(string(state))
		if !ok {
			continue
		}
		items = append(items, stateAPIItem{State: state, FormID: def.FormID, Title: def.Title})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"forms":              items,
		"federal_equivalent": classify.FederalEquivalentStates,
		"no_tax":             classify.NoTaxStates,
	})
}

// HandleFormAPI returns the definition a session for the state would use. The
// federal certificate is returned for federal-equivalent states.
func (c WithholdingController) HandleFormAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	raw := strings.TrimSpace(r.URL.Query().Get("state"))
	if raw == "" {
		writeError(w, r, http.StatusBadRequest, "missing_state", "state is required")
		return
	}
	d := c.Classifier.Classify(raw)
	var def types.Definition
	switch d.Kind {
	case types.DispositionSpecificForm:
		var ok bool
		if def, ok = forms.Lookup(raw); !ok {
			writeError(w, r, http.StatusUnprocessableEntity, "withholding_state_unsupported", "state not supported")
			return
		}
	case types.DispositionFederalEquivalent:
		def = forms.FederalEquivalent(raw)
	case types.DispositionNoTaxRequired:
		def = forms.NoTaxExemption(raw)
	default:
		writeError(w, r, http.StatusUnprocessableEntity, "withholding_state_unsupported", "state not supported")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"disposition": d,
		"form":        def,
	})
}

func (c WithholdingController) HandleComputeAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var req computeAPIRequest
	if !c.readBody(w, r, &req) {
		return
	}
	preview, err := services.Compute(c.Classifier, req.State, req.Values, services.PreviewOptions{
		UseFederalEquivalent: req.UseFederalEquivalent,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (c WithholdingController) HandleOpenSessionAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	tenantID, ok := c.TenantID(r.Context())
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "tenant_missing", "tenant missing")
		return
	}
	var req openSessionAPIRequest
	if !c.readBody(w, r, &req) {
		return
	}
	req.OnboardingID = strings.TrimSpace(req.OnboardingID)
	if req.OnboardingID == "" {
		writeError(w, r, http.StatusBadRequest, "missing_onboarding_id", "onboarding_id is required")
		return
	}
	s, err := c.Sessions.Open(r.Context(), tenantID, req.OnboardingID, services.OpenOptions{
		UseFederalEquivalent: req.UseFederalEquivalent,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session": s.View(),
		"form":    s.Definition(),
	})
}

func (c WithholdingController) HandleEditSessionAPI(w http.ResponseWriter, r *http.Request) {
	c.withSession(w, r, func(s *services.Session, req sessionAPIRequest) {
		if len(req.Edits) == 0 {
			writeError(w, r, http.StatusBadRequest, "missing_edits", "edits are required")
			return
		}
		if err := s.Apply(req.Edits...); err != nil {
			c.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session": s.View()})
	})
}

func (c WithholdingController) HandleSignSessionAPI(w http.ResponseWriter, r *http.Request) {
	c.withSession(w, r, func(s *services.Session, req sessionAPIRequest) {
		img, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.ImageBase64))
		if err != nil {
			c.writeServiceError(w, r, httperr.NewBadRequestf("invalid image_base64: %v", err))
			return
		}
		if err := s.AttachSignature(rasterSignature(img)); err != nil {
			c.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session": s.View()})
	})
}

func (c WithholdingController) HandleSubmitSessionAPI(w http.ResponseWriter, r *http.Request) {
	c.withSession(w, r, func(s *services.Session, _ sessionAPIRequest) {
		result, err := s.Submit(r.Context())
		if err != nil {
			c.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session_id": s.ID(), "result": result})
	})
}

func (c WithholdingController) HandleConfirmExemptAPI(w http.ResponseWriter, r *http.Request) {
	c.withSession(w, r, func(s *services.Session, _ sessionAPIRequest) {
		result, err := s.ConfirmExempt(r.Context())
		if err != nil {
			c.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session_id": s.ID(), "result": result})
	})
}

func (c WithholdingController) HandleCancelSessionAPI(w http.ResponseWriter, r *http.Request) {
	c.withSession(w, r, func(s *services.Session, _ sessionAPIRequest) {
		if err := s.Cancel(); err != nil {
			c.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"session_id": s.ID(), "status": s.Status()})
	})
}

// HandleSessionAPI returns the current view of a session.
func (c WithholdingController) HandleSessionAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	s, ok := c.lookupSession(w, r, r.URL.Query().Get("session_id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": s.View()})
}

func (c WithholdingController) withSession(w http.ResponseWriter, r *http.Request, fn func(*services.Session, sessionAPIRequest)) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var req sessionAPIRequest
	if !c.readBody(w, r, &req) {
		return
	}
	s, ok := c.lookupSession(w, r, req.SessionID)
	if !ok {
		return
	}
	fn(s, req)
}

// lookupSession hides sessions of other tenants behind the not-found answer.
func (c WithholdingController) lookupSession(w http.ResponseWriter, r *http.Request, id string) (*services.Session, bool) {
	tenantID, ok := c.TenantID(r.Context())
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "tenant_missing", "tenant missing")
		return nil, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "missing_session_id", "session_id is required")
		return nil, false
	}
	s, err := c.Sessions.Get(id)
	if err == nil && s.TenantID() != tenantID {
		err = services.ErrSessionNotFound
	}
	if err != nil {
		c.writeServiceError(w, r, err)
		return nil, false
	}
	return s, true
}

func (c WithholdingController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if field, ok := types.IsMissingRequiredField(err); ok {
		writeFieldError(w, r, http.StatusUnprocessableEntity, "withholding_field_required", "required field missing: "+field, field)
		return
	}
	if failed, ok := errors.AsType[*types.SubmissionFailedError](err); ok {
		writeError(w, r, http.StatusBadGateway, "withholding_submission_failed", failed.Message)
		return
	}

	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, types.ErrUnsupportedState):
		status, code = http.StatusUnprocessableEntity, "withholding_state_unsupported"
	case errors.Is(err, types.ErrMissingSignature):
		status, code = http.StatusUnprocessableEntity, "withholding_signature_missing"
	case errors.Is(err, types.ErrOnboardingNotFound):
		status, code = http.StatusNotFound, "withholding_onboarding_not_found"
	case errors.Is(err, services.ErrSessionNotFound):
		status, code = http.StatusNotFound, "withholding_session_not_found"
	case errors.Is(err, services.ErrFederalChoiceRequired):
		status, code = http.StatusConflict, "withholding_federal_choice_required"
	case errors.Is(err, services.ErrSessionClosed):
		status, code = http.StatusConflict, "withholding_session_closed"
	case errors.Is(err, services.ErrWrongMode):
		status, code = http.StatusConflict, "withholding_wrong_mode"
	case errors.Is(err, services.ErrSubmitInProgress):
		status, code = http.StatusConflict, "withholding_submit_in_progress"
	case errors.Is(err, services.ErrUnknownField):
		status, code = http.StatusBadRequest, "withholding_unknown_field"
	case httperr.IsBadRequest(err):
		status, code = http.StatusBadRequest, "invalid_request"
	}
	if status == http.StatusInternalServerError {
		if c.Logger != nil {
			c.Logger.Error("withholding request failed", zap.String("path", r.URL.Path), zap.Error(err))
		}
		writeError(w, r, status, code, "internal error")
		return
	}
	writeError(w, r, status, code, err.Error())
}

// readBody decodes the JSON body into dst, answering 413 or 400 itself when
// it cannot.
func (c WithholdingController) readBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	err := decodeBody(http.MaxBytesReader(w, r.Body, limit), dst)
	if err == nil {
		return true
	}
	if _, ok := errors.AsType[*http.MaxBytesError](err); ok {
		writeError(w, r, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
		return false
	}
	writeError(w, r, http.StatusBadRequest, "bad_json", "bad json")
	return false
}

func decodeBody(body io.Reader, dst any) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
