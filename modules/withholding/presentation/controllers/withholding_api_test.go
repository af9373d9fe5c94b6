package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jacksonlee411/onboarding-withholding/internal/routing"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/classify"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/infrastructure/persistence"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/services"
	"github.com/jacksonlee411/onboarding-withholding/pkg/httperr"
)

var fixedNow = time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)

type tenantKey struct{}

func tenantFromContext(ctx context.Context) (string, bool) {
	v, _ := ctx.Value(tenantKey{}).(string)
	return v, v != ""
}

func newController(t *testing.T) (WithholdingController, *persistence.MemoryStore) {
	t.Helper()
	store := persistence.NewMemoryStore(func() time.Time { return fixedNow })
	for _, state := range []string{"CA", "CO", "TX", "ZZ"} {
		store.PutIdentity("t1", types.OnboardingIdentity{
			OnboardingID: "onb-" + state,
			FirstName:    "Ada",
			LastName:     "Lovelace",
			SSN:          "123-45-6789",
			AddressLine1: "1 Main St",
			City:         "Springfield",
			State:        "CA",
			Zip:          "90210",
			WorkState:    state,
		})
	}
	m := services.NewSessionManager(store, services.NewAssembler(store, nil), services.WithClock(func() time.Time { return fixedNow }))
	return WithholdingController{
		TenantID:   tenantFromContext,
		Sessions:   m,
		Classifier: classify.Default(),
	}, store
}

func do(t *testing.T, h http.HandlerFunc, tenant string, method string, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if tenant != "" {
		req = req.WithContext(context.WithValue(req.Context(), tenantKey{}, tenant))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("body=%q err=%v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func openSession(t *testing.T, c WithholdingController, onboardingID string) string {
	t.Helper()
	rec, out := do(t, c.HandleOpenSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions", map[string]any{"onboarding_id": onboardingID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	session, _ := out["session"].(map[string]any)
	id, _ := session["session_id"].(string)
	if id == "" {
		t.Fatalf("body=%s", rec.Body.String())
	}
	return id
}

func TestDispositionAPI(t *testing.T) {
	c, _ := newController(t)
	cases := []struct {
		state string
		kind  string
	}{
		{state: "ca", kind: "specific_form"},
		{state: "CO", kind: "federal_equivalent"},
		{state: "TX", kind: "no_tax_required"},
		{state: "ZZ", kind: "unsupported"},
		{state: "", kind: "unsupported"},
	}
	for _, tc := range cases {
		rec, out := do(t, c.HandleDispositionAPI, "t1", http.MethodGet, "/withholding/api/dispositions?state="+tc.state, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("state=%q status=%d", tc.state, rec.Code)
		}
		d, _ := out["disposition"].(map[string]any)
		if d["kind"] != tc.kind {
			t.Fatalf("state=%q got=%v want=%v", tc.state, d["kind"], tc.kind)
		}
	}

	rec, _ := do(t, c.HandleDispositionAPI, "t1", http.MethodPost, "/withholding/api/dispositions", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestStatesAPI(t *testing.T) {
	c, _ := newController(t)
	rec, out := do(t, c.HandleStatesAPI, "t1", http.MethodGet, "/withholding/api/states", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	items, _ := out["forms"].([]any)
	if len(items) < 35 {
		t.Fatalf("forms=%d", len(items))
	}
	if _, ok := out["no_tax"].([]any); !ok {
		t.Fatalf("body=%s", rec.Body.String())
	}
}

func TestFormAPI(t *testing.T) {
	c, _ := newController(t)
	cases := []struct {
		state  string
		status int
		formID string
	}{
		{state: "CA", status: http.StatusOK, formID: "CA-DE4"},
		{state: "co", status: http.StatusOK, formID: "FED-W4"},
		{state: "TX", status: http.StatusOK, formID: "NO-TAX-EXEMPT"},
		{state: "ZZ", status: http.StatusUnprocessableEntity},
		{state: "", status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec, out := do(t, c.HandleFormAPI, "t1", http.MethodGet, "/withholding/api/forms?state="+tc.state, nil)
		if rec.Code != tc.status {
			t.Fatalf("state=%q status=%d body=%s", tc.state, rec.Code, rec.Body.String())
		}
		if tc.formID == "" {
			continue
		}
		form, _ := out["form"].(map[string]any)
		if form["form_id"] != tc.formID {
			t.Fatalf("state=%q form_id=%v", tc.state, form["form_id"])
		}
	}
}

func TestComputeAPI(t *testing.T) {
	c, _ := newController(t)
	rec, out := do(t, c.HandleComputeAPI, "", http.MethodPost, "/withholding/api/forms:compute", map[string]any{
		"state":  "CA",
		"values": map[string]any{"filing_status": "single", "allow_self": true, "allow_dependents": 2},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	totals, _ := out["derived_totals"].(map[string]any)
	if totals["worksheetATotal"] != float64(3) {
		t.Fatalf("totals=%v", totals)
	}

	rec, out = do(t, c.HandleComputeAPI, "", http.MethodPost, "/withholding/api/forms:compute", map[string]any{"state": "CO"})
	if rec.Code != http.StatusConflict || out["code"] != "withholding_federal_choice_required" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, out = do(t, c.HandleComputeAPI, "", http.MethodPost, "/withholding/api/forms:compute", map[string]any{
		"state":  "CA",
		"values": map[string]any{"bogus": 1},
	})
	if rec.Code != http.StatusBadRequest || out["code"] != "withholding_unknown_field" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, out = do(t, c.HandleComputeAPI, "", http.MethodPost, "/withholding/api/forms:compute", "{")
	if rec.Code != http.StatusBadRequest || out["code"] != "bad_json" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSessionAPI_SpecificFormFlow(t *testing.T) {
	c, store := newController(t)
	id := openSession(t, c, "onb-CA")

	rec, out := do(t, c.HandleSubmitSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:submit", map[string]any{"session_id": id})
	if rec.Code != http.StatusUnprocessableEntity || out["code"] != "withholding_signature_missing" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, c.HandleSignSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:sign", map[string]any{
		"session_id":   id,
		"image_base64": base64.StdEncoding.EncodeToString([]byte("png")),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, c.HandleEditSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:edit", map[string]any{
		"session_id": id,
		"edits":      []map[string]any{{"field": "filing_status", "value": nil}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec, out = do(t, c.HandleSubmitSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:submit", map[string]any{"session_id": id})
	if rec.Code != http.StatusUnprocessableEntity || out["code"] != "withholding_field_required" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if meta, _ := out["meta"].(map[string]any); meta["field"] != "filing_status" {
		t.Fatalf("meta=%v", out["meta"])
	}

	rec, out = do(t, c.HandleEditSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:edit", map[string]any{
		"session_id": id,
		"edits": []map[string]any{
			{"field": "filing_status", "value": "single"},
			{"field": "allow_dependents", "value": 2},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	session, _ := out["session"].(map[string]any)
	if session["has_signature"] != true {
		t.Fatalf("session=%v", session)
	}

	rec, out = do(t, c.HandleSubmitSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:submit", map[string]any{"session_id": id})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	result, _ := out["result"].(map[string]any)
	if recordID, _ := result["record_id"].(string); recordID == "" {
		t.Fatalf("body=%s", rec.Body.String())
	}
	if n := len(store.Submissions()); n != 1 {
		t.Fatalf("submissions=%d", n)
	}

	rec, out = do(t, c.HandleSessionAPI, "t1", http.MethodGet, "/withholding/api/sessions?session_id="+id, nil)
	if rec.Code != http.StatusNotFound || out["code"] != "withholding_session_not_found" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSessionAPI_NoTaxConfirmation(t *testing.T) {
	c, store := newController(t)
	id := openSession(t, c, "onb-TX")

	rec, out := do(t, c.HandleEditSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:edit", map[string]any{
		"session_id": id,
		"edits":      []map[string]any{{"field": "exempt", "value": false}},
	})
	if rec.Code != http.StatusConflict || out["code"] != "withholding_wrong_mode" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	do(t, c.HandleSignSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:sign", map[string]any{
		"session_id":   id,
		"image_base64": base64.StdEncoding.EncodeToString([]byte("png")),
	})
	rec, _ = do(t, c.HandleConfirmExemptAPI, "t1", http.MethodPost, "/withholding/api/sessions:confirm-exempt", map[string]any{"session_id": id})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	subs := store.Submissions()
	if len(subs) != 1 || !subs[0].Payload.Exempt {
		t.Fatalf("submissions=%+v", subs)
	}
}

func TestSessionAPI_OpenErrors(t *testing.T) {
	c, _ := newController(t)
	cases := []struct {
		name   string
		tenant string
		body   any
		status int
		code   string
	}{
		{name: "federal choice", tenant: "t1", body: map[string]any{"onboarding_id": "onb-CO"}, status: http.StatusConflict, code: "withholding_federal_choice_required"},
		{name: "unsupported", tenant: "t1", body: map[string]any{"onboarding_id": "onb-ZZ"}, status: http.StatusUnprocessableEntity, code: "withholding_state_unsupported"},
		{name: "unknown onboarding", tenant: "t1", body: map[string]any{"onboarding_id": "onb-XX"}, status: http.StatusNotFound, code: "withholding_onboarding_not_found"},
		{name: "other tenant", tenant: "t2", body: map[string]any{"onboarding_id": "onb-CA"}, status: http.StatusNotFound, code: "withholding_onboarding_not_found"},
		{name: "missing id", tenant: "t1", body: map[string]any{}, status: http.StatusBadRequest, code: "missing_onboarding_id"},
		{name: "no tenant", tenant: "", body: map[string]any{"onboarding_id": "onb-CA"}, status: http.StatusInternalServerError, code: "tenant_missing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, out := do(t, c.HandleOpenSessionAPI, tc.tenant, http.MethodPost, "/withholding/api/sessions", tc.body)
			if rec.Code != tc.status || out["code"] != tc.code {
				t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
			}
		})
	}

	rec, _ := do(t, c.HandleOpenSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions", map[string]any{
		"onboarding_id":          "onb-CO",
		"use_federal_equivalent": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSessionAPI_TenantIsolationAndCancel(t *testing.T) {
	c, _ := newController(t)
	id := openSession(t, c, "onb-CA")

	rec, _ := do(t, c.HandleCancelSessionAPI, "t2", http.MethodPost, "/withholding/api/sessions:cancel", map[string]any{"session_id": id})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}

	rec, out := do(t, c.HandleCancelSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:cancel", map[string]any{"session_id": id})
	if rec.Code != http.StatusOK || out["status"] != "cancelled" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if c.Sessions.Len() != 0 {
		t.Fatalf("sessions=%d", c.Sessions.Len())
	}

	rec, out = do(t, c.HandleSignSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:sign", map[string]any{"session_id": ""})
	if rec.Code != http.StatusBadRequest || out["code"] != "missing_session_id" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestSessionAPI_BadSignature(t *testing.T) {
	c, _ := newController(t)
	id := openSession(t, c, "onb-CA")
	rec, out := do(t, c.HandleSignSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:sign", map[string]any{
		"session_id":   id,
		"image_base64": "!!not base64!!",
	})
	if rec.Code != http.StatusBadRequest || out["code"] != "invalid_request" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestWriteServiceError(t *testing.T) {
	c := WithholdingController{}
	cases := []struct {
		err     error
		status  int
		code    string
		message string
	}{
		{err: &types.SubmissionFailedError{Message: "duplicate ssn"}, status: http.StatusBadGateway, code: "withholding_submission_failed", message: "duplicate ssn"},
		{err: services.ErrSubmitInProgress, status: http.StatusConflict, code: "withholding_submit_in_progress"},
		{err: services.ErrSessionClosed, status: http.StatusConflict, code: "withholding_session_closed"},
		{err: httperr.NewBadRequest("bad"), status: http.StatusBadRequest, code: "invalid_request", message: "bad"},
		{err: errors.New("db down"), status: http.StatusInternalServerError, code: "internal_error", message: "internal error"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/withholding/api/sessions:submit", nil)
		req.Header.Set("traceparent", "00-4BF92F3577B34DA6A3CE929D0E0E4736-00f067aa0ba902b7-01")
		rec := httptest.NewRecorder()
		c.writeServiceError(rec, req, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("err=%v status=%d", tc.err, rec.Code)
		}
		var env routing.ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatal(err)
		}
		if env.Code != tc.code || env.TraceID != "4bf92f3577b34da6a3ce929d0e0e4736" {
			t.Fatalf("env=%+v", env)
		}
		if tc.message != "" && env.Message != tc.message {
			t.Fatalf("message=%q", env.Message)
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
			t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
		}
	}
}

func TestSignSessionAPI_BodyLimit(t *testing.T) {
	c, _ := newController(t)
	c.MaxBodyBytes = 256
	id := openSession(t, c, "onb-CA")

	big := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xff}, 1024))
	rec, out := do(t, c.HandleSignSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:sign", map[string]any{
		"session_id":   id,
		"image_base64": big,
	})
	if rec.Code != http.StatusRequestEntityTooLarge || out["code"] != "request_too_large" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, _ = do(t, c.HandleSignSessionAPI, "t1", http.MethodPost, "/withholding/api/sessions:sign", map[string]any{
		"session_id":   id,
		"image_base64": base64.StdEncoding.EncodeToString([]byte("png")),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, out = do(t, c.HandleComputeAPI, "t1", http.MethodPost, "/withholding/api/forms:compute", "{not json")
	if rec.Code != http.StatusBadRequest || out["code"] != "bad_json" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}
