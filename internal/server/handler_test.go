package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/infrastructure/persistence"
)

const testTenantID = "00000000-0000-0000-0000-000000000001"

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T, environment string) (http.Handler, *persistence.MemoryStore) {
	t.Helper()
	return newTestHandlerWith(t, Config{Environment: environment, SubmitTimeout: time.Second})
}

func newTestHandlerWith(t *testing.T, cfg Config) (http.Handler, *persistence.MemoryStore) {
	t.Helper()
	mem := persistence.NewMemoryStore(func() time.Time { return fixedNow })
	for _, state := range []string{"CA", "TX"} {
		mem.PutIdentity(testTenantID, types.OnboardingIdentity{
			OnboardingID: "onb-" + state,
			FirstName:    "Ada",
			LastName:     "Lovelace",
			SSN:          "123-45-6789",
			AddressLine1: "1 Main St",
			City:         "Springfield",
			State:        state,
			Zip:          "90210",
			WorkState:    state,
		})
	}
	h, _, err := NewHandler(context.Background(), cfg, HandlerOptions{
		TenancyResolver: newStaticTenancyResolver(map[string]TenantConfig{
			"hr.example.com": {ID: testTenantID, Name: "Example"},
		}),
		Identities: mem,
		Submitter:  mem,
		Now:        func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	return h, mem
}

func call(t *testing.T, h http.Handler, role string, method string, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, "http://hr.example.com"+path, &buf)
	if role != "" {
		req.Header.Set("X-Actor-Role", role)
		req.Header.Set("X-Actor-ID", "actor-1")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestHandler_Health(t *testing.T) {
	h, _ := newTestHandler(t, EnvironmentProduction)
	req := httptest.NewRequest(http.MethodGet, "http://unknown.local/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestHandler_TenantAndAuthz(t *testing.T) {
	h, _ := newTestHandler(t, EnvironmentProduction)

	req := httptest.NewRequest(http.MethodGet, "http://unknown.local/withholding/api/states", nil)
	req.Header.Set("X-Actor-Role", "hr-admin")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d", rec.Code)
	}

	cases := []struct {
		role   string
		method string
		path   string
		body   any
		status int
	}{
		{role: "", method: http.MethodGet, path: "/withholding/api/states", status: http.StatusForbidden},
		{role: "auditor", method: http.MethodGet, path: "/withholding/api/states", status: http.StatusOK},
		{role: "auditor", method: http.MethodPost, path: "/withholding/api/forms:compute", body: map[string]any{"state": "CA"}, status: http.StatusOK},
		{role: "auditor", method: http.MethodPost, path: "/withholding/api/sessions", body: map[string]any{"onboarding_id": "onb-CA"}, status: http.StatusForbidden},
		{role: "employee", method: http.MethodPost, path: "/withholding/api/sessions", body: map[string]any{"onboarding_id": "onb-CA"}, status: http.StatusCreated},
		{role: "employee", method: http.MethodDelete, path: "/withholding/api/sessions", status: http.StatusMethodNotAllowed},
		{role: "employee", method: http.MethodGet, path: "/withholding/api/nope", status: http.StatusNotFound},
	}
	for _, tc := range cases {
		rec, _ := call(t, h, tc.role, tc.method, tc.path, tc.body)
		if rec.Code != tc.status {
			t.Fatalf("role=%q %s %s status=%d body=%s", tc.role, tc.method, tc.path, rec.Code, rec.Body.String())
		}
	}
}

func openAndSign(t *testing.T, h http.Handler, onboardingID string) string {
	t.Helper()
	rec, out := call(t, h, "employee", http.MethodPost, "/withholding/api/sessions", map[string]any{"onboarding_id": onboardingID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	session, _ := out["session"].(map[string]any)
	id, _ := session["session_id"].(string)
	rec, _ = call(t, h, "employee", http.MethodPost, "/withholding/api/sessions:sign", map[string]any{
		"session_id":   id,
		"image_base64": base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	return id
}

func TestHandler_SubmitPersists(t *testing.T) {
	h, mem := newTestHandler(t, EnvironmentProduction)
	id := openAndSign(t, h, "onb-CA")

	rec, _ := call(t, h, "employee", http.MethodPost, "/withholding/api/sessions:edit", map[string]any{
		"session_id": id,
		"edits":      []map[string]any{{"field": "allow_dependents", "value": 2}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec, out := call(t, h, "employee", http.MethodPost, "/withholding/api/sessions:submit", map[string]any{"session_id": id})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	result, _ := out["result"].(map[string]any)
	if result["dry_run"] == true {
		t.Fatalf("result=%v", result)
	}
	subs := mem.Submissions()
	if len(subs) != 1 || subs[0].TenantID != testTenantID || subs[0].Payload.FormID != "CA-DE4" {
		t.Fatalf("submissions=%+v", subs)
	}
}

func TestHandler_DemoEnvironmentIsDryRun(t *testing.T) {
	h, mem := newTestHandler(t, EnvironmentDemo)
	id := openAndSign(t, h, "onb-TX")

	rec, out := call(t, h, "employee", http.MethodPost, "/withholding/api/sessions:confirm-exempt", map[string]any{"session_id": id})
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	result, _ := out["result"].(map[string]any)
	if result["dry_run"] != true {
		t.Fatalf("result=%v", result)
	}
	if n := len(mem.Submissions()); n != 0 {
		t.Fatalf("submissions=%d", n)
	}
}

func TestHandler_MaxBodyBytes(t *testing.T) {
	h, _ := newTestHandlerWith(t, Config{Environment: EnvironmentProduction, SubmitTimeout: time.Second, MaxBodyBytes: 512})
	id := openAndSign(t, h, "onb-CA")

	rec, out := call(t, h, "employee", http.MethodPost, "/withholding/api/sessions:sign", map[string]any{
		"session_id":   id,
		"image_base64": base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x89}, 2048)),
	})
	if rec.Code != http.StatusRequestEntityTooLarge || out["code"] != "request_too_large" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestNewHandler_RequiresCollaborators(t *testing.T) {
	if _, _, err := NewHandler(context.Background(), Config{Environment: EnvironmentDemo}, HandlerOptions{}); err == nil {
		t.Fatal("expected error")
	}
}

type deadlineSubmitter struct {
	sawDeadline bool
}

func (d *deadlineSubmitter) Submit(ctx context.Context, _ string, _ types.SubmissionPayload) (types.SubmissionResult, error) {
	_, d.sawDeadline = ctx.Deadline()
	return types.SubmissionResult{}, errors.New("down")
}

func TestTimeoutSubmitter(t *testing.T) {
	next := &deadlineSubmitter{}
	s := timeoutSubmitter{next: next, timeout: time.Second}
	if _, err := s.Submit(context.Background(), testTenantID, types.SubmissionPayload{}); err == nil {
		t.Fatal("expected error")
	}
	if !next.sawDeadline {
		t.Fatal("expected deadline")
	}
}
