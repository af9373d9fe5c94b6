package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jacksonlee411/onboarding-withholding/internal/routing"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/classify"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/ports"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/domain/types"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/infrastructure/policy"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/presentation/controllers"
	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/services"
	"go.uber.org/zap"
)

type HandlerOptions struct {
	Logger          *zap.Logger
	TenancyResolver TenancyResolver
	Identities      ports.IdentityReader
	Submitter       ports.Submitter
	// Gate defaults to the Rego submission policy for cfg.Environment.
	Gate       ports.SubmissionGate
	Authorizer authorizer
	Now        func() time.Time
}

// NewHandler wires the withholding API behind tenancy, principal and authz
// middleware. The returned SessionManager is the one the handler serves.
func NewHandler(ctx context.Context, cfg Config, opts HandlerOptions) (http.Handler, *services.SessionManager, error) {
	if opts.Identities == nil || opts.Submitter == nil {
		return nil, nil, errors.New("server: identities and submitter are required")
	}
	if opts.TenancyResolver == nil {
		return nil, nil, errors.New("server: missing tenancy resolver")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	allowlistPath, err := resolvePath(cfg.AllowlistPath, "config/routing/allowlist.yaml")
	if err != nil {
		return nil, nil, err
	}
	a, err := routing.LoadAllowlist(allowlistPath)
	if err != nil {
		return nil, nil, err
	}
	classifier, err := routing.NewClassifier(a, "server")
	if err != nil {
		return nil, nil, err
	}

	authorizer := opts.Authorizer
	if authorizer == nil {
		az, err := loadAuthorizer(cfg)
		if err != nil {
			return nil, nil, err
		}
		authorizer = az
	}

	gate := opts.Gate
	if gate == nil {
		source := policy.DefaultSubmissionPolicy
		if cfg.SubmissionPolicyPath != "" {
			b, err := os.ReadFile(cfg.SubmissionPolicyPath)
			if err != nil {
				return nil, nil, err
			}
			source = string(b)
		}
		g, err := policy.NewRegoGate(ctx, cfg.Environment, source)
		if err != nil {
			return nil, nil, err
		}
		gate = g
	}

	var submitter ports.Submitter = policy.NewGatedSubmitter(gate, opts.Submitter, now, logger)
	if cfg.SubmitTimeout > 0 {
		submitter = timeoutSubmitter{next: submitter, timeout: cfg.SubmitTimeout}
	}
	sessions := services.NewSessionManager(
		opts.Identities,
		services.NewAssembler(submitter, logger),
		services.WithClock(now),
		services.WithLogger(logger),
	)

	c := controllers.WithholdingController{
		TenantID:     scopedTenantID,
		Sessions:     sessions,
		Classifier:   classify.Default(),
		Logger:       logger,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}

	router := routing.NewRouter(classifier)
	router.OnPanic = func(r *http.Request, recovered any) {
		logger.Error("handler panic",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Any("recovered", recovered),
			zap.Stack("stack"),
		)
	}
	router.Handle(routing.RouteClassOps, http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}))
	router.Handle(routing.RouteClassOps, http.MethodGet, "/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}))

	api := routing.RouteClassInternalAPI
	router.Handle(api, http.MethodGet, "/withholding/api/dispositions", http.HandlerFunc(c.HandleDispositionAPI))
	router.Handle(api, http.MethodGet, "/withholding/api/states", http.HandlerFunc(c.HandleStatesAPI))
	router.Handle(api, http.MethodGet, "/withholding/api/forms", http.HandlerFunc(c.HandleFormAPI))
	router.Handle(api, http.MethodPost, "/withholding/api/forms:compute", http.HandlerFunc(c.HandleComputeAPI))
	router.Handle(api, http.MethodGet, "/withholding/api/sessions", http.HandlerFunc(c.HandleSessionAPI))
	router.Handle(api, http.MethodPost, "/withholding/api/sessions", http.HandlerFunc(c.HandleOpenSessionAPI))
	router.Handle(api, http.MethodPost, "/withholding/api/sessions:edit", http.HandlerFunc(c.HandleEditSessionAPI))
	router.Handle(api, http.MethodPost, "/withholding/api/sessions:sign", http.HandlerFunc(c.HandleSignSessionAPI))
	router.Handle(api, http.MethodPost, "/withholding/api/sessions:submit", http.HandlerFunc(c.HandleSubmitSessionAPI))
	router.Handle(api, http.MethodPost, "/withholding/api/sessions:confirm-exempt", http.HandlerFunc(c.HandleConfirmExemptAPI))
	router.Handle(api, http.MethodPost, "/withholding/api/sessions:cancel", http.HandlerFunc(c.HandleCancelSessionAPI))

	if undeclared := router.Undeclared(); len(undeclared) > 0 {
		return nil, nil, fmt.Errorf("server: routes missing from allowlist: %s", strings.Join(undeclared, ", "))
	}

	guarded := withTenantAndPrincipal(classifier, opts.TenancyResolver, cfg.TrustProxy, withAuthz(classifier, authorizer, router))
	return withRequestLog(logger, guarded), sessions, nil
}

func withTenantAndPrincipal(classifier *routing.Classifier, tenants TenancyResolver, trustProxy bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if isOpsPath(path) {
			next.ServeHTTP(w, r)
			return
		}
		rc := classifier.Classify(path)

		t, ok, err := tenants.ResolveTenant(r.Context(), tenantHost(r, trustProxy))
		if err != nil {
			routing.WriteError(w, r, rc, http.StatusInternalServerError, "tenant_resolve_error", "tenant resolve error")
			return
		}
		if !ok {
			routing.WriteError(w, r, rc, http.StatusNotFound, "tenant_not_found", "tenant not found")
			return
		}
		scope := requestScope{Tenant: t}
		if p, ok := principalFromRequest(r, t.ID); ok {
			scope.Principal = &p
		}
		next.ServeHTTP(w, r.WithContext(withRequestScope(r.Context(), scope)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withRequestLog(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// timeoutSubmitter bounds every submission by the configured timeout.
type timeoutSubmitter struct {
	next    ports.Submitter
	timeout time.Duration
}

func (s timeoutSubmitter) Submit(ctx context.Context, tenantID string, payload types.SubmissionPayload) (types.SubmissionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Submit(ctx, tenantID, payload)
}
