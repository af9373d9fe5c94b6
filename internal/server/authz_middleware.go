package server

import (
	"net/http"

	"github.com/jacksonlee411/onboarding-withholding/internal/routing"
	"github.com/jacksonlee411/onboarding-withholding/pkg/authz"
)

func loadAuthorizer(cfg Config) (*authz.Authorizer, error) {
	modelPath, err := resolvePath(cfg.AuthzModelPath, "config/access/model.conf")
	if err != nil {
		return nil, err
	}
	policyPath, err := resolvePath(cfg.AuthzPolicyPath, "config/access/policy.csv")
	if err != nil {
		return nil, err
	}
	mode, err := authz.ParseMode(cfg.AuthzMode, cfg.AuthzAllowDisabled)
	if err != nil {
		return nil, err
	}
	return authz.NewAuthorizer(modelPath, policyPath, mode)
}

type authorizer interface {
	Authorize(subject string, domain string, object string, action string) (allowed bool, enforced bool, err error)
}

func withAuthz(classifier *routing.Classifier, a authorizer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		rc := routing.RouteClassUI
		if classifier != nil {
			rc = classifier.Classify(path)
		}

		if isOpsPath(path) {
			next.ServeHTTP(w, r)
			return
		}

		scope, ok := requestScopeFrom(r.Context())
		if !ok {
			routing.WriteError(w, r, rc, http.StatusInternalServerError, "tenant_missing", "tenant missing")
			return
		}

		object, action, shouldCheck := authzRequirementForRoute(r.Method, path)
		if !shouldCheck {
			next.ServeHTTP(w, r)
			return
		}

		allowed, enforced, err := a.Authorize(authz.SubjectFromRoleSlug(scope.RoleSlug()), authz.DomainFromTenantID(scope.Tenant.ID), object, action)
		if err != nil {
			routing.WriteError(w, r, rc, http.StatusInternalServerError, "authz_error", "authz error")
			return
		}
		if enforced && !allowed {
			routing.WriteError(w, r, rc, http.StatusForbidden, "forbidden", "forbidden")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func authzRequirementForRoute(method string, path string) (object string, action string, ok bool) {
	switch path {
	case "/withholding/api/dispositions", "/withholding/api/forms", "/withholding/api/states":
		if method == http.MethodGet {
			return authz.ObjectWithholdingForms, authz.ActionRead, true
		}
		return "", "", false
	case "/withholding/api/forms:compute":
		if method == http.MethodPost {
			return authz.ObjectWithholdingForms, authz.ActionRead, true
		}
		return "", "", false
	case "/withholding/api/sessions":
		if method == http.MethodGet {
			return authz.ObjectWithholdingSessions, authz.ActionRead, true
		}
		if method == http.MethodPost {
			return authz.ObjectWithholdingSessions, authz.ActionWrite, true
		}
		return "", "", false
	case "/withholding/api/sessions:edit", "/withholding/api/sessions:sign", "/withholding/api/sessions:cancel":
		if method == http.MethodPost {
			return authz.ObjectWithholdingSessions, authz.ActionWrite, true
		}
		return "", "", false
	case "/withholding/api/sessions:submit", "/withholding/api/sessions:confirm-exempt":
		if method == http.MethodPost {
			return authz.ObjectWithholdingSessions, authz.ActionSubmit, true
		}
		return "", "", false
	default:
		return "", "", false
	}
}

func isOpsPath(path string) bool {
	return path == "/health" || path == "/healthz"
}

