package routing

import (
	"errors"
	"strings"
)

type RouteClass string

const (
	RouteClassUI          RouteClass = "ui"
	RouteClassInternalAPI RouteClass = "internal_api"
	RouteClassPublicAPI   RouteClass = "public_api"
	RouteClassWebhook     RouteClass = "webhook"
	RouteClassOps         RouteClass = "ops"
)

func knownRouteClass(rc RouteClass) bool {
	switch rc {
	case RouteClassUI, RouteClassInternalAPI, RouteClassPublicAPI, RouteClassWebhook, RouteClassOps:
		return true
	}
	return false
}

type Classifier struct {
	entrypoint string
	classes    map[string]RouteClass
	methods    map[string]map[string]bool
}

func NewClassifier(a Allowlist, entrypoint string) (*Classifier, error) {
	ep, ok := a.Entrypoints[entrypoint]
	if !ok {
		return nil, errors.New("allowlist: missing entrypoint")
	}
	if len(ep.Routes) == 0 {
		return nil, errors.New("allowlist: entrypoint routes empty")
	}

	c := &Classifier{
		entrypoint: entrypoint,
		classes:    make(map[string]RouteClass, len(ep.Routes)),
		methods:    make(map[string]map[string]bool, len(ep.Routes)),
	}
	for _, r := range ep.Routes {
		if r.Path == "" || r.RouteClass == "" {
			return nil, errors.New("allowlist: invalid route")
		}
		if _, dup := c.classes[r.Path]; dup {
			return nil, errors.New("allowlist: duplicate route " + r.Path)
		}
		c.classes[r.Path] = RouteClass(r.RouteClass)
		c.methods[r.Path] = make(map[string]bool, len(r.Methods))
		for _, m := range r.Methods {
			c.methods[r.Path][m] = true
		}
	}
	return c, nil
}

// Declares reports whether the allowlist lists method on path.
func (c *Classifier) Declares(method string, path string) bool {
	return c.methods[path][method]
}

// Classify falls back to path conventions for routes the allowlist does not
// list, so unknown paths still get the right error format.
func (c *Classifier) Classify(path string) RouteClass {
	if rc, ok := c.classes[path]; ok {
		return rc
	}

	switch {
	case hasPrefixSegment(path, "/api/v1"):
		return RouteClassPublicAPI
	case isModuleInternalAPI(path):
		return RouteClassInternalAPI
	case hasPrefixSegment(path, "/webhooks"):
		return RouteClassWebhook
	default:
		return RouteClassUI
	}
}

func hasPrefixSegment(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// isModuleInternalAPI matches /{module}/api and anything below it.
func isModuleInternalAPI(path string) bool {
	if !strings.HasPrefix(path, "/") {
		return false
	}
	rest := strings.TrimPrefix(path, "/")
	module, after, ok := strings.Cut(rest, "/")
	if !ok || module == "" {
		return false
	}
	return hasPrefixSegment("/"+after, "/api")
}
