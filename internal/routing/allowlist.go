package routing

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Allowlist declares every route an entrypoint serves, with its class.
type Allowlist struct {
	Version     int                   `yaml:"version"`
	Entrypoints map[string]Entrypoint `yaml:"entrypoints"`
}

type Entrypoint struct {
	Routes []Route `yaml:"routes"`
}

type Route struct {
	Path       string   `yaml:"path"`
	Methods    []string `yaml:"methods"`
	RouteClass string   `yaml:"route_class"`
}

func ParseAllowlistYAML(b []byte) (Allowlist, error) {
	var a Allowlist
	if err := yaml.Unmarshal(b, &a); err != nil {
		return Allowlist{}, err
	}
	if a.Version != 1 {
		return Allowlist{}, errors.New("allowlist: unsupported version")
	}
	if a.Entrypoints == nil {
		return Allowlist{}, errors.New("allowlist: missing entrypoints")
	}
	for name, ep := range a.Entrypoints {
		for _, r := range ep.Routes {
			if err := r.validate(); err != nil {
				return Allowlist{}, fmt.Errorf("allowlist: %s: %w", name, err)
			}
		}
	}
	return a, nil
}

func LoadAllowlist(path string) (Allowlist, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Allowlist{}, err
	}
	return ParseAllowlistYAML(b)
}

func (r Route) validate() error {
	if !strings.HasPrefix(r.Path, "/") {
		return fmt.Errorf("route %q must start with /", r.Path)
	}
	if !knownRouteClass(RouteClass(r.RouteClass)) {
		return fmt.Errorf("route %s: unknown route_class %q", r.Path, r.RouteClass)
	}
	if len(r.Methods) == 0 {
		return fmt.Errorf("route %s: no methods", r.Path)
	}
	for _, m := range r.Methods {
		switch m {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			return fmt.Errorf("route %s: unsupported method %q", r.Path, m)
		}
	}
	return nil
}
