package ratelimit

import (
	"fmt"
	"sort"

	"github.com/danielgtaylor/huma/v2"
)

// MetadataKey is the key used to store rate limit config in operation metadata.
const MetadataKey = "rateLimit"

// DefaultPolicy is the name of the policy applied when an endpoint names none.
const DefaultPolicy = "default"

// EndpointConfig defines per-endpoint rate limit configuration.
// This can be attached to Huma operations via the Metadata field.
type EndpointConfig struct {
	// Policy names a quota registered in the Policies set.
	// Ignored when Quota is set.
	Policy string

	// Quota overrides the policy lookup with an inline quota.
	Quota *Quota

	// Disabled skips rate limiting entirely for this endpoint.
	Disabled bool
}

// GetEndpointConfig extracts the EndpointConfig from operation metadata, if present.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}

// Policies is a named set of quotas with a mandatory default.
type Policies struct {
	quotas map[string]*Quota
}

// NewPolicies creates a policy set whose default policy is def.
func NewPolicies(def *Quota) *Policies {
	return &Policies{quotas: map[string]*Quota{DefaultPolicy: def}}
}

// Add registers quota under name, replacing any previous entry.
func (p *Policies) Add(name string, quota *Quota) *Policies {
	p.quotas[name] = quota

	return p
}

// Default returns the default quota.
func (p *Policies) Default() *Quota {
	return p.quotas[DefaultPolicy]
}

// Get returns the quota registered under name.
func (p *Policies) Get(name string) (*Quota, bool) {
	q, ok := p.quotas[name]

	return q, ok
}

// Names returns the registered policy names in sorted order.
func (p *Policies) Names() []string {
	names := make([]string, 0, len(p.quotas))
	for name := range p.quotas {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Resolve returns the quota and policy name that apply to an endpoint.
// A nil config resolves to the default policy.
func (p *Policies) Resolve(cfg *EndpointConfig) (*Quota, string, error) {
	if cfg == nil {
		return p.Default(), DefaultPolicy, nil
	}

	if cfg.Quota != nil {
		return cfg.Quota, "inline", nil
	}

	name := cfg.Policy
	if name == "" {
		name = DefaultPolicy
	}

	q, ok := p.quotas[name]
	if !ok {
		return nil, name, fmt.Errorf("unknown rate limit policy %q", name)
	}

	return q, name, nil
}
