package config

import (
	"fmt"
	"os"

	"github.com/serroba/sentinel/internal/ratelimit"
	"gopkg.in/yaml.v3"
)

// QuotaEntry is the file form of a quota: count attempts per duration units.
type QuotaEntry struct {
	Count int64  `yaml:"count"`
	Per   int64  `yaml:"per"`
	Unit  string `yaml:"unit"`
}

// Quota validates the entry and builds the quota it describes.
func (q QuotaEntry) Quota() (*ratelimit.Quota, error) {
	per := q.Per
	if per == 0 {
		per = 1
	}

	unit, err := ratelimit.ParseUnit(q.Unit)
	if err != nil {
		return nil, err
	}

	return ratelimit.NewQuota(q.Count, per, unit)
}

// PolicyFile is the root of a policy file.
//
//	default:
//	  count: 100
//	  unit: minute
//	policies:
//	  strict:
//	    count: 10
//	    per: 1
//	    unit: hour
type PolicyFile struct {
	Default  *QuotaEntry           `yaml:"default"`
	Policies map[string]QuotaEntry `yaml:"policies"`
}

// LoadPolicies builds the policy set from the file at path.
// An empty path yields a set holding only def. A default declared in the
// file replaces def.
func LoadPolicies(path string, def *ratelimit.Quota) (*ratelimit.Policies, error) {
	if path == "" {
		return ratelimit.NewPolicies(def), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	return ParsePolicies(b, def)
}

// ParsePolicies builds the policy set from YAML data.
func ParsePolicies(data []byte, def *ratelimit.Quota) (*ratelimit.Policies, error) {
	var file PolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}

	if file.Default != nil {
		q, err := file.Default.Quota()
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", ratelimit.DefaultPolicy, err)
		}

		def = q
	}

	if def == nil {
		return nil, fmt.Errorf("policy %q: %w", ratelimit.DefaultPolicy, ratelimit.ErrInvalidQuota)
	}

	policies := ratelimit.NewPolicies(def)

	for name, entry := range file.Policies {
		if name == ratelimit.DefaultPolicy {
			return nil, fmt.Errorf("policy %q must be declared under the default key", name)
		}

		q, err := entry.Quota()
		if err != nil {
			return nil, fmt.Errorf("policy %q: %w", name, err)
		}

		policies.Add(name, q)
	}

	return policies, nil
}
