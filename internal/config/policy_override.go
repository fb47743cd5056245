package config

import (
	"fmt"
	"os"

	"github.com/titanous/json5"

	"github.com/nextlevelbuilder/pyrunner/internal/policy"
)

// PolicyOverride is the JSON5 shape of an optional override file: names
// listed here are merged with policy.Default()'s four sets before
// building the active Catalog.
type PolicyOverride struct {
	ForbiddenImports  []string `json:"forbidden_imports,omitempty"`
	PermittedImports  []string `json:"permitted_imports,omitempty"`
	ForbiddenBuiltins []string `json:"forbidden_builtins,omitempty"`
	ForbiddenAttrs    []string `json:"forbidden_attributes,omitempty"`
}

// LoadPolicyCatalog builds the active policy.Catalog: the built-in
// defaults, merged with an override file if path is non-empty. The
// catalog's own disjointness invariant is enforced by policy.New, so
// an override that puts a name in both forbidden_imports and
// permitted_imports is rejected here rather than silently resolved.
func LoadPolicyCatalog(path string) (*policy.Catalog, error) {
	if path == "" {
		return policy.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return policy.Default(), nil
		}
		return nil, fmt.Errorf("read policy override: %w", err)
	}
	var ov PolicyOverride
	if err := json5.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("parse policy override: %w", err)
	}
	return policy.Merge(policy.Default(), policy.Override{
		AddForbiddenImports:  ov.ForbiddenImports,
		AddPermittedImports:  ov.PermittedImports,
		AddForbiddenBuiltins: ov.ForbiddenBuiltins,
		AddForbiddenAttrs:    ov.ForbiddenAttrs,
	})
}
