// Package policy holds the static description of which constructs the
// sandboxed interpreter is allowed to reach: importable modules, callable
// builtins, and introspectable attributes. It is pure data — nothing in
// this package executes user code or touches the filesystem.
package policy

import (
	"fmt"
	"sort"
)

// Catalog is a read-only set of permitted/forbidden identifiers consulted
// by the static validator. The zero value is not usable; build one with
// Default() or Merge().
type Catalog struct {
	forbiddenImports   map[string]struct{}
	permittedImports   map[string]struct{}
	forbiddenBuiltins  map[string]struct{}
	forbiddenAttrs     map[string]struct{}
}

// Default returns the built-in catalog. It is always available and never
// absent, independent of any config file.
func Default() *Catalog {
	return &Catalog{
		forbiddenImports:  toSet(defaultForbiddenImports),
		permittedImports:  toSet(defaultPermittedImports),
		forbiddenBuiltins: toSet(defaultForbiddenBuiltins),
		forbiddenAttrs:    toSet(defaultForbiddenAttrs),
	}
}

// New builds a catalog from explicit sets, validating the disjointness
// invariant (forbidden_imports ∩ permitted_imports = ∅). Use this for
// config-file overrides rather than mutating Default() in place.
func New(forbiddenImports, permittedImports, forbiddenBuiltins, forbiddenAttrs []string) (*Catalog, error) {
	c := &Catalog{
		forbiddenImports:  toSet(forbiddenImports),
		permittedImports:  toSet(permittedImports),
		forbiddenBuiltins: toSet(forbiddenBuiltins),
		forbiddenAttrs:    toSet(forbiddenAttrs),
	}
	if err := c.checkInvariants(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) checkInvariants() error {
	for name := range c.forbiddenImports {
		if _, ok := c.permittedImports[name]; ok {
			return fmt.Errorf("policy: %q is in both forbidden_imports and permitted_imports", name)
		}
	}
	return nil
}

// IsForbiddenImport reports whether a top-level package name is on the
// import blacklist.
func (c *Catalog) IsForbiddenImport(name string) bool {
	_, ok := c.forbiddenImports[name]
	return ok
}

// IsPermittedImport reports whether a top-level package name is on the
// import whitelist.
func (c *Catalog) IsPermittedImport(name string) bool {
	_, ok := c.permittedImports[name]
	return ok
}

// IsForbiddenBuiltin reports whether a bare name matches a blacklisted
// builtin (code evaluators, compilers, dynamic importers, file openers,
// the get/set/del-attr trio).
func (c *Catalog) IsForbiddenBuiltin(name string) bool {
	_, ok := c.forbiddenBuiltins[name]
	return ok
}

// IsForbiddenAttribute reports whether an attribute name is a blacklisted
// introspection hook.
func (c *Catalog) IsForbiddenAttribute(name string) bool {
	_, ok := c.forbiddenAttrs[name]
	return ok
}

// Override is a set of additions layered onto an existing Catalog, used
// by a config-file policy override. Entries are additive only: an
// override file cannot remove a built-in default.
type Override struct {
	AddForbiddenImports  []string
	AddPermittedImports  []string
	AddForbiddenBuiltins []string
	AddForbiddenAttrs    []string
}

// Merge builds a new Catalog combining base with the additions in ov,
// re-validating the disjointness invariant.
func Merge(base *Catalog, ov Override) (*Catalog, error) {
	return New(
		append(sortedKeys(base.forbiddenImports), ov.AddForbiddenImports...),
		append(sortedKeys(base.permittedImports), ov.AddPermittedImports...),
		append(sortedKeys(base.forbiddenBuiltins), ov.AddForbiddenBuiltins...),
		append(sortedKeys(base.forbiddenAttrs), ov.AddForbiddenAttrs...),
	)
}

// PermittedImportNames returns a sorted snapshot of the import whitelist,
// for the health-probe descriptor (spec.md §6).
func (c *Catalog) PermittedImportNames() []string {
	return sortedKeys(c.permittedImports)
}

func toSet(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
