// Package validator implements the static admission control pass: parse
// user code to an AST, then walk it once consulting a policy.Catalog,
// yielding admit or a rejection reason. It performs no side effects and
// never executes user code.
package validator

import (
	"fmt"

	"github.com/nextlevelbuilder/pyrunner/internal/policy"
	"github.com/nextlevelbuilder/pyrunner/internal/pyast"
)

// Rejection is returned when the source fails admission. It is a plain
// error so callers can use errors.As/Is if they need to distinguish it
// from an internal validator defect, but in practice the validator never
// returns any other error type.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }

func reject(format string, args ...interface{}) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// Validate parses src and walks the resulting AST against cat. It returns
// nil on admission, or a *Rejection describing the first violation found.
// A parse failure is reported as reject("syntax error: ...") exactly like
// any other rejection.
func Validate(src string, cat *policy.Catalog) error {
	mod, err := pyast.Parse(src)
	if err != nil {
		return reject("syntax error: %s", err.Error())
	}
	w := &walker{cat: cat}
	return w.walkBody(mod.Body)
}

type walker struct {
	cat *policy.Catalog
}

func (w *walker) walkBody(body []pyast.Stmt) error {
	for _, s := range body {
		if err := w.walkStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func topLevelPackage(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return path[0]
}

func (w *walker) checkImportName(name string) error {
	if w.cat.IsForbiddenImport(name) {
		return reject("import of %q is forbidden", name)
	}
	if !w.cat.IsPermittedImport(name) && len(name) > 0 && name[0] != '_' {
		return reject("import of %q is not in the permitted module list", name)
	}
	return nil
}

func (w *walker) walkStmt(s pyast.Stmt) error {
	switch n := s.(type) {
	case *pyast.ImportStmt:
		for _, alias := range n.Names {
			if err := w.checkImportName(topLevelPackage(alias.Path)); err != nil {
				return err
			}
		}
		return nil
	case *pyast.ImportFromStmt:
		if len(n.Module) > 0 {
			if err := w.checkImportName(topLevelPackage(n.Module)); err != nil {
				return err
			}
		}
		return nil
	case *pyast.ExprStmt:
		return w.walkExpr(n.X)
	case *pyast.AssignStmt:
		for _, t := range n.Targets {
			if err := w.walkExpr(t); err != nil {
				return err
			}
		}
		return w.walkExpr(n.Value)
	case *pyast.AugAssignStmt:
		if err := w.walkExpr(n.Target); err != nil {
			return err
		}
		return w.walkExpr(n.Value)
	case *pyast.AnnAssignStmt:
		if err := w.walkExpr(n.Target); err != nil {
			return err
		}
		if err := w.walkExpr(n.Annotation); err != nil {
			return err
		}
		if n.Value != nil {
			return w.walkExpr(n.Value)
		}
		return nil
	case *pyast.IfStmt:
		if err := w.walkExpr(n.Cond); err != nil {
			return err
		}
		if err := w.walkBody(n.Body); err != nil {
			return err
		}
		return w.walkBody(n.Else)
	case *pyast.WhileStmt:
		if err := w.walkExpr(n.Cond); err != nil {
			return err
		}
		if err := w.walkBody(n.Body); err != nil {
			return err
		}
		return w.walkBody(n.Else)
	case *pyast.ForStmt:
		if err := w.walkExpr(n.Target); err != nil {
			return err
		}
		if err := w.walkExpr(n.Iter); err != nil {
			return err
		}
		if err := w.walkBody(n.Body); err != nil {
			return err
		}
		return w.walkBody(n.Else)
	case *pyast.FuncDefStmt:
		for _, d := range n.Decorators {
			if err := w.walkExpr(d); err != nil {
				return err
			}
		}
		for _, p := range n.Params {
			if p.Default != nil {
				if err := w.walkExpr(p.Default); err != nil {
					return err
				}
			}
		}
		return w.walkBody(n.Body)
	case *pyast.ClassDefStmt:
		for _, d := range n.Decorators {
			if err := w.walkExpr(d); err != nil {
				return err
			}
		}
		for _, b := range n.Bases {
			if err := w.walkExpr(b); err != nil {
				return err
			}
		}
		return w.walkBody(n.Body)
	case *pyast.ReturnStmt:
		if n.Value != nil {
			return w.walkExpr(n.Value)
		}
		return nil
	case *pyast.PassStmt, *pyast.BreakStmt, *pyast.ContinueStmt, *pyast.GlobalStmt, *pyast.NonlocalStmt:
		return nil
	case *pyast.DeleteStmt:
		for _, t := range n.Targets {
			if err := w.walkExpr(t); err != nil {
				return err
			}
		}
		return nil
	case *pyast.RaiseStmt:
		if n.Exc != nil {
			if err := w.walkExpr(n.Exc); err != nil {
				return err
			}
		}
		if n.Cause != nil {
			return w.walkExpr(n.Cause)
		}
		return nil
	case *pyast.AssertStmt:
		if err := w.walkExpr(n.Cond); err != nil {
			return err
		}
		if n.Msg != nil {
			return w.walkExpr(n.Msg)
		}
		return nil
	case *pyast.TryStmt:
		if err := w.walkBody(n.Body); err != nil {
			return err
		}
		for _, h := range n.Handlers {
			if h.Type != nil {
				if err := w.walkExpr(h.Type); err != nil {
					return err
				}
			}
			if err := w.walkBody(h.Body); err != nil {
				return err
			}
		}
		if err := w.walkBody(n.Else); err != nil {
			return err
		}
		return w.walkBody(n.Finally)
	case *pyast.WithStmt:
		for _, item := range n.Items {
			if err := w.walkExpr(item.Context); err != nil {
				return err
			}
			if item.Name != nil {
				if err := w.walkExpr(item.Name); err != nil {
					return err
				}
			}
		}
		return w.walkBody(n.Body)
	default:
		return reject("syntax error: unsupported statement %T", s)
	}
}

func isDynamicAttrTrio(name string) bool {
	switch name {
	case "getattr", "setattr", "delattr":
		return true
	}
	return false
}

func (w *walker) walkExpr(e pyast.Expr) error {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *pyast.NameExpr, *pyast.NumberExpr, *pyast.StringExpr, *pyast.NameConstExpr:
		return nil
	case *pyast.FStringExpr:
		// Walk every interpolated expression the same way as code outside
		// a string: an f-string's "{...}" is not opaque text, it's a real
		// sub-expression, so a call or attribute hidden inside one must be
		// caught exactly like anywhere else.
		for _, v := range n.Values {
			if err := w.walkExpr(v); err != nil {
				return err
			}
		}
		return nil
	case *pyast.AttributeExpr:
		if w.cat.IsForbiddenAttribute(n.Attr) {
			return reject("access to attribute %q is forbidden", n.Attr)
		}
		return w.walkExpr(n.Value)
	case *pyast.SubscriptExpr:
		if err := w.walkExpr(n.Value); err != nil {
			return err
		}
		return w.walkExpr(n.Index)
	case *pyast.CallExpr:
		if name, ok := n.Func.(*pyast.NameExpr); ok {
			if w.cat.IsForbiddenBuiltin(name.Id) || isDynamicAttrTrio(name.Id) {
				return reject("call to %q is forbidden", name.Id)
			}
		}
		if err := w.walkExpr(n.Func); err != nil {
			return err
		}
		for _, a := range n.Args {
			if err := w.walkExpr(a); err != nil {
				return err
			}
		}
		for _, kw := range n.Keywords {
			if err := w.walkExpr(kw.Value); err != nil {
				return err
			}
		}
		return nil
	case *pyast.UnaryOpExpr:
		return w.walkExpr(n.Operand)
	case *pyast.BinOpExpr:
		if err := w.walkExpr(n.Left); err != nil {
			return err
		}
		return w.walkExpr(n.Right)
	case *pyast.BoolOpExpr:
		for _, v := range n.Values {
			if err := w.walkExpr(v); err != nil {
				return err
			}
		}
		return nil
	case *pyast.CompareExpr:
		if err := w.walkExpr(n.Left); err != nil {
			return err
		}
		for _, c := range n.Comps {
			if err := w.walkExpr(c); err != nil {
				return err
			}
		}
		return nil
	case *pyast.ListExpr:
		return w.walkExprs(n.Elts)
	case *pyast.TupleExpr:
		return w.walkExprs(n.Elts)
	case *pyast.SetExpr:
		return w.walkExprs(n.Elts)
	case *pyast.DictExpr:
		for i, k := range n.Keys {
			if k != nil {
				if err := w.walkExpr(k); err != nil {
					return err
				}
			}
			if err := w.walkExpr(n.Values[i]); err != nil {
				return err
			}
		}
		return nil
	case *pyast.ListCompExpr:
		return w.walkComp(n.Elt, nil, n.Clause)
	case *pyast.SetCompExpr:
		return w.walkComp(n.Elt, nil, n.Clause)
	case *pyast.GeneratorExpr:
		return w.walkComp(n.Elt, nil, n.Clause)
	case *pyast.DictCompExpr:
		return w.walkComp(n.Key, n.Value, n.Clause)
	case *pyast.LambdaExpr:
		for _, p := range n.Params {
			if p.Default != nil {
				if err := w.walkExpr(p.Default); err != nil {
					return err
				}
			}
		}
		return w.walkExpr(n.Body)
	case *pyast.CondExpr:
		if err := w.walkExpr(n.Cond); err != nil {
			return err
		}
		if err := w.walkExpr(n.Then); err != nil {
			return err
		}
		return w.walkExpr(n.Else)
	case *pyast.NamedExpr:
		if err := w.walkExpr(n.Target); err != nil {
			return err
		}
		return w.walkExpr(n.Value)
	case *pyast.StarredExpr:
		return w.walkExpr(n.Value)
	default:
		return reject("syntax error: unsupported expression %T", e)
	}
}

func (w *walker) walkExprs(es []pyast.Expr) error {
	for _, e := range es {
		if err := w.walkExpr(e); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkComp(elt, dictValue pyast.Expr, clauses []pyast.Comprehension) error {
	for _, c := range clauses {
		if err := w.walkExpr(c.Target); err != nil {
			return err
		}
		if err := w.walkExpr(c.Iter); err != nil {
			return err
		}
		for _, cond := range c.Ifs {
			if err := w.walkExpr(cond); err != nil {
				return err
			}
		}
	}
	if err := w.walkExpr(elt); err != nil {
		return err
	}
	if dictValue != nil {
		return w.walkExpr(dictValue)
	}
	return nil
}
