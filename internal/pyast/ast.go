// Package pyast is a hand-rolled abstract syntax tree, lexer, and
// recursive-descent parser for the subset of Python-family syntax the
// sandboxed interpreter understands. It exists because no general-purpose
// Python-AST package is available to a Go program; the shape deliberately
// follows the "visitor over a sum type" idiom — Stmt and Expr are
// interfaces implemented by small concrete structs, and callers
// type-switch rather than walk a virtual-dispatch class hierarchy.
package pyast

// Node is implemented by every AST node so error messages can point at a
// source location.
type Node interface {
	Pos() Position
}

// Stmt is the sum type of all statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the sum type of all expression nodes.
type Expr interface {
	Node
	exprNode()
}

type base struct{ P Position }

func (b base) Pos() Position { return b.P }

// Module is the root of a parsed program.
type Module struct {
	base
	Body []Stmt
}

// ---- statements ----

// Alias is one imported name, optionally aliased: "a.b.c as d".
type Alias struct {
	Path  []string
	Alias string // "" if no "as" clause
}

// ImportStmt is "import a.b as c, d".
type ImportStmt struct {
	base
	Names []Alias
}

// ImportFromStmt is "from .a.b import c as d, e". Level counts leading
// dots (relative import depth); 0 means absolute.
type ImportFromStmt struct {
	base
	Level  int
	Module []string // empty for a bare "from . import x"
	Names  []Alias  // Alias.Path has length 1 here: the imported symbol
	Star   bool     // "from x import *"
}

// ExprStmt wraps a bare expression used as a statement.
type ExprStmt struct {
	base
	X Expr
}

// AssignStmt is "a = b = value" (possibly chained/tuple targets).
type AssignStmt struct {
	base
	Targets []Expr
	Value   Expr
}

// AugAssignStmt is "target op= value".
type AugAssignStmt struct {
	base
	Target Expr
	Op     string
	Value  Expr
}

// AnnAssignStmt is "target: annotation = value" (value optional).
type AnnAssignStmt struct {
	base
	Target     Expr
	Annotation Expr
	Value      Expr // nil if no value
}

// IfStmt covers if/elif/else; Else holds either the else-body or a single
// nested IfStmt representing the next elif.
type IfStmt struct {
	base
	Cond Expr
	Body []Stmt
	Else []Stmt
}

// WhileStmt is "while cond: body" with optional else.
type WhileStmt struct {
	base
	Cond Expr
	Body []Stmt
	Else []Stmt
}

// ForStmt is "for target in iter: body" with optional else.
type ForStmt struct {
	base
	Target Expr
	Iter   Expr
	Body   []Stmt
	Else   []Stmt
}

// FuncDefStmt is "def name(params): body".
type FuncDefStmt struct {
	base
	Name       string
	Params     []Param
	Body       []Stmt
	Decorators []Expr
	IsAsync    bool
}

// Param is one function parameter, with an optional default.
type Param struct {
	Name    string
	Default Expr // nil if no default
}

// ClassDefStmt is "class name(bases): body".
type ClassDefStmt struct {
	base
	Name       string
	Bases      []Expr
	Body       []Stmt
	Decorators []Expr
}

// ReturnStmt is "return value" (Value nil for a bare return).
type ReturnStmt struct {
	base
	Value Expr
}

// PassStmt is "pass".
type PassStmt struct{ base }

// BreakStmt is "break".
type BreakStmt struct{ base }

// ContinueStmt is "continue".
type ContinueStmt struct{ base }

// GlobalStmt is "global a, b".
type GlobalStmt struct {
	base
	Names []string
}

// NonlocalStmt is "nonlocal a, b".
type NonlocalStmt struct {
	base
	Names []string
}

// DeleteStmt is "del a, b".
type DeleteStmt struct {
	base
	Targets []Expr
}

// RaiseStmt is "raise" or "raise exc [from cause]".
type RaiseStmt struct {
	base
	Exc   Expr
	Cause Expr
}

// AssertStmt is "assert cond, msg".
type AssertStmt struct {
	base
	Cond Expr
	Msg  Expr
}

// ExceptClause is one "except [Type [as name]]: body" handler.
type ExceptClause struct {
	Type Expr
	Name string
	Body []Stmt
}

// TryStmt is "try: body except...: ... else: ... finally: ...".
type TryStmt struct {
	base
	Body     []Stmt
	Handlers []ExceptClause
	Else     []Stmt
	Finally  []Stmt
}

// WithItem is one "ctx [as name]" clause of a with-statement.
type WithItem struct {
	Context Expr
	Name    Expr // nil if no "as" target
}

// WithStmt is "with item, item: body".
type WithStmt struct {
	base
	Items   []WithItem
	Body    []Stmt
	IsAsync bool
}

func (*ImportStmt) stmtNode()     {}
func (*ImportFromStmt) stmtNode() {}
func (*ExprStmt) stmtNode()       {}
func (*AssignStmt) stmtNode()     {}
func (*AugAssignStmt) stmtNode()  {}
func (*AnnAssignStmt) stmtNode()  {}
func (*IfStmt) stmtNode()         {}
func (*WhileStmt) stmtNode()      {}
func (*ForStmt) stmtNode()        {}
func (*FuncDefStmt) stmtNode()    {}
func (*ClassDefStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode()     {}
func (*PassStmt) stmtNode()       {}
func (*BreakStmt) stmtNode()      {}
func (*ContinueStmt) stmtNode()   {}
func (*GlobalStmt) stmtNode()     {}
func (*NonlocalStmt) stmtNode()   {}
func (*DeleteStmt) stmtNode()     {}
func (*RaiseStmt) stmtNode()      {}
func (*AssertStmt) stmtNode()     {}
func (*TryStmt) stmtNode()        {}
func (*WithStmt) stmtNode()       {}

// ---- expressions ----

// NameExpr is a bare identifier reference.
type NameExpr struct {
	base
	Id string
}

// AttributeExpr is "value.attr".
type AttributeExpr struct {
	base
	Value Expr
	Attr  string
}

// SubscriptExpr is "value[index]".
type SubscriptExpr struct {
	base
	Value Expr
	Index Expr
}

// CallExpr is "func(args..., kw=val...)".
type CallExpr struct {
	base
	Func     Expr
	Args     []Expr
	Keywords []Keyword
}

// Keyword is one "name=value" call argument.
type Keyword struct {
	Name  string // "" for **kwargs
	Value Expr
}

// NumberExpr is a numeric literal, kept as raw source text.
type NumberExpr struct {
	base
	Literal string
}

// StringExpr is a string literal, kept as raw decoded text. A plain
// string is always a StringExpr; an f-string's literal runs are too, but
// the f-string as a whole is an FStringExpr.
type StringExpr struct {
	base
	Value string
}

// FStringExpr is an f-string, modeled the way CPython's ast.parse splits
// a JoinedStr: an alternating sequence of literal text and embedded
// expressions. Values holds that sequence in source order — literal runs
// as *StringExpr, each "{expr}" interpolation as whatever expression node
// its contents parse to (a CallExpr, AttributeExpr, or anything else the
// grammar allows). Conversion (!r/!s/!a) and format-spec suffixes are
// discarded; only the expression portion is kept, since that's the part
// a validator needs to walk.
type FStringExpr struct {
	base
	Values []Expr
}

// NameConstExpr is True/False/None.
type NameConstExpr struct {
	base
	Kind string // "True", "False", "None"
}

// UnaryOpExpr is "op operand" (not/+/-/~).
type UnaryOpExpr struct {
	base
	Op      string
	Operand Expr
}

// BinOpExpr is "left op right" for arithmetic/bitwise operators.
type BinOpExpr struct {
	base
	Op          string
	Left, Right Expr
}

// BoolOpExpr is "a and b and c" / "a or b or c".
type BoolOpExpr struct {
	base
	Op     string // "and" or "or"
	Values []Expr
}

// CompareExpr is a chained comparison: "a < b <= c".
type CompareExpr struct {
	base
	Left  Expr
	Ops   []string
	Comps []Expr
}

// ListExpr, TupleExpr, SetExpr are display literals.
type ListExpr struct {
	base
	Elts []Expr
}
type TupleExpr struct {
	base
	Elts []Expr
}
type SetExpr struct {
	base
	Elts []Expr
}

// DictExpr is "{k: v, ...}". A nil key at index i denotes "**value" unpacking.
type DictExpr struct {
	base
	Keys   []Expr
	Values []Expr
}

// Comprehension is one "for target in iter [if cond]*" clause.
type Comprehension struct {
	Target Expr
	Iter   Expr
	Ifs    []Expr
}

// ListCompExpr, SetCompExpr, GeneratorExpr, DictCompExpr are comprehensions.
type ListCompExpr struct {
	base
	Elt    Expr
	Clause []Comprehension
}
type SetCompExpr struct {
	base
	Elt    Expr
	Clause []Comprehension
}
type GeneratorExpr struct {
	base
	Elt    Expr
	Clause []Comprehension
}
type DictCompExpr struct {
	base
	Key, Value Expr
	Clause     []Comprehension
}

// LambdaExpr is "lambda params: body".
type LambdaExpr struct {
	base
	Params []Param
	Body   Expr
}

// CondExpr is "a if cond else b".
type CondExpr struct {
	base
	Cond, Then, Else Expr
}

// NamedExpr is the walrus operator "target := value".
type NamedExpr struct {
	base
	Target Expr
	Value  Expr
}

// StarredExpr is "*expr" used inside a call or assignment target.
type StarredExpr struct {
	base
	Value Expr
}

func (*NameExpr) exprNode()      {}
func (*AttributeExpr) exprNode() {}
func (*SubscriptExpr) exprNode() {}
func (*CallExpr) exprNode()      {}
func (*NumberExpr) exprNode()    {}
func (*StringExpr) exprNode()    {}
func (*FStringExpr) exprNode()   {}
func (*NameConstExpr) exprNode() {}
func (*UnaryOpExpr) exprNode()   {}
func (*BinOpExpr) exprNode()     {}
func (*BoolOpExpr) exprNode()    {}
func (*CompareExpr) exprNode()   {}
func (*ListExpr) exprNode()      {}
func (*TupleExpr) exprNode()     {}
func (*SetExpr) exprNode()       {}
func (*DictExpr) exprNode()      {}
func (*ListCompExpr) exprNode()  {}
func (*SetCompExpr) exprNode()   {}
func (*GeneratorExpr) exprNode() {}
func (*DictCompExpr) exprNode()  {}
func (*LambdaExpr) exprNode()    {}
func (*CondExpr) exprNode()      {}
func (*NamedExpr) exprNode()     {}
func (*StarredExpr) exprNode()   {}
