package models

import (
	"strings"

	"github.com/tristendillon/prefgen/core/shared"
)

// RefKind tells a renderer where a referenced name lives.
type RefKind int

const (
	// UserRef names a type written by the user (value types, adapters, the origin interface).
	UserRef RefKind = iota
	// RuntimeRef names a type or constructor provided by the prefs runtime.
	RuntimeRef
)

func (k RefKind) String() string {
	switch k {
	case UserRef:
		return "User"
	case RuntimeRef:
		return "Runtime"
	default:
		return "Unknown"
	}
}

// Runtime names every renderer knows how to qualify.
const (
	RuntimePreference = "Preference"
	RuntimeContext    = "Context"
	RuntimeStore      = "Store"
)

// TypeRef is a possibly parameterized reference to a named type.
type TypeRef struct {
	Kind RefKind
	Name string // may be dot-qualified for user types
	Args []TypeRef
}

// SimpleName is the last dot-separated segment of the name, without any
// type arguments written into it.
func (t TypeRef) SimpleName() string {
	return shared.SimpleName(t.Name)
}

// Qualifier is everything before the last dot of the name, or empty.
func (t TypeRef) Qualifier() string {
	base := shared.BaseName(t.Name)
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[:i]
	}
	return ""
}

type ExprKind int

const (
	// Ident refers to a local, parameter or field by name.
	Ident ExprKind = iota
	// String is a string literal; Value holds the unquoted text.
	String
	// Raw is an opaque source expression copied into the output verbatim.
	Raw
)

type Expr struct {
	Kind  ExprKind
	Value string
}

func IdentExpr(name string) Expr { return Expr{Kind: Ident, Value: name} }
func StringExpr(s string) Expr { return Expr{Kind: String, Value: s} }
func RawExpr(source string) Expr { return Expr{Kind: Raw, Value: source} }

type StatementKind int

const (
	// OpenStore declares Target as the backing store opened under Args[0].
	OpenStore StatementKind = iota
	// NewAdapter declares Target as a fresh zero-value instance of Type.
	NewAdapter
	// InitAdapter calls Target's init method with Args[0].
	InitAdapter
	// InitField assigns field Target from the wrapper constructor Type applied to Args.
	InitField
)

func (k StatementKind) String() string {
	switch k {
	case OpenStore:
		return "OpenStore"
	case NewAdapter:
		return "NewAdapter"
	case InitAdapter:
		return "InitAdapter"
	case InitField:
		return "InitField"
	default:
		return "Unknown"
	}
}

type Statement struct {
	Kind   StatementKind
	Target string
	Type   TypeRef
	Args   []Expr
}

// Field is assigned exactly once, in the constructor.
type Field struct {
	Name string
	Type TypeRef
}

type Accessor struct {
	Name    string
	Returns TypeRef
	Field   string
}

type Parameter struct {
	Name string
	Type TypeRef
}

type Constructor struct {
	Param      Parameter
	Statements []Statement
}

// OutputType describes the complete generated implementation type.
type OutputType struct {
	PackageName string
	Name        string
	Implements  TypeRef
	StoreKey    string
	Fields      []Field
	Accessors   []Accessor
	Constructor Constructor
}

// StatementsOf returns the constructor statements of the given kind, in order.
func (o *OutputType) StatementsOf(kind StatementKind) []Statement {
	var out []Statement
	for _, st := range o.Constructor.Statements {
		if st.Kind == kind {
			out = append(out, st)
		}
	}
	return out
}
