package ast

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"reflect"
	"strings"

	"github.com/tristendillon/prefgen/core/logger"
	"github.com/tristendillon/prefgen/core/models"
	"github.com/tristendillon/prefgen/core/shared"
)

const (
	StoreDirective = "//prefgen:store"
	EntryDirective = "//prefgen:entry"
)

type ParseError struct {
	Pos token.Position
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

var wrapperByType = map[string]string{
	"int":     "IntPreference",
	"int32":   "IntPreference",
	"int64":   "LongPreference",
	"float32": "FloatPreference",
	"float64": "FloatPreference",
	"bool":    "BoolPreference",
	"string":  "StringPreference",
}

var zeroByType = map[string]string{
	"int":     "0",
	"int32":   "0",
	"int64":   "0",
	"float32": "0",
	"float64": "0",
	"bool":    "false",
	"string":  `""`,
}

const objectWrapper = "ObjectPreference"

// InferWrapper picks the concrete wrapper for a Go value type.
func InferWrapper(valueType string) string {
	if w, ok := wrapperByType[valueType]; ok {
		return w
	}
	return objectWrapper
}

// HasDirective reports whether src mentions the store directive at all, so
// walkers can skip the full parse for most files.
func HasDirective(src []byte) bool {
	return strings.Contains(string(src), StoreDirective)
}

func ParseFile(path string) ([]*models.Model, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(path, src)
}

// ParseSource extracts one model per interface annotated with //prefgen:store.
// Models are returned in declaration order.
func ParseSource(path string, src []byte) ([]*models.Model, error) {
	fset := token.NewFileSet()

	f, err := parser.ParseFile(fset, path, src, parser.ParseComments|parser.AllErrors)
	if err != nil {
		return nil, err
	}

	var out []*models.Model
	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			iface, ok := ts.Type.(*ast.InterfaceType)
			if !ok {
				continue
			}
			if !hasLine(ts.Doc, StoreDirective) && !(len(gen.Specs) == 1 && hasLine(gen.Doc, StoreDirective)) {
				continue
			}

			m := models.NewModel(f.Name.Name, ts.Name.Name)
			m.Source = path
			if err := addEntries(fset, m, iface); err != nil {
				return nil, err
			}
			logger.Debug("Found preferences interface %s in %s with %d entries", ts.Name.Name, path, m.Len())
			out = append(out, m)
		}
	}

	return out, nil
}

func addEntries(fset *token.FileSet, m *models.Model, iface *ast.InterfaceType) error {
	for _, field := range iface.Methods.List {
		if len(field.Names) == 0 {
			return &ParseError{Pos: fset.Position(field.Pos()), Msg: "embedded interfaces are not supported in a preferences interface"}
		}
		fn, ok := field.Type.(*ast.FuncType)
		if !ok {
			return &ParseError{Pos: fset.Position(field.Pos()), Msg: "expected method"}
		}
		name := field.Names[0].Name

		if fn.Params != nil && len(fn.Params.List) > 0 {
			return &ParseError{Pos: fset.Position(field.Pos()), Msg: fmt.Sprintf("method %s must not take parameters", name)}
		}
		valueType, ok := preferenceValueType(fn)
		if !ok {
			return &ParseError{Pos: fset.Position(field.Pos()), Msg: fmt.Sprintf("method %s must return Preference[T]", name)}
		}

		entry := models.Entry{
			Name:      shared.LowerFirst(name),
			ValueType: valueType,
		}
		if tag, ok := directiveArgs(field.Doc, EntryDirective); ok {
			entry.DefaultValue, _ = tag.Lookup("default")
			entry.Wrapper, _ = tag.Lookup("wrapper")
			entry.Adapter, _ = tag.Lookup("adapter")
		}
		if entry.Wrapper == "" {
			entry.Wrapper = InferWrapper(valueType)
		}
		if entry.DefaultValue == "" {
			entry.DefaultValue = zeroByType[valueType]
		}
		if entry.Wrapper == objectWrapper && entry.Adapter == "" {
			return &ParseError{
				Pos: fset.Position(field.Pos()),
				Msg: fmt.Sprintf("method %s stores %s, which needs an adapter: add adapter:\"...\" to its %s line, e.g. adapter:\"prefs.JSONAdapter[%s]\"",
					name, valueType, EntryDirective, valueType),
			}
		}

		logger.Debug("Entry %s.%s: %s", m.OriginTypeName, entry.Name, entry)
		m.AddEntry(entry)
	}
	return nil
}

// preferenceValueType returns T for a single result of type Preference[T] or pkg.Preference[T].
func preferenceValueType(fn *ast.FuncType) (string, bool) {
	if fn.Results == nil || len(fn.Results.List) != 1 || len(fn.Results.List[0].Names) > 1 {
		return "", false
	}
	idx, ok := fn.Results.List[0].Type.(*ast.IndexExpr)
	if !ok {
		return "", false
	}
	switch x := idx.X.(type) {
	case *ast.Ident:
		if x.Name != models.RuntimePreference {
			return "", false
		}
	case *ast.SelectorExpr:
		if x.Sel.Name != models.RuntimePreference {
			return "", false
		}
	default:
		return "", false
	}
	return types.ExprString(idx.Index), true
}

func hasLine(doc *ast.CommentGroup, directive string) bool {
	_, ok := directiveArgs(doc, directive)
	return ok
}

// directiveArgs finds a comment line starting with directive and returns the
// rest of the line as struct-tag style key:"value" pairs.
func directiveArgs(doc *ast.CommentGroup, directive string) (reflect.StructTag, bool) {
	if doc == nil {
		return "", false
	}
	for _, c := range doc.List {
		if c.Text == directive {
			return "", true
		}
		if rest, ok := strings.CutPrefix(c.Text, directive+" "); ok {
			return reflect.StructTag(strings.TrimSpace(rest)), true
		}
	}
	return "", false
}
