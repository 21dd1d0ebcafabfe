package emitter

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode"

	"github.com/tristendillon/prefgen/core/models"
	"github.com/tristendillon/prefgen/core/shared"
	"github.com/tristendillon/prefgen/core/template_engine"
)

const (
	javaBasePackage     = "de.appsfactory.mvp.preferences"
	javaConcretePackage = javaBasePackage + ".concrete"
	javaContextClass    = "android.content.Context"
	javaStoreClass      = "android.content.SharedPreferences"
)

// JavaRenderer prints output types as Android Java classes backed by
// SharedPreferences.
type JavaRenderer struct {
	opts   Options
	engine *template_engine.TemplateEngine
}

func NewJavaRenderer(opts Options) *JavaRenderer {
	return &JavaRenderer{opts: opts, engine: template_engine.NewTemplateEngine()}
}

func (r *JavaRenderer) Name() string {
	return "java"
}

func (r *JavaRenderer) FileName(out *models.OutputType) string {
	dir := strings.ReplaceAll(out.PackageName, ".", "/")
	return path.Join(dir, out.Name+".java")
}

type javaFile struct {
	Package    string
	Imports    []string
	Implements string
	Name       string
	Param      string
	ParamType  string
	Fields     []goMember
	Accessors  []goMember
	Body       []string
}

// javaImports collects the qualified names a class body refers to by simple name.
type javaImports struct {
	pkg   string
	names map[string]bool
}

func (ji *javaImports) use(qualified string) string {
	base := shared.BaseName(qualified)
	typeArgs := qualified[len(base):]
	i := strings.LastIndex(base, ".")
	if i < 0 {
		return qualified
	}
	pkg, simple := base[:i], base[i+1:]
	if pkg != ji.pkg && pkg != "java.lang" {
		ji.names[base] = true
	}
	return simple + typeArgs
}

func (ji *javaImports) sorted() []string {
	out := make([]string, 0, len(ji.names))
	for name := range ji.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *JavaRenderer) Render(out *models.OutputType) ([]byte, error) {
	imports := &javaImports{pkg: out.PackageName, names: make(map[string]bool)}

	file := javaFile{
		Package:    out.PackageName,
		Implements: r.typeString(imports, out.Implements),
		Name:       out.Name,
		Param:      out.Constructor.Param.Name,
		ParamType:  r.typeString(imports, out.Constructor.Param.Type),
	}

	for _, f := range out.Fields {
		file.Fields = append(file.Fields, goMember{Name: f.Name, Type: r.typeString(imports, f.Type)})
	}
	for _, a := range out.Accessors {
		file.Accessors = append(file.Accessors, goMember{Name: a.Name, Type: r.typeString(imports, a.Returns), Field: a.Field})
	}

	for _, st := range out.Constructor.Statements {
		line, err := r.statement(imports, st, file.Param)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", out.Name, err)
		}
		file.Body = append(file.Body, line)
	}
	file.Imports = imports.sorted()

	return r.engine.Render(template_engine.TEMPLATES.JAVA.IMPL, file)
}

func (r *JavaRenderer) qualify(ref models.TypeRef) string {
	if ref.Kind != models.RuntimeRef || strings.Contains(ref.Name, ".") {
		return ref.Name
	}
	switch ref.Name {
	case models.RuntimeContext:
		return javaContextClass
	case models.RuntimeStore:
		return javaStoreClass
	case models.RuntimePreference:
		return javaBasePackage + "." + ref.Name
	default:
		return javaConcretePackage + "." + ref.Name
	}
}

func (r *JavaRenderer) typeString(imports *javaImports, ref models.TypeRef) string {
	name := imports.use(r.qualify(ref))
	if len(ref.Args) == 0 {
		return name
	}
	args := make([]string, len(ref.Args))
	for i, a := range ref.Args {
		args[i] = r.typeString(imports, a)
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

func (r *JavaRenderer) statement(imports *javaImports, st models.Statement, param string) (string, error) {
	switch st.Kind {
	case models.OpenStore:
		store := r.typeString(imports, st.Type)
		ctx := imports.use(javaContextClass)
		return fmt.Sprintf("final %s %s = %s.getSharedPreferences(%s, %s.MODE_PRIVATE);",
			store, st.Target, param, javaExpr(st.Args[0]), ctx), nil
	case models.NewAdapter:
		t := r.typeString(imports, st.Type)
		return fmt.Sprintf("%s %s = new %s();", t, st.Target, t), nil
	case models.InitAdapter:
		return fmt.Sprintf("%s.init(%s);", st.Target, javaExprs(st.Args)), nil
	case models.InitField:
		return fmt.Sprintf("%s = new %s(%s);", st.Target, r.typeString(imports, st.Type), javaExprs(st.Args)), nil
	default:
		return "", fmt.Errorf("unsupported statement %s", st.Kind)
	}
}

func javaExpr(e models.Expr) string {
	if e.Kind == models.String {
		return javaQuote(e.Value)
	}
	return e.Value
}

// javaQuote writes s as a Java string literal. Control characters without a
// short escape become \uXXXX; everything else is kept as written.
func javaQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if unicode.IsControl(r) {
				fmt.Fprintf(&b, `\u%04x`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func javaExprs(es []models.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = javaExpr(e)
	}
	return strings.Join(parts, ", ")
}
