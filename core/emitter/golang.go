package emitter

import (
	"fmt"
	"go/format"
	"go/token"
	"path"
	"strconv"
	"strings"

	"github.com/tristendillon/prefgen/core/models"
	"github.com/tristendillon/prefgen/core/shared"
	"github.com/tristendillon/prefgen/core/template_engine"
)

const runtimeAlias = "prefs"

// GoFileSuffix ends every generated Go file name.
const GoFileSuffix = "_prefs_gen.go"

// GoRenderer prints output types as gofmt'ed Go. Fields are unexported and
// accessors exported, since Go forbids a field and method sharing a name.
type GoRenderer struct {
	opts   Options
	engine *template_engine.TemplateEngine
}

func NewGoRenderer(opts Options) *GoRenderer {
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = "github.com/tristendillon/prefgen/prefs"
	}
	return &GoRenderer{opts: opts, engine: template_engine.NewTemplateEngine()}
}

func (r *GoRenderer) Name() string {
	return "go"
}

func (r *GoRenderer) FileName(out *models.OutputType) string {
	return shared.SnakeCase(out.Implements.SimpleName()) + GoFileSuffix
}

type goMember struct {
	Name  string
	Type  string
	Field string
}

type goFile struct {
	Source        string
	Package       string
	RuntimeAlias  string
	RuntimeImport string
	Implements    string
	Name          string
	Param         string
	ParamType     string
	Fields        []goMember
	Accessors     []goMember
	Body          []string
}

func (r *GoRenderer) Render(out *models.OutputType) ([]byte, error) {
	file := goFile{
		Source:        r.opts.Source,
		Package:       r.packageName(out),
		RuntimeImport: r.opts.RuntimeImport,
		Implements:    r.typeString(out.Implements),
		Name:          out.Name,
		Param:         out.Constructor.Param.Name,
		ParamType:     r.typeString(out.Constructor.Param.Type),
	}
	if path.Base(r.opts.RuntimeImport) != runtimeAlias {
		file.RuntimeAlias = runtimeAlias
	}

	for _, f := range out.Fields {
		file.Fields = append(file.Fields, goMember{Name: goField(f.Name), Type: r.typeString(f.Type)})
	}
	for _, a := range out.Accessors {
		file.Accessors = append(file.Accessors, goMember{
			Name:  shared.ToTitle(a.Name),
			Type:  r.typeString(a.Returns),
			Field: goField(a.Field),
		})
	}

	storeUsed := false
	for _, st := range out.Constructor.Statements {
		line, err := r.statement(st, file.Param)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", out.Name, err)
		}
		file.Body = append(file.Body, line)
		if st.Kind == models.InitField {
			storeUsed = true
		}
	}
	if !storeUsed {
		for _, st := range out.Constructor.Statements {
			if st.Kind == models.OpenStore {
				file.Body = append(file.Body, "_ = "+st.Target)
			}
		}
	}

	raw, err := r.engine.Render(template_engine.TEMPLATES.GO.IMPL, file)
	if err != nil {
		return nil, err
	}
	formatted, err := format.Source(raw)
	if err != nil {
		return raw, fmt.Errorf("generated source for %s does not parse: %w", out.Name, err)
	}
	return formatted, nil
}

func (r *GoRenderer) packageName(out *models.OutputType) string {
	if r.opts.GoPackage != "" {
		return r.opts.GoPackage
	}
	name := out.PackageName
	if i := strings.LastIndexAny(name, "./"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "main"
	}
	return name
}

func (r *GoRenderer) typeString(ref models.TypeRef) string {
	name := ref.Name
	if ref.Kind == models.RuntimeRef && !strings.Contains(name, ".") {
		name = runtimeAlias + "." + name
	}
	if len(ref.Args) == 0 {
		return name
	}
	args := make([]string, len(ref.Args))
	for i, a := range ref.Args {
		args[i] = r.typeString(a)
	}
	return name + "[" + strings.Join(args, ", ") + "]"
}

func (r *GoRenderer) constructorName(ref models.TypeRef) string {
	if strings.Contains(ref.Name, ".") {
		return ref.Name
	}
	return runtimeAlias + ".New" + ref.Name
}

func (r *GoRenderer) statement(st models.Statement, param string) (string, error) {
	switch st.Kind {
	case models.OpenStore:
		return fmt.Sprintf("%s := %s.Store(%s, %s.ModePrivate)",
			st.Target, param, goExpr(st.Args[0]), runtimeAlias), nil
	case models.NewAdapter:
		return fmt.Sprintf("%s := new(%s)", st.Target, r.typeString(st.Type)), nil
	case models.InitAdapter:
		return fmt.Sprintf("%s.Init(%s)", st.Target, goExprs(st.Args)), nil
	case models.InitField:
		return fmt.Sprintf("impl.%s = %s(%s)",
			goField(st.Target), r.constructorName(st.Type), goExprs(st.Args)), nil
	default:
		return "", fmt.Errorf("unsupported statement %s", st.Kind)
	}
}

// goField is the unexported struct field for a member. Names that lower to a
// keyword, such as Type or Func, get a trailing underscore.
func goField(name string) string {
	field := shared.LowerFirst(name)
	if token.IsKeyword(field) {
		field += "_"
	}
	return field
}

func goExpr(e models.Expr) string {
	switch e.Kind {
	case models.String:
		return strconv.Quote(e.Value)
	default:
		return e.Value
	}
}

func goExprs(es []models.Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = goExpr(e)
	}
	return strings.Join(parts, ", ")
}
