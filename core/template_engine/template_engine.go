package template_engine

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/tristendillon/prefgen/core/logger"
)

//go:embed templates
var TemplateFS embed.FS

type TemplateRef struct {
	Path  string
	IsDir bool
}

func (tr TemplateRef) IsFile() bool {
	return !tr.IsDir
}

func (tr TemplateRef) IsDirectory() bool {
	return tr.IsDir
}

var TEMPLATES = struct {
	GO struct {
		IMPL TemplateRef
	}
	JAVA struct {
		IMPL TemplateRef
	}
	INIT struct {
		Ref    TemplateRef
		CONFIG TemplateRef
	}
}{}

func init() {
	TEMPLATES.GO.IMPL = TemplateRef{Path: "go/impl.go.tmpl"}
	TEMPLATES.JAVA.IMPL = TemplateRef{Path: "java/impl.java.tmpl"}
	TEMPLATES.INIT.Ref = TemplateRef{Path: "init", IsDir: true}
	TEMPLATES.INIT.CONFIG = TemplateRef{Path: "init/prefgen.yaml.tmpl"}
}

type TemplateEngine struct {
	funcMap template.FuncMap
}

func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		funcMap: template.FuncMap{
			"default": func(def, val interface{}) interface{} {
				if val == nil || val == "" {
					return def
				}
				return val
			},
		},
	}
}

// Render executes a file template into memory.
func (te *TemplateEngine) Render(templateRef TemplateRef, data interface{}) ([]byte, error) {
	if templateRef.IsDirectory() {
		return nil, fmt.Errorf("cannot render directory reference: %s", templateRef.Path)
	}

	templatePath := filepath.ToSlash(filepath.Join("templates", templateRef.Path))
	content, err := TemplateFS.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", templatePath, err)
	}

	tmpl, err := template.New(filepath.Base(templateRef.Path)).Funcs(te.funcMap).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateRef.Path, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", templateRef.Path, err)
	}
	return buf.Bytes(), nil
}

func (te *TemplateEngine) GenerateFile(templateRef TemplateRef, outputPath string, data interface{}) error {
	content, err := te.Render(templateRef, data)
	if err != nil {
		return err
	}
	return WriteFile(outputPath, content)
}

// GenerateFolder renders every .tmpl file under a directory reference into
// outputDir, dropping the .tmpl suffix. Other files are copied as-is.
func (te *TemplateEngine) GenerateFolder(templateRef TemplateRef, outputDir string, data interface{}) error {
	if templateRef.IsFile() {
		return fmt.Errorf("cannot generate folder from file reference: %s", templateRef.Path)
	}

	templateDir := filepath.ToSlash(filepath.Join("templates", templateRef.Path))
	logger.Debug("Generating folder from template reference: %s", templateDir)

	return fs.WalkDir(TemplateFS, templateDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == templateDir {
			return nil
		}

		relPath, err := filepath.Rel(templateDir, path)
		if err != nil {
			return err
		}
		outputPath := filepath.Join(outputDir, relPath)

		if d.IsDir() {
			return os.MkdirAll(outputPath, os.ModePerm)
		}

		logger.Debug("Generating file from path: %s", path)
		if !strings.HasSuffix(path, ".tmpl") {
			content, err := TemplateFS.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read template file %s: %w", path, err)
			}
			return WriteFile(outputPath, content)
		}

		rel, err := filepath.Rel("templates", path)
		if err != nil {
			return err
		}
		return te.GenerateFile(TemplateRef{Path: filepath.ToSlash(rel)}, strings.TrimSuffix(outputPath, ".tmpl"), data)
	})
}

func (te *TemplateEngine) ValidateTemplate(templateRef TemplateRef) error {
	templatePath := filepath.ToSlash(filepath.Join("templates", templateRef.Path))

	info, err := fs.Stat(TemplateFS, templatePath)
	if err != nil {
		return fmt.Errorf("template not found: %s", templateRef.Path)
	}

	if info.IsDir() != templateRef.IsDirectory() {
		return fmt.Errorf("template reference type mismatch for %s: expected dir=%t, got dir=%t",
			templateRef.Path, templateRef.IsDirectory(), info.IsDir())
	}

	return nil
}

// WriteFile creates parent directories and writes content.
func WriteFile(outputPath string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outputPath, err)
	}
	return nil
}
