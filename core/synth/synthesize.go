// Package synth maps a preferences model to the description of its generated
// implementation type. It performs no I/O and holds no state between calls, so
// Synthesize may be called concurrently for independent models.
package synth

import (
	"fmt"

	"github.com/tristendillon/prefgen/core/models"
)

// Local names used inside the generated constructor.
const (
	ContextParam = "context"
	StoreLocal   = "sharedPreferences"
	adapterLocal = "adapter"
)

// Synthesize builds the output type for model. Incomplete models are rejected
// before anything is built.
func Synthesize(model *models.Model, opts ...Option) (*models.OutputType, error) {
	if err := Validate(model); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	entries := model.Entries()

	out := &models.OutputType{
		PackageName: model.PackageName,
		Name:        model.ImplName(),
		Implements:  models.TypeRef{Kind: models.UserRef, Name: model.OriginTypeName},
		StoreKey:    model.StoreKey(),
		Fields:      make([]models.Field, 0, len(entries)),
		Accessors:   make([]models.Accessor, 0, len(entries)),
	}

	for _, entry := range entries {
		out.Fields = append(out.Fields, createField(entry))
	}
	for _, field := range out.Fields {
		out.Accessors = append(out.Accessors, createAccessor(field))
	}
	out.Constructor = createConstructor(out.StoreKey, entries, cfg)

	return out, nil
}

// MustSynthesize is Synthesize for models known to be complete.
func MustSynthesize(model *models.Model, opts ...Option) *models.OutputType {
	out, err := Synthesize(model, opts...)
	if err != nil {
		panic(fmt.Sprintf("synth: %v", err))
	}
	return out
}

// AdapterLocalName is the constructor-local variable holding an instance of adapterType.
func AdapterLocalName(adapterType string) string {
	ref := models.TypeRef{Name: adapterType}
	return adapterLocal + ref.SimpleName()
}

func createField(entry models.Entry) models.Field {
	return models.Field{
		Name: entry.Name,
		Type: preferenceOf(entry.ValueType),
	}
}

func preferenceOf(valueType string) models.TypeRef {
	return models.TypeRef{
		Kind: models.RuntimeRef,
		Name: models.RuntimePreference,
		Args: []models.TypeRef{{Kind: models.UserRef, Name: valueType}},
	}
}

func createAccessor(field models.Field) models.Accessor {
	return models.Accessor{
		Name:    field.Name,
		Returns: field.Type,
		Field:   field.Name,
	}
}

func createConstructor(storeKey string, entries []models.Entry, cfg config) models.Constructor {
	ctor := models.Constructor{
		Param: models.Parameter{
			Name: ContextParam,
			Type: models.TypeRef{Kind: models.RuntimeRef, Name: models.RuntimeContext},
		},
	}

	ctor.Statements = append(ctor.Statements, models.Statement{
		Kind:   models.OpenStore,
		Target: StoreLocal,
		Type:   models.TypeRef{Kind: models.RuntimeRef, Name: models.RuntimeStore},
		Args:   []models.Expr{models.StringExpr(storeKey)},
	})

	// Adapters are declared before any field initializer that references them.
	declared := make(map[string]bool)
	for _, entry := range entries {
		if !entry.HasAdapter() {
			continue
		}
		local := AdapterLocalName(entry.Adapter)
		if cfg.adapterPolicy == AdapterDedup && declared[local] {
			continue
		}
		declared[local] = true
		ctor.Statements = append(ctor.Statements, adapterInitializer(entry.Adapter, local)...)
	}

	for _, entry := range entries {
		ctor.Statements = append(ctor.Statements, fieldInitializer(entry))
	}

	return ctor
}

func adapterInitializer(adapterType, local string) []models.Statement {
	return []models.Statement{
		{
			Kind:   models.NewAdapter,
			Target: local,
			Type:   models.TypeRef{Kind: models.UserRef, Name: adapterType},
		},
		{
			Kind:   models.InitAdapter,
			Target: local,
			Args:   []models.Expr{models.IdentExpr(ContextParam)},
		},
	}
}

func fieldInitializer(entry models.Entry) models.Statement {
	args := []models.Expr{
		models.IdentExpr(StoreLocal),
		models.StringExpr(entry.Name),
		models.RawExpr(entry.DefaultValue),
	}
	if entry.HasAdapter() {
		args = append(args, models.IdentExpr(AdapterLocalName(entry.Adapter)))
	}
	return models.Statement{
		Kind:   models.InitField,
		Target: entry.Name,
		Type:   models.TypeRef{Kind: models.RuntimeRef, Name: entry.Wrapper},
		Args:   args,
	}
}
