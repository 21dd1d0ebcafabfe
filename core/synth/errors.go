package synth

import (
	"errors"
	"fmt"

	"github.com/tristendillon/prefgen/core/models"
)

// ErrIncompleteModel classifies every validation failure.
var ErrIncompleteModel = errors.New("incomplete model")

// ModelError identifies the model, entry and attribute that failed validation.
// Index is -1 when the problem is on the model itself.
type ModelError struct {
	Origin    string
	Index     int
	Entry     string
	Attribute string
}

func (e *ModelError) Error() string {
	if e == nil {
		return "<nil>"
	}
	origin := e.Origin
	if origin == "" {
		origin = "<unnamed>"
	}
	if e.Index < 0 {
		return fmt.Sprintf("%s: model %s: missing %s", ErrIncompleteModel, origin, e.Attribute)
	}
	entry := e.Entry
	if entry == "" {
		entry = "<unnamed>"
	}
	return fmt.Sprintf("%s: model %s: entry #%d (%s): missing %s",
		ErrIncompleteModel, origin, e.Index, entry, e.Attribute)
}

func (e *ModelError) Unwrap() error {
	return ErrIncompleteModel
}

// Validate checks that every required attribute is present. It does not look at
// names, types or expressions beyond presence. All problems are reported at once.
func Validate(model *models.Model) error {
	if model == nil {
		return fmt.Errorf("%w: nil model", ErrIncompleteModel)
	}

	var errs []error
	if model.OriginTypeName == "" {
		errs = append(errs, &ModelError{Index: -1, Attribute: "origin type name"})
	}

	for i, entry := range model.Entries() {
		missing := func(attr string) {
			errs = append(errs, &ModelError{
				Origin:    model.OriginTypeName,
				Index:     i,
				Entry:     entry.Name,
				Attribute: attr,
			})
		}
		if entry.Name == "" {
			missing("name")
		}
		if entry.ValueType == "" {
			missing("value type")
		}
		if entry.DefaultValue == "" {
			missing("default value")
		}
		if entry.Wrapper == "" {
			missing("wrapper")
		}
	}

	return errors.Join(errs...)
}
