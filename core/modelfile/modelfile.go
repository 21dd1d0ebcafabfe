// Package modelfile reads preferences models from YAML documents.
//
//	package: com.app
//	interface: Settings
//	entries:
//	  - name: volume
//	    type: Integer
//	    default: "0"
//	    wrapper: IntPreference
//
// A file may hold several documents separated by "---".
package modelfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tristendillon/prefgen/core/models"
	"gopkg.in/yaml.v3"
)

const Suffix = ".prefs.yaml"

type document struct {
	Package   string         `yaml:"package"`
	Interface string         `yaml:"interface"`
	Entries   []models.Entry `yaml:"entries"`
}

func IsModelFile(path string) bool {
	return strings.HasSuffix(path, Suffix) || strings.HasSuffix(path, ".prefs.yml")
}

func Load(path string) ([]*models.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	return ParseSource(path, data)
}

// ParseSource is Parse with every model's Source set to path.
func ParseSource(path string, data []byte) ([]*models.Model, error) {
	ms, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, m := range ms {
		m.Source = path
	}
	return ms, nil
}

// Parse decodes every document in data. Empty documents are skipped.
func Parse(data []byte) ([]*models.Model, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var out []*models.Model
	for i := 0; ; i++ {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if doc.Interface == "" && doc.Package == "" && len(doc.Entries) == 0 {
			continue
		}

		m := models.NewModel(doc.Package, doc.Interface)
		for _, e := range doc.Entries {
			m.AddEntry(e)
		}
		out = append(out, m)
	}
	return out, nil
}
