// Package format is the codec registry for data files and structured
// output. Data for template expansion loads through it, and span dumps and
// category counts marshal through it.
package format

import (
	"fmt"

	"github.com/cubicletools/ctc/pkg/errors"
	"github.com/cubicletools/ctc/polyfill"
)

// Format handles marshaling and unmarshaling for a specific file format.
type Format struct {
	Marshal   func(any) ([]byte, error)
	Unmarshal func([]byte) (any, error)
}

var formatByExtension = map[string]Format{
	"json": {
		Marshal:   jsonMarshal,
		Unmarshal: jsonUnmarshal,
	},
	"json-pretty": {
		Marshal:   jsonMarshalPretty,
		Unmarshal: jsonUnmarshal,
	},
	"toml": {
		Marshal:   tomlMarshal,
		Unmarshal: tomlUnmarshal,
	},
	"yaml": {
		Marshal:   yamlMarshal,
		Unmarshal: yamlUnmarshal,
	},
	"yml": {
		Marshal:   yamlMarshal,
		Unmarshal: yamlUnmarshal,
	},
	"properties": {
		Marshal:   propertiesMarshal,
		Unmarshal: propertiesUnmarshal,
	},
}

// Get retrieves a format by name from the registry.
func Get(name string) (*Format, error) {
	ft, found := formatByExtension[name]
	if !found {
		return nil, fmt.Errorf("%s: %w", name, errors.ErrUnknownFormat)
	}

	return &ft, nil
}

// Extensions returns all supported format extensions, sorted.
func Extensions() []string {
	exts := polyfill.MapsKeys(formatByExtension)
	polyfill.SlicesSort(exts)

	return exts
}
