// Package ctc compiles cubicle templates into plain cubicle models.
//
// A template is a cubicle model whose names may carry @...@ references.
// Expansion resolves the references against layered data files, instantiates
// templated declarations once per matching data entry, and prints the result
// as plain cubicle source. The package also exposes the lexical classifier
// (pkg/syntax) through helpers for span dumps, category counts, syntax
// highlighting, and expanded-output comparison.
package ctc

import (
	"fmt"
	"io/fs"

	"github.com/cubicletools/ctc/internal/data"
	"github.com/cubicletools/ctc/internal/fsys"
	"github.com/cubicletools/ctc/internal/parser"
	"github.com/cubicletools/ctc/internal/printer"
	"github.com/cubicletools/ctc/internal/template"
	"github.com/cubicletools/ctc/internal/utils"
	"github.com/cubicletools/ctc/pkg/errors"
	"github.com/cubicletools/ctc/pkg/log"
)

// Expand loads the template at templatePath, layers the data files in order
// (later files win key by key), applies path=value overrides on top, and
// returns the expanded model as cubicle source.
func Expand(fx fs.FS, templatePath string, dataPaths []string, overrides []string) ([]byte, error) {
	return ExpandAs(fx, templatePath, dataPaths, overrides, "")
}

// ExpandAs is Expand with every data file decoded as the named format
// instead of by extension. An empty formatName selects by extension.
func ExpandAs(fx fs.FS, templatePath string, dataPaths []string, overrides []string, formatName string) ([]byte, error) {
	src, err := fsys.New(fx).ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", templatePath, err)
	}

	doc, err := LoadDataAs(fx, dataPaths, overrides, formatName)
	if err != nil {
		return nil, err
	}

	return ExpandNamed(templatePath, src, doc)
}

// ExpandBytes expands an in-memory template against an in-memory data
// document.
func ExpandBytes(src []byte, doc map[string]any) ([]byte, error) {
	return ExpandNamed("template", src, doc)
}

// ExpandNamed is ExpandBytes with a template name for error messages.
func ExpandNamed(name string, src []byte, doc map[string]any) ([]byte, error) {
	log.Debugf("parsing %s", name)

	m, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	log.Debugf("expanding %s", name)

	expanded, err := template.Expand(m, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return printer.Source(expanded), nil
}

// LoadData reads the data files in order, merging each over the previous
// (maps merge recursively, scalars and lists replace), then applies
// path=value overrides.
func LoadData(fx fs.FS, paths []string, overrides []string) (map[string]any, error) {
	return LoadDataAs(fx, paths, overrides, "")
}

// LoadDataAs is LoadData with every file decoded as the named format
// instead of by extension. An empty formatName selects by extension; a
// path with neither resolves by probing the known extensions.
func LoadDataAs(fx fs.FS, paths []string, overrides []string, formatName string) (map[string]any, error) {
	f := fsys.New(fx)

	doc := map[string]any{}

	for _, path := range paths {
		name := formatName
		if name == "" {
			name = utils.Ext(path)
		}

		if name == "" {
			realPath := f.FindFile(path)
			if realPath == "" {
				return nil, fmt.Errorf("%s.*: %w", path, errors.ErrMissingFile)
			}

			path = realPath
			name = utils.Ext(path)
		}

		layer, err := data.LoadAs(f, path, name)
		if err != nil {
			return nil, err
		}

		doc = data.Merge(doc, layer)
	}

	for _, override := range overrides {
		if err := data.ApplySet(doc, override); err != nil {
			return nil, err
		}
	}

	return doc, nil
}
