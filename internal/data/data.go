// Package data loads and layers template input data.
package data

import (
	"fmt"
	"strings"

	"github.com/cubicletools/ctc/internal/format"
	"github.com/cubicletools/ctc/internal/fsys"
	"github.com/cubicletools/ctc/internal/pathutil"
	"github.com/cubicletools/ctc/internal/utils"
	"github.com/cubicletools/ctc/pkg/errors"
)

// Load reads one data file, decoding by filename extension.
func Load(f *fsys.FS, path string) (map[string]any, error) {
	return LoadAs(f, path, utils.Ext(path))
}

// LoadAs reads one data file, decoding with the named format.
func LoadAs(f *fsys.FS, path, formatName string) (map[string]any, error) {
	raw, err := f.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	doc, err := Decode(raw, formatName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

// Decode decodes raw data with the named format. The top level must be a
// map; an empty document decodes to an empty map.
func Decode(raw []byte, formatName string) (map[string]any, error) {
	ft, err := format.Get(formatName)
	if err != nil {
		return nil, err
	}

	doc, err := ft.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w / %w", err, errors.ErrDecode)
	}

	switch doc2 := doc.(type) {
	case nil:
		return map[string]any{}, nil

	case map[string]any:
		return doc2, nil

	default:
		return nil, fmt.Errorf("top-level %T is not a map (%w)", doc, errors.ErrDataFormat)
	}
}

// Merge layers src over dst in place. Maps merge recursively; scalars
// and lists replace.
func Merge(dst map[string]any, src map[string]any) map[string]any {
	return mergeMapMap(dst, src)
}

func merge(dst any, src any) any {
	switch dst2 := dst.(type) {
	case map[string]any:
		return mergeMap(dst2, src)

	case nil:
		return src

	default:
		return src
	}
}

func mergeMap(dst map[string]any, src any) any {
	switch src2 := src.(type) {
	case map[string]any:
		return mergeMapMap(dst, src2)

	case nil:
		return dst

	default:
		return src
	}
}

func mergeMapMap(dst map[string]any, src map[string]any) map[string]any {
	for k, v := range src {
		existing, found := dst[k]
		if found {
			dst[k] = merge(existing, v)
		} else {
			dst[k] = v
		}
	}

	return dst
}

// ApplySet applies one path=value override. The value is decoded as
// YAML so numbers and booleans keep their types.
func ApplySet(data map[string]any, spec string) error {
	path, val, found := strings.Cut(spec, "=")
	if !found || path == "" {
		return fmt.Errorf("%q: want path=value (%w)", spec, errors.ErrInvalidPath)
	}

	ft, err := format.Get("yaml")
	if err != nil {
		return err
	}

	doc, err := ft.Unmarshal([]byte(val))
	if err != nil {
		return fmt.Errorf("%q: %w / %w", spec, err, errors.ErrDecode)
	}

	pathutil.Set(data, pathutil.SplitPath(path), doc)

	return nil
}
