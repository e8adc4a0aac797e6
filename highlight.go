package ctc

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/gobwas/glob"

	"github.com/cubicletools/ctc/internal/fsys"
	"github.com/cubicletools/ctc/internal/highlight"
	"github.com/cubicletools/ctc/pkg/errors"
)

// Highlight renders src to w with the named chroma style and formatter.
// Empty names select the chroma fallbacks.
func Highlight(w io.Writer, src []byte, styleName, formatterName string) error {
	return highlight.Render(w, src, styleName, formatterName)
}

// HighlightFile reads path from fx and renders it to w.
func HighlightFile(w io.Writer, fx fs.FS, filePath, styleName, formatterName string) error {
	src, err := fsys.New(fx).ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	return highlight.Render(w, src, styleName, formatterName)
}

// HighlightTree renders every file under dir whose path relative to dir
// matches pattern, in walk order, each preceded by a "==> path <==" header
// line. Pattern syntax is glob with no separator handling, so "*.cub"
// matches at any depth.
func HighlightTree(w io.Writer, fx fs.FS, dir, pattern, styleName, formatterName string) error {
	g, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("%s: %w (%w)", pattern, err, errors.ErrInvalidPath)
	}

	if dir == "" {
		dir = "."
	}

	dir = path.Clean(dir)

	first := true

	return fs.WalkDir(fx, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		rel := p
		if dir != "." {
			rel = strings.TrimPrefix(p, dir+"/")
		}

		if !g.Match(rel) {
			return nil
		}

		if !first {
			fmt.Fprintln(w)
		}

		first = false

		fmt.Fprintf(w, "==> %s <==\n", p)

		return HighlightFile(w, fx, p, styleName, formatterName)
	})
}
