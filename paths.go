package ctc

import (
	"github.com/cubicletools/ctc/internal/utils"
)

// PreparePaths makes relative paths absolute against the current working
// directory and rebases them under rootPath for use with a filesystem
// rooted there. Paths outside rootPath fail.
func PreparePaths(paths []string, rootPath string) ([]string, error) {
	return utils.PreparePathsForParser(paths, rootPath, "")
}

// IsStdin reports whether path names standard input ("-", with an
// optional extension).
func IsStdin(path string) bool {
	return utils.IsStdin(path)
}
