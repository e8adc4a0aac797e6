// Package wrapper execs a target command after expanding any cubicle
// template arguments into temporary files.
package wrapper

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/exp/slices"

	"github.com/cubicletools/ctc"
	"github.com/cubicletools/ctc/pkg/version"
)

// Data files and overrides come from the environment so the wrapped
// command's own flags pass through untouched. Both lists use the
// platform path list separator.
const (
	DataEnv = "CTC_DATA"
	SetEnv  = "CTC_SET"
)

// WrapOrDie replaces every .cub argument that expands cleanly with a
// temporary file holding its expansion, then execs cmd with the
// rewritten argument list. Arguments that fail to expand pass through
// untouched so plain model files and unrelated paths still reach the
// wrapped command.
func WrapOrDie(cmd string) {
	version.PrintVersion(false)

	cmdPath, err := exec.LookPath(cmd)
	if err != nil {
		fatal(err)
	}

	dataPaths := splitList(os.Getenv(DataEnv))
	overrides := splitList(os.Getenv(SetEnv))

	args := slices.Clone(os.Args[1:])

	for i, arg := range args {
		if !strings.HasSuffix(arg, ".cub") {
			continue
		}

		paths, err := ctc.PreparePaths(append([]string{arg}, dataPaths...), "/")
		if err != nil {
			continue
		}

		output, err := ctc.Expand(os.DirFS("/"), paths[0], paths[1:], overrides)
		if err != nil {
			continue
		}

		pat := fmt.Sprintf(
			"%s.*.%s",
			filepath.Base(os.Args[0]),
			filepath.Base(arg),
		)

		tmp, err := os.CreateTemp("", pat)
		if err != nil {
			fatal(err)
		}

		_, err = tmp.Write(output)
		if err != nil {
			fatal(err)
		}

		args[i] = tmp.Name()

		tmp.Close()
	}

	fatal(syscall.Exec(cmdPath, append([]string{cmd}, args...), os.Environ()))
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}

	return strings.Split(s, string(filepath.ListSeparator))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}
