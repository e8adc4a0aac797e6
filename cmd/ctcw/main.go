package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/cubicletools/ctc/pkg/wrapper"
)

func main() {
	debug.SetGCPercent(-1)
	cmd := filepath.Base(os.Args[0])

	switch {
	case cmd == "ctcw":
		cmd = "cubicle"
	case strings.HasSuffix(cmd, "w"):
		cmd = strings.TrimSuffix(cmd, "w")
	default:
		fatal(fmt.Errorf(`Usage:
  ctcw model.cub ...         # expands .cub arguments, then runs 'cubicle'
  ln -s $(which ctcw) toolw  # toolw will run 'tool'

Set CTC_DATA (path-separated data files) and CTC_SET (path-separated
path=value overrides) to feed the expansion.`))
	}

	wrapper.WrapOrDie(cmd)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}
