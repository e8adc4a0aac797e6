package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/jessevdk/go-flags"

	"github.com/cubicletools/ctc"
	"github.com/cubicletools/ctc/pkg/version"
)

type options struct {
	DataPaths  []flags.Filename `short:"d" long:"data" description:"data file path (repeatable, later files win)"`
	Set        []string         `short:"s" long:"set" description:"data override as path=value (repeatable)"`
	RootPath   string           `short:"r" long:"root-path" description:"restrict file access to this root directory" default:"/"`
	OutputPath *flags.Filename  `short:"o" long:"output" description:"output file path"`
	Version    bool             `short:"V" long:"version" description:"print version and exit"`

	Positional struct {
		BasePath   flags.Filename `positional-arg-name:"basePath" required:"true" description:"base template file path"`
		TargetPath flags.Filename `positional-arg-name:"targetPath" required:"true" description:"target template file path"`
	} `positional-args:"yes"`
}

func main() {
	debug.SetGCPercent(-1)

	opts := &options{}

	fp := flags.NewParser(opts, flags.Default)
	fp.LongDescription = `
ctc-diff expands two cubicle templates against the same data files and prints their unified diff.

Related tools:
* ctc
* ctc-hl`

	_, err := fp.Parse()
	if err != nil {
		os.Exit(1)
	}

	version.PrintVersion(opts.Version)

	files := []string{
		string(opts.Positional.BasePath),
		string(opts.Positional.TargetPath),
	}

	for _, path := range opts.DataPaths {
		files = append(files, string(path))
	}

	paths, err := ctc.PreparePaths(files, opts.RootPath)
	if err != nil {
		fatal(err)
	}

	root, err := os.OpenRoot(opts.RootPath)
	if err != nil {
		fatal(err)
	}
	defer root.Close()

	result, err := ctc.Compare(root.FS(), paths[0], paths[1], paths[2:], opts.Set)
	if err != nil {
		fatal(err)
	}

	if opts.OutputPath == nil {
		_, err = os.Stdout.WriteString(result.Diff)
	} else {
		err = os.WriteFile(string(*opts.OutputPath), []byte(result.Diff), 0o644)
	}

	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}
