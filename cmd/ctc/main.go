package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"runtime/pprof"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/cubicletools/ctc"
	"github.com/cubicletools/ctc/internal/watch"
	"github.com/cubicletools/ctc/pkg/log"
	"github.com/cubicletools/ctc/pkg/version"
)

type options struct {
	DataPaths     []flags.Filename `short:"d" long:"data" description:"data file path (repeatable, later files win)"`
	Set           []string         `short:"s" long:"set" description:"data override as path=value (repeatable)"`
	DataFormat    *string          `short:"f" long:"data-format" description:"decode all data files as this format" choice:"json" choice:"toml" choice:"yaml" choice:"yml" choice:"properties"`
	OutputPath    *flags.Filename  `short:"o" long:"output" description:"output file path"`
	RootPath      string           `short:"r" long:"root-path" description:"restrict file access to this root directory" default:"/"`
	Watch         bool             `short:"w" long:"watch" description:"re-expand whenever the template or data files change"`
	WatchInterval time.Duration    `long:"watch-interval" description:"quiet period between watch rebuilds" default:"500ms"`
	Verbose       bool             `short:"v" long:"verbose" description:"enable verbose logging"`
	Version       bool             `short:"V" long:"version" description:"print version and exit"`

	CPUProfile *string `short:"c" long:"cpu-profile" description:"write CPU profile to file"`

	Positional struct {
		TemplatePath flags.Filename `positional-arg-name:"templatePath" required:"true" description:"template file path (- for stdin)"`
	} `positional-args:"yes"`
}

func main() {
	debug.SetGCPercent(-1)

	opts := &options{}

	fp := flags.NewParser(opts, flags.Default)
	fp.LongDescription = `
ctc expands cubicle templates against layered data files (YAML, JSON, TOML, properties) into plain cubicle models.

Related tools:
* ctc-diff
* ctc-hl
* ctc-lex
* ctcw`

	_, err := fp.Parse()
	if err != nil {
		os.Exit(1)
	}

	if opts.CPUProfile != nil {
		fh, err := os.Create(*opts.CPUProfile)
		if err != nil {
			fatal(err)
		}

		pprof.StartCPUProfile(fh)
		defer pprof.StopCPUProfile()
	}

	version.PrintVersion(opts.Version)

	if opts.Verbose {
		log.Debug = true
	}

	templatePath := string(opts.Positional.TemplatePath)

	dataPaths := make([]string, len(opts.DataPaths))
	for i, path := range opts.DataPaths {
		dataPaths[i] = string(path)
	}

	dataFormat := ""
	if opts.DataFormat != nil {
		dataFormat = *opts.DataFormat
	}

	if ctc.IsStdin(templatePath) {
		if opts.Watch {
			fatal(fmt.Errorf("cannot watch standard input"))
		}

		expandStdin(opts, dataPaths, dataFormat)

		return
	}

	run := func() error {
		paths, err := ctc.PreparePaths(append([]string{templatePath}, dataPaths...), opts.RootPath)
		if err != nil {
			return err
		}

		root, err := os.OpenRoot(opts.RootPath)
		if err != nil {
			return err
		}
		defer root.Close()

		output, err := ctc.ExpandAs(root.FS(), paths[0], paths[1:], opts.Set, dataFormat)
		if err != nil {
			return err
		}

		return writeOutput(opts, output)
	}

	if err := run(); err != nil {
		if !opts.Watch {
			fatal(err)
		}

		fmt.Fprintf(os.Stderr, "%s\n", err)
	}

	if !opts.Watch {
		return
	}

	w, err := watch.New(opts.WatchInterval, append([]string{templatePath}, dataPaths...)...)
	if err != nil {
		fatal(err)
	}
	defer w.Close()

	for {
		select {
		case <-w.Changes():
			log.Debugf("change detected, re-expanding %s", templatePath)

			if err := run(); err != nil {
				fmt.Fprintf(os.Stderr, "%s\n", err)
			}

		case err := <-w.Errors():
			fmt.Fprintf(os.Stderr, "watch: %s\n", err)
		}
	}
}

func expandStdin(opts *options, dataPaths []string, dataFormat string) {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatal(err)
	}

	paths, err := ctc.PreparePaths(dataPaths, opts.RootPath)
	if err != nil {
		fatal(err)
	}

	root, err := os.OpenRoot(opts.RootPath)
	if err != nil {
		fatal(err)
	}
	defer root.Close()

	doc, err := ctc.LoadDataAs(root.FS(), paths, opts.Set, dataFormat)
	if err != nil {
		fatal(err)
	}

	output, err := ctc.ExpandNamed("stdin", src, doc)
	if err != nil {
		fatal(err)
	}

	if err := writeOutput(opts, output); err != nil {
		fatal(err)
	}
}

func writeOutput(opts *options, output []byte) error {
	if opts.OutputPath == nil {
		_, err := os.Stdout.Write(output)
		return err
	}

	return os.WriteFile(string(*opts.OutputPath), output, 0o644)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}
