package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/jessevdk/go-flags"

	"github.com/cubicletools/ctc"
	"github.com/cubicletools/ctc/pkg/version"
)

type options struct {
	OutputFormat string          `short:"f" long:"format" description:"output format" choice:"json" choice:"json-pretty" choice:"toml" choice:"yaml" choice:"yml" choice:"properties" default:"json-pretty"`
	Counts       bool            `long:"counts" description:"emit per-category span counts instead of spans"`
	Groups       bool            `long:"groups" description:"count by presentation group (requires --counts)"`
	OutputPath   *flags.Filename `short:"o" long:"output" description:"output file path"`
	Version      bool            `short:"V" long:"version" description:"print version and exit"`

	Positional struct {
		InputPath flags.Filename `positional-arg-name:"inputPath" required:"0" description:"input file path (- or empty for stdin)"`
	} `positional-args:"yes"`
}

func main() {
	debug.SetGCPercent(-1)

	opts := &options{}

	fp := flags.NewParser(opts, flags.Default)
	fp.LongDescription = `
ctc-lex dumps the lexical spans of cubicle source, or per-category counts, in a structured format.

Related tools:
* ctc
* ctc-hl`

	_, err := fp.Parse()
	if err != nil {
		os.Exit(1)
	}

	version.PrintVersion(opts.Version)

	src, err := readInput(string(opts.Positional.InputPath))
	if err != nil {
		fatal(err)
	}

	var output []byte

	switch {
	case opts.Counts && opts.Groups:
		output, err = ctc.GroupCountsOutput(src, opts.OutputFormat)

	case opts.Counts:
		output, err = ctc.CountsOutput(src, opts.OutputFormat)

	case opts.Groups:
		err = fmt.Errorf("--groups requires --counts")

	case opts.OutputFormat == "properties":
		err = fmt.Errorf("properties format requires --counts")

	default:
		output, err = ctc.TokensOutput(src, opts.OutputFormat)
	}

	if err != nil {
		fatal(err)
	}

	if opts.OutputPath == nil {
		_, err = os.Stdout.Write(output)
	} else {
		err = os.WriteFile(string(*opts.OutputPath), output, 0o644)
	}

	if err != nil {
		fatal(err)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || ctc.IsStdin(path) {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(path)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}
