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
	Style      string          `short:"s" long:"style" description:"chroma style name (empty for default)"`
	Formatter  string          `short:"f" long:"formatter" description:"chroma formatter name (empty for terminal, honors NO_COLOR)"`
	TreeRoot   *flags.Filename `short:"r" long:"recursive" description:"highlight all matching files under this directory"`
	Pattern    string          `short:"p" long:"pattern" description:"glob filter for recursive mode" default:"*.cub"`
	OutputPath *flags.Filename `short:"o" long:"output" description:"output file path"`
	Version    bool            `short:"V" long:"version" description:"print version and exit"`

	Positional struct {
		InputPaths []flags.Filename `positional-arg-name:"inputPath" required:"0" description:"input file path (- for stdin)"`
	} `positional-args:"yes"`
}

func main() {
	debug.SetGCPercent(-1)

	opts := &options{}

	fp := flags.NewParser(opts, flags.Default)
	fp.LongDescription = `
ctc-hl renders cubicle source with syntax highlighting through chroma styles and formatters.

Related tools:
* ctc
* ctc-lex`

	_, err := fp.Parse()
	if err != nil {
		os.Exit(1)
	}

	version.PrintVersion(opts.Version)

	formatter := opts.Formatter
	if formatter == "" {
		if os.Getenv("NO_COLOR") != "" {
			formatter = "noop"
		} else {
			formatter = "terminal256"
		}
	}

	out := os.Stdout

	if opts.OutputPath != nil {
		out, err = os.OpenFile(string(*opts.OutputPath), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			fatal(err)
		}
		defer out.Close()
	}

	switch {
	case opts.TreeRoot != nil:
		root, err := os.OpenRoot(string(*opts.TreeRoot))
		if err != nil {
			fatal(err)
		}
		defer root.Close()

		err = ctc.HighlightTree(out, root.FS(), ".", opts.Pattern, opts.Style, formatter)
		if err != nil {
			fatal(err)
		}

	case len(opts.Positional.InputPaths) == 0:
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			fatal(err)
		}

		if err := ctc.Highlight(out, src, opts.Style, formatter); err != nil {
			fatal(err)
		}

	default:
		files := make([]string, len(opts.Positional.InputPaths))
		for i, path := range opts.Positional.InputPaths {
			files[i] = string(path)
		}

		paths, err := ctc.PreparePaths(files, "/")
		if err != nil {
			fatal(err)
		}

		fsys := os.DirFS("/")

		for i, path := range paths {
			if len(paths) > 1 {
				if i > 0 {
					fmt.Fprintln(out)
				}

				fmt.Fprintf(out, "==> %s <==\n", files[i])
			}

			if ctc.IsStdin(files[i]) {
				src, err := io.ReadAll(os.Stdin)
				if err != nil {
					fatal(err)
				}

				if err := ctc.Highlight(out, src, opts.Style, formatter); err != nil {
					fatal(err)
				}

				continue
			}

			if err := ctc.HighlightFile(out, fsys, path, opts.Style, formatter); err != nil {
				fatal(err)
			}
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}
