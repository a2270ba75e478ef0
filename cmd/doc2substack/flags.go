package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// flagGroup is a set of related flags registered together.
type flagGroup interface {
	register(fs *flag.FlagSet)
}

type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing and math stats")
}

// mathFlags select how math spans become images. Zero values defer to
// config, then to library defaults.
type mathFlags struct {
	dpi          int
	inlineDPI    int
	renderer     string
	imageTimeout string
}

func (f *mathFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&f.dpi, "dpi", 0, "display math image resolution (default 200)")
	fs.IntVar(&f.inlineDPI, "inline-dpi", 0, "inline math image resolution (default 3/4 of dpi)")
	fs.StringVar(&f.renderer, "renderer", "", "math image renderer: webtex, fetch, browser")
	fs.StringVar(&f.imageTimeout, "image-timeout", "", "per-image timeout (e.g., 10s)")
}

type htmlFlags struct {
	title  string
	quotes string
}

func (f *htmlFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.title, "title", "", "page title (default: input file name)")
	fs.StringVar(&f.quotes, "quotes", "", "quotation marks: straight, curly, preserve")
}

type assetFlags struct {
	style     string // name, path or inline CSS
	assetPath string
	noStyle   bool
}

func (f *assetFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.BoolVar(&f.noStyle, "no-style", false, "disable CSS styling")
}

type convertFlags struct {
	common  commonFlags
	output  string
	workers int
	watch   bool
	pandoc  string
	math    mathFlags
	html    htmlFlags
	assets  assetFlags
}

func (f *convertFlags) register(fs *flag.FlagSet) {
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.watch, "watch", false, "reconvert when inputs change")
	fs.StringVar(&f.pandoc, "pandoc", "", "pandoc binary for LaTeX input")

	for _, g := range []flagGroup{&f.common, &f.math, &f.html, &f.assets} {
		g.register(fs)
	}
}

// newConvertFlagSet is shared by argument parsing and completion scripts so
// both see the same flags.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f.register(fs)
	return fs
}

// parseConvertFlags returns the parsed flags and the positional arguments.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	fs.Usage = func() { printConvertUsage(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
