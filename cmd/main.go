package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/stuarthighley/d3dbsp"
)

type CLI struct {
	Input string `arg:"" name:"input" help:"Compiled .d3dbsp file." type:"path"`

	Info                 bool     `help:"Print a size report of every lump."`
	Export               bool     `help:"Export the input file to a .map."`
	ExportPath           string   `help:"Where to write the map. Defaults to <input>_exported.map next to the input." type:"path"`
	ExcludePatches       bool     `help:"Don't export patches."`
	OriginalBrushPortals bool     `help:"Keep the portal brushes of the file instead of rebuilding portals."`
	Tree                 bool     `help:"Print the collision tree."`
	Verbose              bool     `help:"Dump the lump directory." short:"v"`
	Config               []string `help:"YAML files overriding the reconstruction constants." type:"path"`
	Debug                bool     `help:"Whether to enable debug logging."`
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("d3dbsp failed")
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("d3dbsp"),
		kong.Description("Inspect a compiled IBSP level and rebuild an editable map from it."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))
	if err != nil {
		return err
	}
	if _, err := parser.Parse(args); err != nil {
		return err
	}

	if cli.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}
	d3dbsp.SetLogger(log.Logger)

	cfg, err := d3dbsp.LoadConfig(cli.Config...)
	if err != nil {
		return err
	}

	b, err := d3dbsp.Open(cli.Input)
	if err != nil {
		return err
	}

	if cli.Verbose {
		spew.Fdump(stdout, b.Directory())
	}
	if cli.Info {
		if err := b.PrintInfo(stdout, cli.Input); err != nil {
			return err
		}
	}
	if cli.Tree {
		nodes, err := b.CollisionTree()
		if err != nil {
			return err
		}
		d3dbsp.PrintCollisionTree(stdout, nodes)
	}
	if cli.Export {
		opts := d3dbsp.ExportOptions{
			ExcludePatches: cli.ExcludePatches,
			PortalMode:     d3dbsp.PortalsRebuild,
			Config:         cfg,
		}
		if cli.OriginalBrushPortals {
			opts.PortalMode = d3dbsp.PortalsOriginal
		}
		path := cli.ExportPath
		if path == "" {
			path = d3dbsp.DefaultExportPath(cli.Input)
		}
		if err := b.ExportMap(path, opts); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported to '%s'\n", path)
	}
	return nil
}
