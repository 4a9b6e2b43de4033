// Command simulate runs a scenario file headless and prints the report.
//
//	simulate -format yaml scenarios/double_tap.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"gopkg.in/yaml.v3"

	"manhack-sim/internal/config"
	"manhack-sim/internal/logging"
	"manhack-sim/internal/scenario"
)

func main() {
	format := flag.String("format", "text", "report format: text, yaml or json")
	configDir := flag.String("config", "", "directory holding manhack-sim.yaml for weapon tuning")
	verbose := flag.Bool("v", false, "debug logging to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] scenario.yaml\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *format, *configDir, *verbose, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

func run(path, format, configDir string, verbose bool, out io.Writer) error {
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logging.New(logging.Config{Level: level, Pretty: true}, os.Stderr)

	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}

	opts := scenario.Options{Logger: log}
	if configDir != "" {
		cfg, err := config.Load(configDir)
		if err != nil {
			return err
		}
		p := cfg.WeaponProperties()
		opts.Properties = &p
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := scenario.Run(ctx, sc, opts)
	if err != nil {
		return err
	}

	switch format {
	case "text":
		return rep.WriteText(out)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
