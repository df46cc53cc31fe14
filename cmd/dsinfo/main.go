package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/nextgis-borsch/lib-gdal/config"
	"github.com/nextgis-borsch/lib-gdal/driver"
	"github.com/nextgis-borsch/lib-gdal/registry"
)

type options struct {
	configFile  string
	envFile     string
	access      string
	paths       []string
	repeat      int
	interactive bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configFile, "config", "", "Path to YAML config file")
	flag.StringVar(&opts.envFile, "env", ".env", "Env file loaded before the config")
	flag.StringVar(&opts.access, "access", "readonly", "Access mode for path arguments (readonly|update)")
	flag.IntVar(&opts.repeat, "repeat", 1, "Shared opens per data source")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI")
	flag.Parse()
	opts.paths = flag.Args()

	if opts.configFile == "" && len(opts.paths) == 0 && !opts.interactive {
		fmt.Fprintln(os.Stderr, "Usage: dsinfo [-access readonly|update] [-repeat n] <path>...")
		fmt.Fprintln(os.Stderr, "       dsinfo -config dsinfo.yaml")
		fmt.Fprintln(os.Stderr, "       dsinfo -i [path...]  (interactive mode)")
		os.Exit(1)
	}

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if err := config.LoadEnv(opts.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	access, err := registry.ParseAccess(opts.access)
	if err != nil {
		return err
	}
	if opts.repeat < 1 {
		return fmt.Errorf("repeat must be at least 1, got %d", opts.repeat)
	}

	ids, err := cfg.Identifiers()
	if err != nil {
		return err
	}
	for _, p := range opts.paths {
		id, err := registry.NewIdentifier(p, access)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	mgr, err := driver.New(ctx, cfg.Drivers, cfg.DriverOptions())
	if err != nil {
		return err
	}
	mgr.WithLogger(logger.Named("driver"))
	defer mgr.Shutdown(ctx)

	reg := registry.New(mgr, registry.WithLogger(logger.Named("registry")))
	defer func() {
		if err := reg.Close(); err != nil {
			logger.Warn("close registry", zap.Error(err))
		}
	}()

	handles, err := openAll(ctx, reg, ids, opts.repeat)
	if err != nil {
		return err
	}

	if opts.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(ctx, reg)
	}

	fmt.Printf("Drivers: %v\n", mgr.Names())
	fmt.Printf("Shared opens: %d, distinct data sources: %d\n\n", len(handles), reg.OpenCount())
	if _, err := reg.Dump(os.Stdout); err != nil {
		return err
	}

	return releaseAll(handles)
}
