// rdxexport converts a YAML scene description into an .rdx container with
// its material files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/redux-exporter/internal/config"
	"github.com/Faultbox/redux-exporter/internal/exporter"
	"github.com/Faultbox/redux-exporter/internal/logger"
	"github.com/Faultbox/redux-exporter/internal/scene/memscene"
)

var (
	flagScene = flag.String("scene", "", "Scene description (YAML)")
	flagOut   = flag.String("out", "", "Output base path without extension (default: scene name)")
)

func main() {
	config.ParseFlags()

	if *flagScene == "" {
		fmt.Fprintln(os.Stderr, "Usage: rdxexport -scene <scene.yaml> [-out path/name] [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.SaveRequested() {
		path, err := cfg.Save()
		if err != nil {
			logger.Error("saving config failed", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
		logger.Info("Saved config", zap.String("path", path))
	}

	if err := run(cfg, *flagScene, *flagOut); err != nil {
		logger.Error("export failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, scenePath, out string) error {
	if out == "" {
		out = strings.TrimSuffix(scenePath, filepath.Ext(scenePath))
	}

	logger.Debug("Loading scene", zap.String("scene", scenePath), zap.String("out", out))
	s, err := memscene.Load(scenePath)
	if err != nil {
		return err
	}

	opts, err := exporter.OptionsFromConfig(cfg, logger.Named("export"))
	if err != nil {
		return err
	}

	res, err := exporter.Export(s, out, opts)
	if err != nil {
		return err
	}

	logger.Info("Export finished",
		zap.String("container", res.Container),
		zap.Int("meshes", res.Meshes),
		zap.Int("skipped", len(res.Skipped)))
	for _, n := range res.Skipped {
		logger.Warn("Node left out of export", zap.String("node", n))
	}

	fmt.Printf("Wrote %s (%d bytes)\n", res.Container, res.Bytes)
	for _, f := range res.Files {
		fmt.Printf("Wrote %s\n", f)
	}
	fmt.Printf("Tracks: %d  Meshes: %d  Cameras: %d  Materials: %d\n",
		res.Tracks, res.Meshes, res.Cameras, res.Materials)
	if len(res.Skipped) > 0 {
		fmt.Printf("Skipped %d node(s):\n", len(res.Skipped))
		for _, n := range res.Skipped {
			fmt.Printf("  %s\n", n)
		}
	}
	return nil
}
