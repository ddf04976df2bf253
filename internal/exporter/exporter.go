// Package exporter drives a complete export run: it walks a host scene in
// the container's fixed stage order and writes the container, the material
// files and, optionally, a glTF preview.
package exporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/redux-exporter/internal/anim"
	"github.com/Faultbox/redux-exporter/internal/config"
	"github.com/Faultbox/redux-exporter/internal/material"
	"github.com/Faultbox/redux-exporter/internal/mesh"
	"github.com/Faultbox/redux-exporter/internal/preview"
	"github.com/Faultbox/redux-exporter/internal/scene"
	"github.com/Faultbox/redux-exporter/pkg/chunkio"
	"github.com/Faultbox/redux-exporter/pkg/vcache"
)

// RootName is the name of the synthetic node the hierarchy starts from.
const RootName = "root"

// Options configures one export run.
type Options struct {
	Compression         chunkio.Compression
	MaterialFormat      material.Format
	OptimizeVertexCache bool
	CacheSize           int
	// DefaultEffect is bound to every exported material.
	DefaultEffect string
	// Extension is the container file extension without the dot.
	Extension string
	Preview   bool
	Logger    *zap.Logger
}

// DefaultOptions returns the options of an unconfigured run.
func DefaultOptions() Options {
	return Options{
		Compression:         chunkio.CompressionZlib,
		MaterialFormat:      material.Python,
		OptimizeVertexCache: true,
		CacheSize:           vcache.DefaultCacheSize,
		DefaultEffect:       "blinn_effect",
		Extension:           "rdx",
	}
}

// OptionsFromConfig converts loaded configuration into run options.
func OptionsFromConfig(cfg *config.Config, log *zap.Logger) (Options, error) {
	c, err := chunkio.ParseCompression(cfg.Export.Compression)
	if err != nil {
		return Options{}, err
	}
	f, err := material.ParseFormat(cfg.Export.MaterialFormat)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Compression:         c,
		MaterialFormat:      f,
		OptimizeVertexCache: cfg.Export.OptimizeVertexCache,
		CacheSize:           cfg.Export.CacheSize,
		DefaultEffect:       cfg.Export.DefaultEffect,
		Extension:           cfg.Output.Extension,
		Preview:             cfg.Export.Preview,
		Logger:              log,
	}, nil
}

// Result summarizes a finished run.
type Result struct {
	Container string
	Files     []string // material and preview files
	Tracks    int
	Meshes    int // sub-mesh chunks written
	Cameras   int
	Materials int
	// Skipped lists the nodes left out after a failed host query.
	Skipped []string
	Bytes   int
}

// Export writes scene s to base with the container extension appended.
// Material files and the preview are written next to it. Failed host
// queries skip the element; any other failure aborts the run and no
// container is written.
func Export(s scene.Scene, base string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Extension == "" {
		opts.Extension = "rdx"
	}
	start := time.Now()
	res := &Result{Container: base + "." + opts.Extension}
	log.Info("Starting export", zap.String("output", res.Container), zap.Stringer("compression", opts.Compression))

	w := chunkio.NewWriter(opts.Compression)

	if err := writeHierarchy(w, s.Root()); err != nil {
		return nil, fmt.Errorf("hierarchy: %w", err)
	}

	animation, err := anim.NewBuilder(log.Named("anim")).Build(s)
	if err != nil {
		return nil, fmt.Errorf("animation: %w", err)
	}
	if err := animation.Write(w, log.Named("anim")); err != nil {
		return nil, fmt.Errorf("animation: %w", err)
	}
	res.Tracks = animation.Len()

	lib := material.NewLibrary()
	names := mesh.NewNames()
	me := mesh.NewExporter(w, animation, names, lib, log.Named("mesh"), mesh.Options{
		OptimizeVertexCache: opts.OptimizeVertexCache,
		CacheSize:           opts.CacheSize,
	})
	var glb *preview.Writer
	if opts.Preview {
		glb = preview.New(log.Named("preview"))
		me.SetSink(glb)
	}

	for _, m := range s.Meshes() {
		before := names.Len()
		if err := me.Export(m); err != nil {
			if skip(log, res, err) {
				continue
			}
			return nil, fmt.Errorf("meshes: %w", err)
		}
		res.Meshes += names.Len() - before
	}

	for _, c := range s.Cameras() {
		if err := writeCamera(w, c); err != nil {
			if skip(log, res, err) {
				continue
			}
			return nil, fmt.Errorf("cameras: %w", err)
		}
		res.Cameras++
	}

	if err := w.Finalize(); err != nil {
		return nil, fmt.Errorf("finalizing container: %w", err)
	}
	if err := writeContainer(res.Container, w); err != nil {
		return nil, err
	}
	res.Bytes = containerSize(w)

	files, err := material.Write(base, opts.MaterialFormat, lib, opts.DefaultEffect)
	if err != nil {
		return nil, fmt.Errorf("materials: %w", err)
	}
	res.Files = append(res.Files, files...)
	res.Materials = len(lib.Exportable())

	if glb != nil {
		path := base + ".glb"
		if err := glb.Save(path); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
	}

	log.Info("Export finished",
		zap.Int("tracks", res.Tracks),
		zap.Int("meshes", res.Meshes),
		zap.Int("cameras", res.Cameras),
		zap.Int("materials", res.Materials),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("bytes", res.Bytes),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// skip reports whether err is a host query failure, logging and recording
// the skipped node if so.
func skip(log *zap.Logger, res *Result, err error) bool {
	var qerr *scene.QueryError
	if !errors.As(err, &qerr) {
		return false
	}
	log.Warn("Skipping node after failed query",
		zap.String("node", qerr.Node),
		zap.String("query", qerr.Op),
		zap.Error(qerr.Err))
	res.Skipped = append(res.Skipped, qerr.Node)
	return true
}

func writeContainer(path string, w *chunkio.Writer) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating container: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing container: %w", cerr)
		}
	}()
	if _, err := w.WriteTo(f); err != nil {
		return fmt.Errorf("writing container: %w", err)
	}
	return nil
}

func containerSize(w *chunkio.Writer) int {
	b, err := w.Bytes()
	if err != nil {
		return 0
	}
	return len(b)
}
