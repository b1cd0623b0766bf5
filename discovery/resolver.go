package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Config configures module discovery.
type Config struct {
	// Root is the discovery root directory (default: ".").
	Root string

	// Dir is the subdirectory of Root to scan (default: "routes").
	Dir string

	// Ext is the source file extension to match (default: ".go").
	Ext string

	// OutDir is the build output directory under Root that mirrors Dir
	// (default: "build").
	OutDir string

	// ArtifactExt replaces Ext in artifact paths (default: ".so").
	ArtifactExt string

	// SkipTestFiles ignores sources named *_test<Ext>.
	SkipTestFiles bool

	// Verbose logs every discovered module.
	Verbose bool

	// Logger receives diagnostic output (default: slog.Default()).
	Logger *slog.Logger

	// FS is the filesystem scanned for sources (default: osfs rooted at Root).
	FS billy.Filesystem

	// Loader loads each module (default: PluginLoader{}).
	Loader Loader
}

func (c Config) withDefaults() Config {
	if c.Root == "" {
		c.Root = "."
	}
	if c.Dir == "" {
		c.Dir = "routes"
	}
	if c.Ext == "" {
		c.Ext = ".go"
	}
	if c.OutDir == "" {
		c.OutDir = "build"
	}
	if c.ArtifactExt == "" {
		c.ArtifactExt = ".so"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.FS == nil {
		c.FS = osfs.New(c.Root)
	}
	if c.Loader == nil {
		c.Loader = PluginLoader{}
	}
	return c
}

// Resolver discovers and loads route modules. Discovery runs at most once:
// after a successful Resolve the entries are cached.
type Resolver struct {
	cfg Config

	mu      sync.Mutex
	loaded  bool
	entries []Entry
}

// NewResolver returns a resolver for the given config.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg.withDefaults()}
}

// Scan walks the configured directory and returns one descriptor per
// matching source file, ordered by mount path. A missing directory holds no
// modules.
func (r *Resolver) Scan(ctx context.Context) ([]Descriptor, error) {
	cfg := r.cfg
	testSuffix := "_test" + cfg.Ext

	if _, err := cfg.FS.Stat(cfg.Dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var descs []Descriptor
	err := util.Walk(cfg.FS, cfg.Dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() || !strings.HasSuffix(p, cfg.Ext) {
			return nil
		}
		if cfg.SkipTestFiles && strings.HasSuffix(p, testSuffix) {
			return nil
		}

		rel, err := filepath.Rel(cfg.Dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		mountPath := strings.TrimSuffix(rel, cfg.Ext)

		descs = append(descs, Descriptor{
			MountPath: mountPath,
			Source:    p,
			Artifact:  filepath.Join(cfg.Root, cfg.OutDir, filepath.FromSlash(mountPath+cfg.ArtifactExt)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: scan %s: %w", path.Join(cfg.Root, filepath.ToSlash(cfg.Dir)), err)
	}

	slices.SortFunc(descs, func(a, b Descriptor) int {
		return strings.Compare(a.MountPath, b.MountPath)
	})

	return descs, nil
}

// Resolve scans and loads every module in order, one at a time. Any failure
// aborts the whole resolve and nothing is cached.
func (r *Resolver) Resolve(ctx context.Context) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return slices.Clone(r.entries), nil
	}

	descs, err := r.Scan(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(descs))
	for _, d := range descs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, err := r.load(ctx, d)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	r.entries = entries
	r.loaded = true

	return slices.Clone(entries), nil
}

func (r *Resolver) load(ctx context.Context, d Descriptor) (Entry, error) {
	if r.cfg.Verbose {
		r.cfg.Logger.Info("loading router", "mount", d.MountPath, "artifact", d.Artifact)
	}

	v, err := r.cfg.Loader.Load(ctx, d)
	if err != nil {
		return Entry{}, &LoadError{MountPath: d.MountPath, Artifact: d.Artifact, Err: err}
	}

	rt, err := unwrap(v)
	if err != nil {
		return Entry{}, &LoadError{MountPath: d.MountPath, Artifact: d.Artifact, Err: fmt.Errorf("%w (got %T)", err, v)}
	}

	return Entry{
		Path:    d.MountPath,
		Router:  rt,
		Schemas: schemasOf(v),
	}, nil
}
