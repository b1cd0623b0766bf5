package discovery

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/autoroute/router"
)

func newFS(t *testing.T, files ...string) billy.Filesystem {
	t.Helper()

	fs := memfs.New()
	for _, f := range files {
		require.NoError(t, util.WriteFile(fs, f, []byte("package main\n"), 0o644))
	}
	return fs
}

// routerLoader returns a fresh router per module and counts calls.
type routerLoader struct {
	calls   int
	routers map[string]*router.Router
}

func (l *routerLoader) Load(_ context.Context, d Descriptor) (any, error) {
	l.calls++
	if l.routers == nil {
		l.routers = make(map[string]*router.Router)
	}
	r := router.New()
	l.routers[d.MountPath] = r
	return r, nil
}

func TestScan(t *testing.T) {
	fs := newFS(t,
		"routes/widgets.go",
		"routes/admin/users.go",
		"routes/admin/users_test.go",
		"routes/README.md",
		"other/ignored.go",
	)

	res := NewResolver(Config{Root: "/srv/app", FS: fs})

	descs, err := res.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []Descriptor{
		{
			MountPath: "admin/users",
			Source:    filepath.Join("routes", "admin", "users.go"),
			Artifact:  filepath.Join("/srv/app", "build", "admin", "users.so"),
		},
		{
			MountPath: "admin/users_test",
			Source:    filepath.Join("routes", "admin", "users_test.go"),
			Artifact:  filepath.Join("/srv/app", "build", "admin", "users_test.so"),
		},
		{
			MountPath: "widgets",
			Source:    filepath.Join("routes", "widgets.go"),
			Artifact:  filepath.Join("/srv/app", "build", "widgets.so"),
		},
	}, descs)
}

func TestScanCustomExtensions(t *testing.T) {
	fs := newFS(t,
		"src/api/v1/items.route",
		"src/api/v1/items.go",
	)

	res := NewResolver(Config{
		Root:        "app",
		Dir:         "src/api",
		Ext:         ".route",
		OutDir:      "dist/api",
		ArtifactExt: ".plugin",
		FS:          fs,
	})

	descs, err := res.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, descs, 1)

	assert.Equal(t, "v1/items", descs[0].MountPath)
	assert.Equal(t, filepath.Join("app", "dist", "api", "v1", "items.plugin"), descs[0].Artifact)
}

func TestScanSkipTestFiles(t *testing.T) {
	fs := newFS(t,
		"routes/users.go",
		"routes/users_test.go",
	)

	descs, err := NewResolver(Config{FS: fs, SkipTestFiles: true}).Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "users", descs[0].MountPath)
}

func TestScanMissingDir(t *testing.T) {
	res := NewResolver(Config{FS: memfs.New()})

	descs, err := res.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, descs)

	entries, err := res.Resolve(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolve(t *testing.T) {
	files := []string{
		"routes/a.go",
		"routes/b/c.go",
		"routes/b/d/e.go",
	}

	loader := &routerLoader{}
	res := NewResolver(Config{FS: newFS(t, files...), Loader: loader})

	entries, err := res.Resolve(context.Background())
	require.NoError(t, err)

	require.Len(t, entries, len(files))
	assert.Equal(t, "a", entries[0].Path)
	assert.Equal(t, "b/c", entries[1].Path)
	assert.Equal(t, "b/d/e", entries[2].Path)

	for _, e := range entries {
		assert.Same(t, loader.routers[e.Path], e.Router)
		assert.Nil(t, e.Schemas)
	}
}

func TestResolveRunsOnce(t *testing.T) {
	loader := &routerLoader{}
	res := NewResolver(Config{FS: newFS(t, "routes/a.go", "routes/b.go"), Loader: loader})

	first, err := res.Resolve(context.Background())
	require.NoError(t, err)

	second, err := res.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, loader.calls)
	assert.Equal(t, first, second)
}

func TestResolveFailure(t *testing.T) {
	boom := errors.New("boom")

	t.Run("loader error aborts discovery", func(t *testing.T) {
		calls := 0
		loader := LoaderFunc(func(_ context.Context, d Descriptor) (any, error) {
			calls++
			if d.MountPath == "b" {
				return nil, boom
			}
			return router.New(), nil
		})
		res := NewResolver(Config{FS: newFS(t, "routes/a.go", "routes/b.go", "routes/c.go"), Loader: loader})

		entries, err := res.Resolve(context.Background())
		require.Error(t, err)
		assert.Nil(t, entries)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 2, calls, "loading stops at the first failure")

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, "b", loadErr.MountPath)
		assert.Equal(t, filepath.Join("build", "b.so"), loadErr.Artifact)
	})

	t.Run("failure is not cached", func(t *testing.T) {
		fail := true
		loader := LoaderFunc(func(context.Context, Descriptor) (any, error) {
			if fail {
				return nil, boom
			}
			return router.New(), nil
		})
		res := NewResolver(Config{FS: newFS(t, "routes/a.go"), Loader: loader})

		_, err := res.Resolve(context.Background())
		require.Error(t, err)

		fail = false
		entries, err := res.Resolve(context.Background())
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("non-router module", func(t *testing.T) {
		loader := LoaderFunc(func(context.Context, Descriptor) (any, error) {
			return "not a router", nil
		})
		res := NewResolver(Config{FS: newFS(t, "routes/a.go"), Loader: loader})

		_, err := res.Resolve(context.Background())
		assert.ErrorIs(t, err, ErrNotRouter)
		assert.Contains(t, err.Error(), "string")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := NewResolver(Config{FS: newFS(t, "routes/a.go"), Loader: &routerLoader{}})

		_, err := res.Resolve(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestResolveVerboseLogging(t *testing.T) {
	for _, verbose := range []bool{false, true} {
		var buf bytes.Buffer
		res := NewResolver(Config{
			FS:      newFS(t, "routes/admin/users.go"),
			Loader:  &routerLoader{},
			Verbose: verbose,
			Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
		})

		_, err := res.Resolve(context.Background())
		require.NoError(t, err)

		if verbose {
			assert.Contains(t, buf.String(), "loading router")
			assert.Contains(t, buf.String(), "mount=admin/users")
			assert.Contains(t, buf.String(), "artifact="+filepath.Join("build", "admin", "users.so"))
		} else {
			assert.Empty(t, buf.String())
		}
	}
}

type wrapped struct {
	r       *router.Router
	schemas map[string]any
}

func (w wrapped) Router() *router.Router  { return w.r }
func (w wrapped) Schemas() map[string]any { return w.schemas }

func TestUnwrap(t *testing.T) {
	r := router.New()
	var nilRouter *router.Router

	tests := []struct {
		name    string
		value   any
		want    *router.Router
		wantErr bool
	}{
		{name: "router", value: r, want: r},
		{name: "pointer to router variable", value: &r, want: r},
		{name: "constructor", value: func() *router.Router { return r }, want: r},
		{name: "provider", value: wrapped{r: r}, want: r},
		{name: "provider with nil router", value: wrapped{}, wantErr: true},
		{name: "nil router", value: nilRouter, wantErr: true},
		{name: "nil pointer", value: (**router.Router)(nil), wantErr: true},
		{name: "pointer to nil router", value: &nilRouter, wantErr: true},
		{name: "wrong type", value: 42, wantErr: true},
		{name: "nil", value: nil, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := unwrap(tc.value)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrNotRouter)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tc.want, got)
		})
	}
}

func TestResolveSchemas(t *testing.T) {
	type User struct {
		Name string `json:"name"`
	}

	loader := LoaderFunc(func(context.Context, Descriptor) (any, error) {
		return wrapped{r: router.New(), schemas: map[string]any{"User": User{}}}, nil
	})
	res := NewResolver(Config{FS: newFS(t, "routes/users.go"), Loader: loader})

	entries, err := res.Resolve(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]any{"User": User{}}, entries[0].Schemas)
}
