package cli

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vitalvas/autoroute/discovery"
	"github.com/vitalvas/autoroute/openapi"
	"gopkg.in/yaml.v3"
)

// Config captures the inputs of generate and serve after merging defaults,
// config file values and flag overrides.
type Config struct {
	Root        string
	Dir         string
	Ext         string
	Out         string
	ArtifactExt string

	Override string
	Output   string
	Format   string
	Title    string

	SkipTests         bool
	NoTags            bool
	NoReformat        bool
	NoDefaultResponse bool
	PathParams        bool
	CollectTags       bool

	Addr string
	Docs string

	ConfigPath string
	Verbose    bool
}

func defaultConfig() Config {
	return Config{
		Root:        ".",
		Dir:         "routes",
		Ext:         ".go",
		Out:         "build",
		ArtifactExt: ".so",
		Format:      string(openapi.FormatJSON),
		Addr:        ":8080",
		Docs:        "/docs",
	}
}

type stringField struct {
	flag  string
	usage string
	get   func(*Config) *string
}

type boolField struct {
	flag  string
	usage string
	get   func(*Config) *bool
}

var discoveryFields = []stringField{
	{"root", "Discovery root directory", func(c *Config) *string { return &c.Root }},
	{"dir", "Routes directory under the root", func(c *Config) *string { return &c.Dir }},
	{"ext", "Route module source extension", func(c *Config) *string { return &c.Ext }},
	{"out", "Build output directory under the root", func(c *Config) *string { return &c.Out }},
	{"artifact-ext", "Built module artifact extension", func(c *Config) *string { return &c.ArtifactExt }},
	{"override", "OpenAPI document (YAML or JSON) merged over the generated one", func(c *Config) *string { return &c.Override }},
	{"title", "API title written to info.title", func(c *Config) *string { return &c.Title }},
}

var boolFields = []boolField{
	{"skip-tests", "Do not treat *_test sources as route modules", func(c *Config) *bool { return &c.SkipTests }},
	{"no-tags", "Do not tag operations with their mount path", func(c *Config) *bool { return &c.NoTags }},
	{"no-reformat", "Keep route patterns as registered", func(c *Config) *bool { return &c.NoReformat }},
	{"no-default-response", "Do not add the default response", func(c *Config) *bool { return &c.NoDefaultResponse }},
	{"path-params", "Generate path parameters from route templates", func(c *Config) *bool { return &c.PathParams }},
	{"collect-tags", "Fill the top-level tags list from operation tags", func(c *Config) *bool { return &c.CollectTags }},
}

var generateFields = []stringField{
	{"output", "Output file (default: stdout)", func(c *Config) *string { return &c.Output }},
	{"format", "Output format (json|yaml)", func(c *Config) *string { return &c.Format }},
}

var serveFields = []stringField{
	{"addr", "Listen address", func(c *Config) *string { return &c.Addr }},
	{"docs", "Base path of the documentation endpoints", func(c *Config) *string { return &c.Docs }},
}

func addStringFlags(flags *pflag.FlagSet, fields []stringField) {
	for _, f := range fields {
		flags.String(f.flag, "", f.usage)
	}
}

func addBoolFlags(flags *pflag.FlagSet, fields []boolField) {
	for _, f := range fields {
		flags.Bool(f.flag, false, f.usage)
	}
}

func resolveConfig(cmd *cobra.Command) (*Config, error) {
	cfg := defaultConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *Config) error {
	for _, group := range [][]stringField{discoveryFields, generateFields, serveFields} {
		for _, f := range group {
			if flags.Lookup(f.flag) == nil || !flags.Changed(f.flag) {
				continue
			}
			value, err := flags.GetString(f.flag)
			if err != nil {
				return err
			}
			*f.get(cfg) = value
		}
	}

	for _, f := range boolFields {
		if flags.Lookup(f.flag) == nil || !flags.Changed(f.flag) {
			continue
		}
		value, err := flags.GetBool(f.flag)
		if err != nil {
			return err
		}
		*f.get(cfg) = value
	}

	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *Config) normalize() {
	for _, group := range [][]stringField{discoveryFields, generateFields, serveFields} {
		for _, f := range group {
			p := f.get(c)
			*p = strings.TrimSpace(*p)
		}
	}
	c.Format = strings.ToLower(c.Format)
	if c.Ext != "" && !strings.HasPrefix(c.Ext, ".") {
		c.Ext = "." + c.Ext
	}
	if c.ArtifactExt != "" && !strings.HasPrefix(c.ArtifactExt, ".") {
		c.ArtifactExt = "." + c.ArtifactExt
	}
}

func (c *Config) validate() error {
	switch openapi.Format(c.Format) {
	case openapi.FormatJSON, openapi.FormatYAML:
	default:
		return newUsageError(fmt.Sprintf("unsupported --format %q (allowed: json, yaml)", c.Format))
	}

	if c.Ext != "" && c.Ext == c.ArtifactExt {
		return newUsageError(fmt.Sprintf("--ext and --artifact-ext must differ (both %q)", c.Ext))
	}

	return nil
}

func (c *Config) discoveryConfig(logger *slog.Logger) discovery.Config {
	return discovery.Config{
		Root:          c.Root,
		Dir:           c.Dir,
		Ext:           c.Ext,
		OutDir:        c.Out,
		ArtifactExt:   c.ArtifactExt,
		SkipTestFiles: c.SkipTests,
		Verbose:       c.Verbose,
		Logger:        logger,
	}
}

func (c *Config) generatorConfig(logger *slog.Logger) openapi.Config {
	return openapi.Config{
		DisableTags:             c.NoTags,
		DisableTemplateReformat: c.NoReformat,
		DisableDefaultResponse:  c.NoDefaultResponse,
		PathParameters:          c.PathParams,
		CollectTags:             c.CollectTags,
		Logger:                  logger,
	}
}

// loadOverride reads the override document and applies the title.
func (c *Config) loadOverride() (openapi.Document, error) {
	override := openapi.Document{}

	if c.Override != "" {
		f, err := os.Open(c.Override)
		if err != nil {
			return nil, newUsageError(fmt.Sprintf("read override %q: %v", c.Override, err))
		}
		defer f.Close()

		doc, err := openapi.Decode(f)
		if err != nil {
			return nil, newUsageError(fmt.Sprintf("parse override %q: %v", c.Override, err))
		}
		override = doc
	}

	if c.Title != "" {
		info, ok := override["info"].(map[string]any)
		if !ok {
			info, _ = openapi.Base()["info"].(map[string]any)
		}
		titled := make(map[string]any, len(info)+1)
		maps.Copy(titled, info)
		titled["title"] = c.Title
		override["info"] = titled
	}

	return override, nil
}

func applyConfigFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	strs := make(map[string]stringField)
	for _, group := range [][]stringField{discoveryFields, generateFields, serveFields} {
		for _, f := range group {
			strs[normalizeKey(f.flag)] = f
		}
	}
	bools := make(map[string]boolField)
	for _, f := range boolFields {
		bools[normalizeKey(f.flag)] = f
	}

	for key, value := range raw {
		normalized := normalizeKey(key)

		if f, ok := strs[normalized]; ok {
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*f.get(cfg) = str
			continue
		}

		if f, ok := bools[normalized]; ok {
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*f.get(cfg) = val
			continue
		}

		if normalized == "verbose" {
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
			continue
		}

		return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected bool, got %T", v)
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
