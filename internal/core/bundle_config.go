package core

import (
	"encoding/json"
	"path/filepath"
	"sort"
)

const (
	DevtoolSourceMap       = "source-map"
	DevtoolInlineSourceMap = "inline-source-map"
)

// NodeOptions controls whether the bundler substitutes __dirname and
// __filename. Electron provides both at runtime, so the main process keeps
// them untouched.
type NodeOptions struct {
	Dirname  bool `json:"__dirname"`
	Filename bool `json:"__filename"`
}

type Rule struct {
	Name          string
	Extensions    []string
	Loader        string
	TranspileOnly bool
}

// BundleConfig describes one main-process bundle. Hooks receive it after all
// defaults are applied and may change anything.
type BundleConfig struct {
	Mode           Mode
	Target         string
	Node           NodeOptions
	Entries        map[string][]string
	OutputPath     string
	OutputFilename string
	Extensions     []string
	Rules          []Rule
	Define         map[string]string
	Env            map[string]string
	Minify         bool
	Devtool        string
	Externals      []string
}

func NewBundleConfig(mode Mode) *BundleConfig {
	return &BundleConfig{
		Mode:       mode,
		Entries:    map[string][]string{},
		Extensions: []string{".js", ".json"},
		Define:     map[string]string{},
		Env:        map[string]string{},
	}
}

func (c *BundleConfig) AddEntry(name string, paths ...string) {
	c.Entries[name] = append(c.Entries[name], paths...)
}

// EntryNames returns entry names in a stable order.
func (c *BundleConfig) EntryNames() []string {
	names := make([]string, 0, len(c.Entries))
	for name := range c.Entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (c *BundleConfig) Rule(name string) (Rule, bool) {
	for _, rule := range c.Rules {
		if rule.Name == name {
			return rule, true
		}
	}
	return Rule{}, false
}

// SetRule replaces the rule with the same name or appends it.
func (c *BundleConfig) SetRule(rule Rule) {
	for i := range c.Rules {
		if c.Rules[i].Name == rule.Name {
			c.Rules[i] = rule
			return
		}
	}
	c.Rules = append(c.Rules, rule)
}

func (c *BundleConfig) MergeExtensions(exts ...string) {
	for _, ext := range exts {
		found := false
		for _, existing := range c.Extensions {
			if existing == ext {
				found = true
				break
			}
		}
		if !found {
			c.Extensions = append(c.Extensions, ext)
		}
	}
}

type MainConfigInput struct {
	Mode         Mode
	Debug        bool
	DevServerURL string
}

func NewMainConfig(s Settings, in MainConfigInput) *BundleConfig {
	cfg := NewBundleConfig(in.Mode)
	cfg.Target = TargetElectronMain
	cfg.Node = NodeOptions{Dirname: false, Filename: false}
	cfg.Externals = []string{"electron"}

	cfg.AddEntry(MainEntryName, s.Abs(s.MainProcessFile))
	cfg.OutputFilename = MainBundleFile
	if in.Mode.IsDev() {
		cfg.OutputPath = s.Abs(s.OutputDir)
	} else {
		cfg.OutputPath = s.Abs(filepath.Join(s.OutputDir, BundledDir))
	}

	// Files in public are copied next to the bundle in production.
	cfg.Define["__static"] = "__dirname"
	if in.Mode.IsDev() {
		cfg.Define["__static"] = jsonString(s.Abs(PublicDir))
	}

	cfg.Env["NODE_ENV"] = string(in.Mode)
	if in.DevServerURL != "" {
		cfg.Env["WEBPACK_DEV_SERVER_URL"] = in.DevServerURL
	}

	if in.Mode.IsDev() && in.Debug {
		cfg.Devtool = DevtoolSourceMap
	} else {
		cfg.Minify = true
	}

	if s.UsesTypeScript {
		cfg.MergeExtensions(".js", ".ts")
		cfg.SetRule(Rule{
			Name:          "ts",
			Extensions:    []string{".ts"},
			Loader:        "ts",
			TranspileOnly: !s.TypeChecking,
		})
	}

	if s.ChainMainProcess != nil {
		if chained := s.ChainMainProcess(cfg); chained != nil {
			cfg = chained
		}
	}
	return cfg
}

func jsonString(value string) string {
	data, err := json.Marshal(value)
	if err != nil {
		return `""`
	}
	return string(data)
}
