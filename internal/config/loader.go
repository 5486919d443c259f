package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source records where a config value came from.
type Source struct {
	Kind   SourceKind
	Name   string // for default
	File   string
	Line   int
	Column int
}

func fileSource(file string, n *yaml.Node) Source {
	return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML path -> last file that set it
	Files   []string          // every loaded file, includes before their parent
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "snaptile", "config.yaml"), nil
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads the standard config and keeps per-key sources for
// `snaptile config explain`.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes. A missing file yields defaults.
// Validation failures, hotkey syntax included, carry the file position of the
// offending key.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &loader{
		done:    make(map[string]bool),
		sources: make(map[string]Source),
	}

	var raw RawConfig
	if _, err := os.Stat(path); err == nil {
		if raw, err = l.load(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := BuildEffectiveConfig(raw)
	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			if src, ok := l.sources[verr.Path]; ok {
				verr.Source = src
			}
		}
		return nil, err
	}

	return &LoadResult{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// loader walks one config file tree. Includes merge first, then the including
// file overrides them; sources follow the same last-writer order.
type loader struct {
	chain   []string        // files currently being loaded, outermost first
	done    map[string]bool // files already merged
	sources map[string]Source
	files   []string
}

func (l *loader) load(path string) (RawConfig, error) {
	file, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, err
	}
	if slices.Contains(l.chain, file) {
		return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.chain, " -> "), file)
	}
	if l.done[file] {
		return RawConfig{}, nil
	}
	l.done[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var own RawConfig
	if err := decodeStrict(data, &own); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", file, err)
	}

	scan := scanDocument(&doc, file)

	l.chain = append(l.chain, file)
	defer func() { l.chain = l.chain[:len(l.chain)-1] }()

	var merged RawConfig
	for _, inc := range scan.includes {
		paths, err := inc.resolve(file)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s:%d:%d: include %q: %w", file, inc.at.Line, inc.at.Column, inc.value, err)
		}
		for _, p := range paths {
			sub, err := l.load(p)
			if err != nil {
				return RawConfig{}, err
			}
			merged = merged.merge(sub)
		}
	}

	for key, src := range scan.sources {
		l.sources[key] = src
	}
	l.files = append(l.files, file)
	return merged.merge(own), nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// canonicalPath makes path absolute and resolves symlinks when it can, so a
// file reached twice through different names is only merged once.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

type include struct {
	value string
	at    Source
}

// resolve expands the include relative to the including file. A directory
// yields its *.yaml and *.yml files in name order.
func (inc include) resolve(from string) ([]string, error) {
	target, err := expandHome(inc.value)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(from), target)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			if !ent.IsDir() {
				out = append(out, filepath.Join(target, ent.Name()))
			}
		}
	}
	// ReadDir already sorts by name.
	return out, nil
}

func expandHome(p string) (string, error) {
	switch {
	case p == "":
		return "", fmt.Errorf("path is empty")
	case p != "~" && !strings.HasPrefix(p, "~/"):
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

type documentScan struct {
	sources  map[string]Source
	includes []include
}

// scanDocument records the position of every key in doc, keyed by dotted path
// (place_hotkeys.center, screen_padding.top), and collects the top-level
// include entries.
func scanDocument(doc *yaml.Node, file string) documentScan {
	scan := documentScan{sources: make(map[string]Source)}
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return scan
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return scan
	}

	var walk func(prefix string, m *yaml.Node)
	walk = func(prefix string, m *yaml.Node) {
		for i := 0; i+1 < len(m.Content); i += 2 {
			key, val := m.Content[i].Value, m.Content[i+1]
			if prefix != "" {
				key = prefix + "." + key
			}
			scan.sources[key] = fileSource(file, val)
			if val.Kind == yaml.MappingNode {
				walk(key, val)
			}
		}
	}
	walk("", root)

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		items := []*yaml.Node{val}
		if val.Kind == yaml.SequenceNode {
			items = val.Content
		}
		for _, item := range items {
			if item.Kind == yaml.ScalarNode {
				scan.includes = append(scan.includes, include{value: item.Value, at: fileSource(file, item)})
			}
		}
	}
	return scan
}
