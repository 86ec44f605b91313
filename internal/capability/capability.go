// Package capability answers "what can the local OpenClaw module do" without
// depending on the module being installed.
package capability

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxNames caps how many capability names are reported.
const MaxNames = 200

// ErrNotInstalled is returned when the OpenClaw module is absent.
var ErrNotInstalled = errors.New("openclaw module not installed")

// Provider enumerates the public surface of the local OpenClaw module.
type Provider interface {
	Name() string
	Capabilities(ctx context.Context) ([]string, error)
}

// NotInstalled is the provider used when no module could be located.
type NotInstalled struct {
	Reason string
}

func (n NotInstalled) Name() string { return "openclaw" }

func (n NotInstalled) Capabilities(context.Context) ([]string, error) {
	if n.Reason == "" {
		return nil, ErrNotInstalled
	}
	return nil, fmt.Errorf("%w: %s", ErrNotInstalled, n.Reason)
}

// Manifest is the on-disk description of an installed OpenClaw module.
type Manifest struct {
	Name    string   `yaml:"name" json:"name"`
	Version string   `yaml:"version,omitempty" json:"version,omitempty"`
	Exports []string `yaml:"exports" json:"exports"`
}

// ManifestProvider reads capabilities from a manifest file (YAML or JSON).
type ManifestProvider struct {
	Path string
}

func (m ManifestProvider) Name() string { return "openclaw" }

// Capabilities returns the manifest exports. A missing file means the module is
// not installed; an unreadable or malformed one is reported as such.
func (m ManifestProvider) Capabilities(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(m.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no manifest at %s", ErrNotInstalled, m.Path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	// YAML is a superset of JSON, so one decoder covers both.
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", m.Path, err)
	}
	return manifest.Exports, nil
}

// DefaultManifestPath returns ~/.openclaw/manifest.yaml
func DefaultManifestPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".openclaw", "manifest.yaml")
}

// New returns a ManifestProvider for path, or for the default location when path
// is empty. Absence is only detected when Capabilities is called.
func New(path string) Provider {
	if path == "" {
		path = DefaultManifestPath()
	}
	return ManifestProvider{Path: path}
}

// List queries p and returns its public names: sorted, without names starting
// with an underscore, without duplicates, and at most MaxNames long.
func List(ctx context.Context, p Provider) ([]string, error) {
	if p == nil {
		return nil, ErrNotInstalled
	}
	names, err := p.Capabilities(ctx)
	if err != nil {
		return nil, err
	}
	return PublicNames(names), nil
}

// PublicNames filters and orders raw capability names.
func PublicNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || strings.HasPrefix(n, "_") || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	if len(out) > MaxNames {
		out = out[:MaxNames]
	}
	return out
}
