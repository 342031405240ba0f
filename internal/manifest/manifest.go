// Package manifest reads the bootstrap description of a studio: the code to
// upload, the factories the master deploys and any initial deployments.
package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Manifest is the bootstrap document.
type Manifest struct {
	Code        []Code       `json:"code"`
	Factories   []Factory    `json:"factories"`
	Deployments []Deployment `json:"deployments"`

	// Directory relative code paths are resolved against.
	Dir string `json:"-"`
}

// Code is one code blob. Contract names the behaviour bound to it, such as
// "factory/token" or "token/pausable". Without a Path the contract name
// itself is uploaded as the code.
type Code struct {
	Name     string `json:"name"`
	Contract string `json:"contract"`
	Path     string `json:"path"`
}

// Factory is a factory the master deploys at startup.
type Factory struct {
	Role string `json:"role"`
	Code string `json:"code"`
	Seed string `json:"seed"`

	// Kind name to code name
	Wasm map[string]string `json:"wasm"`
}

// Deployment is an instance deployed through a factory at startup. Config
// is the tagged record handed to the factory's decoder; a "seed" key may
// stand in for "salt".
type Deployment struct {
	Factory  string         `json:"factory"`
	Deployer string         `json:"deployer"`
	Config   map[string]any `json:"config"`
}

// Load reads a YAML or JSON manifest from path.
func Load(path string) (*Manifest, error) {
	k := koanf.New(".")

	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported manifest format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("failed to load manifest %s: %w", path, err)
	}

	var m Manifest
	if err := k.UnmarshalWithConf("", &m, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks names and references. Whether roles, kinds and contracts
// exist is left to the bootstrap that interprets them.
func (m *Manifest) Validate() error {
	codes := make(map[string]struct{}, len(m.Code))
	for i, c := range m.Code {
		if c.Name == "" {
			return fmt.Errorf("code[%d]: name is required", i)
		}
		if c.Contract == "" {
			return fmt.Errorf("code %q: contract is required", c.Name)
		}
		if _, dup := codes[c.Name]; dup {
			return fmt.Errorf("code %q declared twice", c.Name)
		}
		codes[c.Name] = struct{}{}
	}

	roles := make(map[string]struct{}, len(m.Factories))
	for i, f := range m.Factories {
		if f.Role == "" {
			return fmt.Errorf("factories[%d]: role is required", i)
		}
		if _, dup := roles[f.Role]; dup {
			return fmt.Errorf("factory role %q declared twice", f.Role)
		}
		roles[f.Role] = struct{}{}
		if _, ok := codes[f.Code]; !ok {
			return fmt.Errorf("factory %q: unknown code %q", f.Role, f.Code)
		}
		for kind, code := range f.Wasm {
			if _, ok := codes[code]; !ok {
				return fmt.Errorf("factory %q: kind %q uses unknown code %q", f.Role, kind, code)
			}
		}
	}

	for i, d := range m.Deployments {
		if _, ok := roles[d.Factory]; !ok {
			return fmt.Errorf("deployments[%d]: unknown factory %q", i, d.Factory)
		}
		if d.Deployer == "" {
			return fmt.Errorf("deployments[%d]: deployer is required", i)
		}
		if len(d.Config) == 0 {
			return fmt.Errorf("deployments[%d]: config is required", i)
		}
	}
	return nil
}

// CodePath resolves c.Path against the manifest directory.
func (m *Manifest) CodePath(c Code) string {
	if c.Path == "" || filepath.IsAbs(c.Path) {
		return c.Path
	}
	return filepath.Join(m.Dir, c.Path)
}
