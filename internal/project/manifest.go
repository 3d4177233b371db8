// Package project reads svelab.toml manifests: the source file list,
// include directories, predefines and elaboration options for a design.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the loader looks for.
const ManifestName = "svelab.toml"

// ErrProjectSectionMissing indicates that [project] is absent.
var ErrProjectSectionMissing = errors.New("missing [project]")

// Compile is the [compile] section.
type Compile struct {
	Files           []string          `toml:"files"`
	IncludeDirs     []string          `toml:"include_dirs"`
	Defines         map[string]string `toml:"defines"`
	DefaultNetType  string            `toml:"default_nettype"`
	MaxInstanceDepth uint32           `toml:"max_instance_depth"`
	Tops            []string          `toml:"tops"`
}

// Manifest is one parsed svelab.toml.
type Manifest struct {
	Name    string
	Root    string
	Compile Compile
}

type rawManifest struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Compile Compile `toml:"compile"`
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	var raw rawManifest
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if raw.Project.Name == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrProjectSectionMissing)
	}

	root := filepath.Dir(path)
	m := &Manifest{
		Name:    raw.Project.Name,
		Root:    root,
		Compile: raw.Compile,
	}
	// Relative paths anchor at the manifest's directory.
	for i, d := range m.Compile.IncludeDirs {
		if !filepath.IsAbs(d) {
			m.Compile.IncludeDirs[i] = filepath.Join(root, d)
		}
	}
	for i, f := range m.Compile.Files {
		if !filepath.IsAbs(f) {
			m.Compile.Files[i] = filepath.Join(root, f)
		}
	}
	return m, nil
}

// Find walks from dir upward looking for a manifest.
func Find(dir string) (*Manifest, error) {
	cur, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for {
		candidate := filepath.Join(cur, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("no %s found from %s upward", ManifestName, dir)
		}
		cur = parent
	}
}
