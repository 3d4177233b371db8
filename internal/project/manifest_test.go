package project_test

import (
	"os"
	"path/filepath"
	"testing"

	"svelab/internal/project"
)

const sampleManifest = `
[project]
name = "chip"

[compile]
files = ["rtl/top.sv"]
include_dirs = ["rtl/include"]
default_nettype = "wire"
max_instance_depth = 64
tops = ["top"]

[compile.defines]
SYNTHESIS = "1"
`

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, project.ManifestName)
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := project.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "chip" || m.Root != dir {
		t.Errorf("name/root = %q, %q", m.Name, m.Root)
	}
	if len(m.Compile.Files) != 1 || m.Compile.Files[0] != filepath.Join(dir, "rtl/top.sv") {
		t.Errorf("files = %v (relative paths should anchor at the manifest)", m.Compile.Files)
	}
	if len(m.Compile.IncludeDirs) != 1 || m.Compile.IncludeDirs[0] != filepath.Join(dir, "rtl/include") {
		t.Errorf("include dirs = %v", m.Compile.IncludeDirs)
	}
	if m.Compile.DefaultNetType != "wire" || m.Compile.MaxInstanceDepth != 64 {
		t.Errorf("compile opts = %+v", m.Compile)
	}
	if m.Compile.Defines["SYNTHESIS"] != "1" {
		t.Errorf("defines = %v", m.Compile.Defines)
	}
	if len(m.Compile.Tops) != 1 || m.Compile.Tops[0] != "top" {
		t.Errorf("tops = %v", m.Compile.Tops)
	}
}

func TestLoadRejectsMissingProject(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, project.ManifestName)
	if err := os.WriteFile(path, []byte("[compile]\nfiles=[]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := project.Load(path); err == nil {
		t.Error("expected an error for a manifest without [project]")
	}
}

func TestFindWalksUpward(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, project.ManifestName), []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(dir, "rtl", "core")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	m, err := project.Find(nested)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "chip" {
		t.Errorf("name = %q", m.Name)
	}
}
