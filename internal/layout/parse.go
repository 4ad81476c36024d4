package layout

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const ManifestFilename = "flightdeck.yaml"

// Manifest mirrors flightdeck.yaml. Every field is optional; omitted values
// fall back to the conventional layout.
type Manifest struct {
	APIVersion string  `yaml:"apiVersion"`
	Kind       string  `yaml:"kind"`
	App        AppSpec `yaml:"app"`
}

type AppSpec struct {
	Name         string          `yaml:"name"`
	Python       string          `yaml:"python"`
	Venv         string          `yaml:"venv"`
	Requirements string          `yaml:"requirements"`
	Credentials  CredentialsSpec `yaml:"credentials"`
	Entrypoints  EntrypointSpec  `yaml:"entrypoints"`
}

type CredentialsSpec struct {
	File        string `yaml:"file"`
	Template    string `yaml:"template"`
	Placeholder string `yaml:"placeholder"`
}

type EntrypointSpec struct {
	Checker string `yaml:"checker"`
	UI      string `yaml:"ui"`
}

// Load resolves the layout for root. If root contains a flightdeck.yaml it is
// parsed strictly and merged over the defaults; otherwise the defaults apply
// as-is.
func Load(root string) (Layout, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Layout{}, fmt.Errorf("resolve root: %w", err)
	}
	path := filepath.Join(absRoot, ManifestFilename)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(absRoot), nil
		}
		return Layout{}, fmt.Errorf("read manifest: %w", err)
	}
	m, err := parseManifest(b, path)
	if err != nil {
		return Layout{}, err
	}
	return fromManifest(m, absRoot)
}

func parseManifest(b []byte, path string) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("parse yaml (%s): %w", filepath.Base(path), err)
	}
	return m, nil
}

func fromManifest(m Manifest, root string) (Layout, error) {
	if m.APIVersion != "" && m.APIVersion != "flightdeck/v1" {
		return Layout{}, fmt.Errorf("unsupported apiVersion: %s", m.APIVersion)
	}
	if m.Kind != "" && m.Kind != "App" {
		return Layout{}, fmt.Errorf("unsupported kind: %s", m.Kind)
	}

	l := Default(root)
	if m.App.Name != "" {
		l.Name = m.App.Name
	}
	l.Python = m.App.Python
	if m.App.Venv != "" {
		l.VenvDir = resolveUnderRoot(root, m.App.Venv)
	}
	if m.App.Requirements != "" {
		l.Requirements = resolveUnderRoot(root, m.App.Requirements)
	}
	if m.App.Credentials.File != "" {
		l.CredentialsFile = resolveUnderRoot(root, m.App.Credentials.File)
	}
	if m.App.Credentials.Template != "" {
		l.CredentialsTemplate = resolveUnderRoot(root, m.App.Credentials.Template)
	}
	if m.App.Credentials.Placeholder != "" {
		l.Placeholder = m.App.Credentials.Placeholder
	}
	if m.App.Entrypoints.Checker != "" {
		l.CheckerEntry = resolveUnderRoot(root, m.App.Entrypoints.Checker)
	}
	if m.App.Entrypoints.UI != "" {
		l.UIEntry = resolveUnderRoot(root, m.App.Entrypoints.UI)
	}

	if l.CredentialsFile == l.CredentialsTemplate {
		return Layout{}, fmt.Errorf("credentials file and template must differ (%s)", l.CredentialsFile)
	}
	return l, nil
}

func resolveUnderRoot(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
