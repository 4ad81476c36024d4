package layout

import (
	"path/filepath"
	"runtime"
)

// Layout is the resolved filesystem shape of one checker installation. Every
// path is absolute. It is built once (from defaults or flightdeck.yaml) and
// passed into the provisioner and the launch guard; nothing else looks at the
// working directory.
type Layout struct {
	Root string
	Name string

	// Python optionally pins the interpreter used to create the venv.
	Python string

	VenvDir      string
	Requirements string

	CredentialsFile     string
	CredentialsTemplate string
	Placeholder         string

	CheckerEntry string
	UIEntry      string
}

const (
	DefaultName         = "flight-price-checker"
	DefaultVenvDir      = "venv"
	DefaultRequirements = "requirements.txt"
	DefaultCredsFile    = ".env"
	DefaultCredsExample = ".env.example"
	DefaultPlaceholder  = "your_client_id_here"
	DefaultCheckerEntry = "flight_checker.py"
	DefaultUIEntry      = "app.py"
)

// Default returns the conventional layout rooted at root.
func Default(root string) Layout {
	return Layout{
		Root:                root,
		Name:                DefaultName,
		VenvDir:             filepath.Join(root, DefaultVenvDir),
		Requirements:        filepath.Join(root, DefaultRequirements),
		CredentialsFile:     filepath.Join(root, DefaultCredsFile),
		CredentialsTemplate: filepath.Join(root, DefaultCredsExample),
		Placeholder:         DefaultPlaceholder,
		CheckerEntry:        filepath.Join(root, DefaultCheckerEntry),
		UIEntry:             filepath.Join(root, DefaultUIEntry),
	}
}

// VenvPython is the interpreter inside the provisioned venv.
func (l Layout) VenvPython() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(l.VenvDir, "Scripts", "python.exe")
	}
	return filepath.Join(l.VenvDir, "bin", "python")
}

// VenvPip is the package installer inside the provisioned venv.
func (l Layout) VenvPip() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(l.VenvDir, "Scripts", "pip.exe")
	}
	return filepath.Join(l.VenvDir, "bin", "pip")
}
