package source

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/c360studio/semshape/config"
)

// CurrentVersion is the version used when none is requested.
const CurrentVersion = "current"

// ResolveVersion maps an ontology release to its locator and required mode.
// Single releases live at <root>/<version>/<file>; modular releases are the
// directory <root>/<version>. A release missing from disk is a
// ConfigurationError.
func ResolveVersion(cfg config.OntologyConfig, version string) (string, Mode, error) {
	if version == "" {
		version = CurrentVersion
	}

	mode := ModeSingle
	if cfg.Layouts[version] == config.LayoutModular {
		mode = ModeModular
	}

	dir := filepath.Join(cfg.Root, version)
	locator := dir
	if mode == ModeSingle {
		locator = filepath.Join(dir, cfg.File)
	}

	info, err := os.Stat(locator)
	if err != nil {
		return "", "", &config.ConfigurationError{
			Reason: fmt.Sprintf("ontology version %s not found at %s", version, locator),
		}
	}
	if info.IsDir() != (mode == ModeModular) {
		return "", "", &config.ConfigurationError{
			Reason: fmt.Sprintf("ontology version %s at %s is not a %s release", version, locator, mode),
		}
	}
	return locator, mode, nil
}
