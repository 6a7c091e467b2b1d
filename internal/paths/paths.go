package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "wheelwright"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755
)

// Path to the directory where package archives are staged between the
// builder and runtime stages.
//
//	Linux:   ~/.cache/wheelwright/staging
//	macOS:   ~/Library/Caches/wheelwright/staging
func Staging() string {
	return filepath.Join(xdg.CacheHome, toolName, "staging")
}
