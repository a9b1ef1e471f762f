package fsstat

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// StatFunc reports metadata for a path. This allows the caller to control
// where existence checks go (the OS, an embedded tree, a test fixture).
type StatFunc func(path string) (fs.FileInfo, error)

// OS stats paths on the local filesystem, following symlinks.
func OS() StatFunc {
	return os.Stat
}

// FS stats paths inside fsys. Absolute platform paths are mapped onto the
// unrooted slash paths fs.FS expects, so "/proj/a.js" becomes "proj/a.js".
func FS(fsys fs.FS) StatFunc {
	return func(path string) (fs.FileInfo, error) {
		name := filepath.ToSlash(path)
		if vol := filepath.VolumeName(path); vol != "" {
			name = strings.TrimPrefix(name, filepath.ToSlash(vol))
		}
		name = strings.TrimLeft(name, "/")
		if name == "" {
			name = "."
		}
		return fs.Stat(fsys, name)
	}
}

// IsFile reports whether path exists and is a regular file. Any stat error
// counts as "no".
func IsFile(stat StatFunc, path string) bool {
	info, err := stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
