package util

import "os"

// EnsureDir creates path (and parents) if it does not exist yet.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
