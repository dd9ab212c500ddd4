package evaluator

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SecurityPolicy limits what the filesystem natives may touch. A nil policy
// allows everything.
type SecurityPolicy struct {
	NoRead        bool     // Deny all reads
	RestrictRead  []string // Denied read directories (blacklist)
	NoWrite       bool     // Deny all writes
	RestrictWrite []string // Denied write directories (blacklist)
}

// CheckPathAccess validates file system access for operation, which is
// "read" or "write".
func (p *SecurityPolicy) CheckPathAccess(path string, operation string) error {
	if p == nil {
		return nil
	}

	absPath, err := resolvePath(path)
	if err != nil {
		return err
	}

	switch operation {
	case "read":
		if p.NoRead {
			return fmt.Errorf("file read access denied: %s", path)
		}
		if isPathRestricted(absPath, p.RestrictRead) {
			return fmt.Errorf("file read restricted: %s", path)
		}
	case "write":
		if p.NoWrite {
			return fmt.Errorf("file write access denied: %s", path)
		}
		if isPathRestricted(absPath, p.RestrictWrite) {
			return fmt.Errorf("file write restricted: %s", path)
		}
	}

	return nil
}

// resolvePath makes path absolute and resolves symlinks. A file that does not
// exist yet is resolved through its parent directory.
func resolvePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		return resolved, nil
	}
	dir := filepath.Dir(absPath)
	base := filepath.Base(absPath)
	if resolvedDir, err := filepath.EvalSymlinks(dir); err == nil {
		return filepath.Join(resolvedDir, base), nil
	}
	return absPath, nil
}

// isPathRestricted checks if a path is within any restricted directory
func isPathRestricted(path string, restrictList []string) bool {
	for _, restricted := range restrictList {
		resolvedRestricted := restricted
		if resolved, err := filepath.EvalSymlinks(restricted); err == nil {
			resolvedRestricted = resolved
		}
		if path == resolvedRestricted || strings.HasPrefix(path, resolvedRestricted+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
