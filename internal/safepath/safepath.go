// Package safepath validates archive entry names before they touch the
// filesystem.
package safepath

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// ErrPathTraversal is returned for entry names that would resolve outside
// the extraction root.
var ErrPathTraversal = errors.New("safepath: path escapes destination")

// ValidatePath checks that an entry name is relative, contains no NUL byte
// and never climbs above its root. Names use forward slashes; backslashes
// are treated as separators too.
func ValidatePath(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrPathTraversal)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q contains NUL", ErrPathTraversal, name)
	}

	slashed := strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return fmt.Errorf("%w: %q is absolute", ErrPathTraversal, name)
	}

	cleaned := path.Clean(slashed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}
	return nil
}

// Join validates name and returns its location under root. Symlinks
// already present below root are resolved as if root were the filesystem
// root, so a link planted in the target cannot redirect an entry outside it.
func Join(root, name string) (string, error) {
	if err := ValidatePath(name); err != nil {
		return "", err
	}

	cleaned := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	full, err := securejoin.SecureJoin(root, filepath.FromSlash(cleaned))
	if err != nil {
		return "", fmt.Errorf("%w: resolving %q: %w", ErrPathTraversal, name, err)
	}

	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, name)
	}
	return full, nil
}
