package filelist

import (
	"fmt"
	"os"
	"path/filepath"
)

// TrashDir is the directory name deleted files are moved into, next to the
// file itself.
const TrashDir = ".qiv-trash"

// Trash moves files in and out of trash directories.
type Trash struct {
	Dir string

	remove func(name string) error
}

// NewTrash returns a trash using TrashDir.
func NewTrash() *Trash {
	return &Trash{Dir: TrashDir, remove: os.Remove}
}

// PathFor returns where path goes when trashed: <dir>/.qiv-trash/<base> with
// dir resolved to its real location, or .qiv-trash/<path> when path has no
// directory part.
func (t *Trash) PathFor(path string) (string, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		return filepath.Join(t.Dir, path), nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	return filepath.Join(resolved, t.Dir, base), nil
}

// Move hard-links path into its trash location and removes the original.
func (t *Trash) Move(path string) (string, error) {
	trashPath, err := t.PathFor(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(trashPath), 0o700); err != nil {
		return "", fmt.Errorf("could not make directory %s: %w", filepath.Dir(trashPath), err)
	}
	// a leftover from an earlier deletion of the same name would block the link
	_ = os.Remove(trashPath)
	if err := os.Link(path, trashPath); err != nil {
		return "", fmt.Errorf("could not link %s into trash: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("could not remove %s: %w", path, err)
	}
	return trashPath, nil
}

// Restore links the trashed copy back to path, then tries to remove the
// copy and the trash directory. Only a failed link is reported.
func (t *Trash) Restore(trashPath, path string) error {
	if err := os.Link(trashPath, path); err != nil {
		return fmt.Errorf("undelete of %s failed: %w", path, err)
	}
	// the file is back in place; a stale trash copy is harmless
	_ = t.remove(trashPath)
	_ = t.remove(filepath.Dir(trashPath))
	return nil
}
