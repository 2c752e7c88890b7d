package storage

import (
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/gabriel-vasile/mimetype"
)

// Delete removes a stored file.
func (d *Disk) Delete(rel string) error {
	p, err := d.abs(rel)
	if err != nil {
		return err
	}
	if p == d.Root {
		return fmt.Errorf("%w: refusing to delete the storage root", ErrInvalidTarget)
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("delete %s: %w", rel, err)
	}
	return nil
}

// Commit drops the copy of the file res replaced.
func (d *Disk) Commit(res *Result) error {
	if res.Replaced == "" {
		return nil
	}
	if err := d.Delete(res.Replaced); err != nil {
		return err
	}
	res.Replaced = ""
	return nil
}

// Rollback undoes a store: the replaced file is put back, or the new file
// is removed when nothing was replaced.
func (d *Disk) Rollback(res *Result) error {
	if res.Replaced == "" {
		return d.Delete(res.Path)
	}
	from, err := d.abs(res.Replaced)
	if err != nil {
		return err
	}
	to, err := d.abs(res.Path)
	if err != nil {
		return err
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("%w: restore %s: %v", ErrStorageUnavailable, res.Path, err)
	}
	res.Replaced = ""
	return nil
}

func (d *Disk) Exists(rel string) bool {
	p, err := d.abs(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

func (d *Disk) Size(rel string) (int64, error) {
	p, err := d.abs(rel)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", rel, err)
	}
	return info.Size(), nil
}

// MimeType sniffs the stored content, ignoring the declared type.
func (d *Disk) MimeType(rel string) (string, error) {
	p, err := d.abs(rel)
	if err != nil {
		return "", err
	}
	mt, err := mimetype.DetectFile(p)
	if err != nil {
		return "", fmt.Errorf("detect %s: %w", rel, err)
	}
	return mt.String(), nil
}

// List returns the relative paths of the regular files directly inside
// folder, sorted. A missing folder lists as empty.
func (d *Disk) List(folder string) ([]string, error) {
	cleaned, err := cleanRelative(folder)
	if err != nil {
		return nil, err
	}
	p, err := d.abs(cleaned)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(p)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name()[0] == '.' {
			continue
		}
		files = append(files, path.Join(cleaned, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (d *Disk) EnsureFolder(folder string) error {
	p, err := d.abs(folder)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(p, d.dirMode()); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// URL returns the public URL of a stored path.
func (d *Disk) URL(rel string) string {
	if d.PublicBaseURL == "" {
		return "/" + rel
	}
	return d.PublicBaseURL + "/" + rel
}
