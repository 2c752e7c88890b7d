package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"image-cropper/internal/datauri"
)

const (
	DefaultStreamThreshold = int64(100 << 20)
	DefaultDirMode         = os.FileMode(0o755)
	DefaultFileMode        = os.FileMode(0o644)

	maxSuffixAttempts = 1000
)

// ConflictPolicy decides what happens when the target file already exists.
type ConflictPolicy string

const (
	Overwrite      ConflictPolicy = "overwrite"
	FailOnConflict ConflictPolicy = "fail"
	AddSuffix      ConflictPolicy = "suffix"
)

func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", Overwrite:
		return Overwrite, nil
	case FailOnConflict, AddSuffix:
		return p, nil
	}
	return "", fmt.Errorf("unknown conflict policy %q", s)
}

// Disk persists decoded data URIs below a single root directory.
type Disk struct {
	Root            string
	PublicBaseURL   string
	ChunkSize       int
	StreamThreshold int64
	DirMode         os.FileMode
	FileMode        os.FileMode
	Presets         map[Kind]Preset

	// NewToken generates the base name used when no filename is given.
	NewToken func() string
}

type Option func(*Disk)

func NewDisk(root string, options ...Option) *Disk {
	d := &Disk{
		Root:            root,
		ChunkSize:       DefaultChunkSize,
		StreamThreshold: DefaultStreamThreshold,
		DirMode:         DefaultDirMode,
		FileMode:        DefaultFileMode,
		Presets:         DefaultPresets("uploads"),
		NewToken:        randomToken,
	}

	for _, opt := range options {
		opt(d)
	}

	return d
}

func WithPublicBaseURL(url string) Option {
	return func(d *Disk) {
		d.PublicBaseURL = strings.TrimRight(url, "/")
	}
}

func WithChunkSize(size int) Option {
	return func(d *Disk) {
		if size > 0 {
			d.ChunkSize = size
		}
	}
}

func WithStreamThreshold(threshold int64) Option {
	return func(d *Disk) {
		d.StreamThreshold = threshold
	}
}

func WithPresets(presets map[Kind]Preset) Option {
	return func(d *Disk) {
		d.Presets = presets
	}
}

func WithTokenFunc(fn func() string) Option {
	return func(d *Disk) {
		d.NewToken = fn
	}
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Options describes a single persist call.
type Options struct {
	Kind     Kind
	Folder   string
	Filename string // base name without extension; generated when empty
	MaxSize  int64  // ceiling on the estimated decoded size; <= 0 disables the check

	// MediaType, when set, must equal the declared media type.
	MediaType string
	// SubtypeExtension falls back to the declared subtype for MIME types
	// missing from the table instead of DefaultExtension.
	SubtypeExtension bool

	StreamThreshold int64 // 0 uses the disk default
	Strict          bool
	OnConflict      ConflictPolicy

	// KeepReplaced keeps a hidden copy of a file replaced under the
	// overwrite policy until Commit or Rollback is called with the result.
	KeepReplaced bool
}

// Result describes a persisted file.
type Result struct {
	Kind      Kind
	Path      string // folder/filename, forward slashes, relative to Root
	Folder    string
	Filename  string
	MimeType  string
	Subtype   string
	Extension string
	Size      int64
	Streamed  bool

	// Replaced is the hidden copy of the overwritten file, relative to
	// Root. Set only with Options.KeepReplaced when a file was replaced.
	Replaced string
}

// Persist stores dataURI and returns its path relative to the disk root.
func (d *Disk) Persist(ctx context.Context, dataURI string, opts Options) (string, error) {
	res, err := d.Store(ctx, dataURI, opts)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// Store is Persist returning the full result.
func (d *Disk) Store(ctx context.Context, dataURI string, opts Options) (*Result, error) {
	uri, err := datauri.Parse(dataURI)
	if err != nil {
		return nil, err
	}
	if opts.MediaType != "" && uri.MediaType != opts.MediaType {
		return nil, fmt.Errorf("%w: expected %s data, got %s", ErrInvalidFormat, opts.MediaType, uri.MimeType())
	}

	estimate := uri.EstimatedSize()
	if opts.MaxSize > 0 && estimate > opts.MaxSize {
		return nil, fmt.Errorf("%w: estimated %d bytes exceeds limit of %d", ErrPayloadTooLarge, estimate, opts.MaxSize)
	}
	if strings.Trim(uri.Payload, "\r\n") == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}

	folder, err := cleanRelative(opts.Folder)
	if err != nil {
		return nil, err
	}
	base := opts.Filename
	if base == "" {
		base = d.NewToken()
	}
	if err := checkBaseName(base); err != nil {
		return nil, err
	}
	ext := ResolveExtension(uri.MimeType(), uri.Subtype, opts.SubtypeExtension)

	dir := filepath.Join(d.Root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, d.dirMode()); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrStorageUnavailable, folder, err)
	}

	threshold := opts.StreamThreshold
	if threshold == 0 {
		threshold = d.StreamThreshold
	}
	streamed := threshold > 0 && estimate >= threshold

	tmp, size, err := d.writeTemp(ctx, dir, uri.Payload, streamed, opts.Strict)
	if err != nil {
		return nil, err
	}

	var replaced string
	if opts.KeepReplaced && (opts.OnConflict == "" || opts.OnConflict == Overwrite) {
		replaced, err = keepCopy(dir, base+"."+ext)
		if err != nil {
			os.Remove(tmp)
			return nil, err
		}
	}

	filename, err := place(tmp, dir, base, ext, opts.OnConflict)
	if err != nil {
		os.Remove(tmp)
		if replaced != "" {
			os.Remove(replaced)
		}
		return nil, err
	}
	if replaced != "" {
		replaced = path.Join(folder, filepath.Base(replaced))
	}

	return &Result{
		Kind:      opts.Kind,
		Path:      path.Join(folder, filename),
		Folder:    folder,
		Filename:  filename,
		MimeType:  uri.MimeType(),
		Subtype:   uri.Subtype,
		Extension: ext,
		Size:      size,
		Streamed:  streamed,
		Replaced:  replaced,
	}, nil
}

// writeTemp decodes payload into a hidden temp file in dir. On error the
// temp file is removed before returning.
func (d *Disk) writeTemp(ctx context.Context, dir, payload string, streamed, strict bool) (name string, size int64, err error) {
	f, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if streamed {
		size, err = decodeStream(ctx, f, strings.NewReader(payload), d.ChunkSize, strict)
		if err != nil {
			return "", 0, err
		}
	} else {
		if err = ctx.Err(); err != nil {
			return "", 0, err
		}
		data, derr := decodeAll(payload, strict)
		if derr != nil {
			return "", 0, derr
		}
		if _, err = f.Write(data); err != nil {
			return "", 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		size = int64(len(data))
	}

	if err = f.Chmod(d.fileMode()); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err = f.Close(); err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return f.Name(), size, nil
}

// place moves tmp to dir/base.ext according to policy and returns the final
// file name. tmp is consumed on success.
func place(tmp, dir, base, ext string, policy ConflictPolicy) (string, error) {
	switch policy {
	case "", Overwrite:
		name := base + "." + ext
		if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
			return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return name, nil

	case FailOnConflict:
		name := base + "." + ext
		if err := link(tmp, filepath.Join(dir, name)); err != nil {
			return "", err
		}
		return name, nil

	case AddSuffix:
		for i := 0; i < maxSuffixAttempts; i++ {
			name := base + "." + ext
			if i > 0 {
				name = base + "-" + strconv.Itoa(i) + "." + ext
			}
			err := link(tmp, filepath.Join(dir, name))
			if err == nil {
				return name, nil
			}
			if !errors.Is(err, ErrConflict) {
				return "", err
			}
		}
		return "", fmt.Errorf("%w: no free name for %s.%s", ErrConflict, base, ext)
	}
	return "", fmt.Errorf("unknown conflict policy %q", policy)
}

// keepCopy hard-links dir/name to a hidden name and returns that path, or ""
// when there is nothing to keep.
func keepCopy(dir, name string) (string, error) {
	f, err := os.CreateTemp(dir, ".replaced-*")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	keep := f.Name()
	f.Close()
	os.Remove(keep)

	if err := os.Link(filepath.Join(dir, name), keep); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("%w: keep %s: %v", ErrStorageUnavailable, name, err)
	}
	return keep, nil
}

// link publishes tmp at target only if target does not exist yet.
func link(tmp, target string) error {
	if err := os.Link(tmp, target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrConflict, filepath.Base(target))
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	os.Remove(tmp)
	return nil
}

func (d *Disk) dirMode() os.FileMode {
	if d.DirMode == 0 {
		return DefaultDirMode
	}
	return d.DirMode
}

func (d *Disk) fileMode() os.FileMode {
	if d.FileMode == 0 {
		return DefaultFileMode
	}
	return d.FileMode
}

// cleanRelative normalises a slash-separated path below the root. The empty
// string is the root itself.
func cleanRelative(p string) (string, error) {
	p = strings.Trim(strings.ReplaceAll(p, "\\", "/"), "/")
	if p == "" {
		return "", nil
	}
	cleaned := path.Clean(p)
	if !filepath.IsLocal(filepath.FromSlash(cleaned)) {
		return "", fmt.Errorf("%w: %q escapes the storage root", ErrInvalidTarget, p)
	}
	return cleaned, nil
}

func checkBaseName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: bad filename %q", ErrInvalidTarget, name)
	}
	return nil
}

// abs resolves a stored relative path to a filesystem path.
func (d *Disk) abs(rel string) (string, error) {
	cleaned, err := cleanRelative(rel)
	if err != nil {
		return "", err
	}
	if cleaned == "" {
		return d.Root, nil
	}
	return filepath.Join(d.Root, filepath.FromSlash(cleaned)), nil
}
