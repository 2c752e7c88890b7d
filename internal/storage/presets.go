package storage

import (
	"context"
	"fmt"
	"path"
)

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindFile  Kind = "file"
)

func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindImage, KindVideo, KindAudio, KindFile:
		return k, true
	}
	return "", false
}

// Preset holds the per-kind defaults applied by Save.
type Preset struct {
	MediaType       string // required media type, empty accepts any
	Folder          string
	MaxSize         int64
	StreamThreshold int64
}

// DefaultPresets mirrors the limits of the cropper widget: 10 MiB images,
// 10 GiB video, 500 MiB audio and 2 GiB generic files.
func DefaultPresets(defaultFolder string) map[Kind]Preset {
	return map[Kind]Preset{
		KindImage: {
			MediaType:       "image",
			Folder:          defaultFolder,
			MaxSize:         10 << 20,
			StreamThreshold: DefaultStreamThreshold,
		},
		KindVideo: {
			MediaType:       "video",
			Folder:          path.Join(defaultFolder, "videos"),
			MaxSize:         10 << 30,
			StreamThreshold: DefaultStreamThreshold,
		},
		KindAudio: {
			MediaType:       "audio",
			Folder:          path.Join(defaultFolder, "audio"),
			MaxSize:         500 << 20,
			StreamThreshold: 50 << 20,
		},
		KindFile: {
			Folder:          path.Join(defaultFolder, "files"),
			MaxSize:         2 << 30,
			StreamThreshold: DefaultStreamThreshold,
		},
	}
}

// Options expands the preset for one call. Empty folder keeps the preset
// folder.
func (p Preset) Options(kind Kind, folder, filename string) Options {
	if folder == "" {
		folder = p.Folder
	}
	return Options{
		Kind:             kind,
		Folder:           folder,
		Filename:         filename,
		MaxSize:          p.MaxSize,
		MediaType:        p.MediaType,
		SubtypeExtension: p.MediaType != "",
		StreamThreshold:  p.StreamThreshold,
		Strict:           true,
	}
}

// Options expands the preset registered for kind into persist options.
func (d *Disk) Options(kind Kind, folder, filename string, policy ConflictPolicy) (Options, error) {
	p, ok := d.Presets[kind]
	if !ok {
		return Options{}, fmt.Errorf("no preset for kind %q", kind)
	}
	opts := p.Options(kind, folder, filename)
	opts.OnConflict = policy
	return opts, nil
}

// Save persists dataURI with the preset registered for kind.
func (d *Disk) Save(ctx context.Context, kind Kind, dataURI, folder, filename string, policy ConflictPolicy) (*Result, error) {
	opts, err := d.Options(kind, folder, filename, policy)
	if err != nil {
		return nil, err
	}
	return d.Store(ctx, dataURI, opts)
}

func (d *Disk) SaveImage(ctx context.Context, dataURI, folder, filename string) (*Result, error) {
	return d.Save(ctx, KindImage, dataURI, folder, filename, Overwrite)
}

func (d *Disk) SaveVideo(ctx context.Context, dataURI, folder, filename string) (*Result, error) {
	return d.Save(ctx, KindVideo, dataURI, folder, filename, Overwrite)
}

func (d *Disk) SaveAudio(ctx context.Context, dataURI, folder, filename string) (*Result, error) {
	return d.Save(ctx, KindAudio, dataURI, folder, filename, Overwrite)
}

func (d *Disk) SaveFile(ctx context.Context, dataURI, folder, filename string) (*Result, error) {
	return d.Save(ctx, KindFile, dataURI, folder, filename, Overwrite)
}
