package models

import "time"

// UploadResponse is returned after a data URI has been stored
type UploadResponse struct {
	Success  bool   `json:"success"`
	ID       uint   `json:"id"`
	Path     string `json:"path"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// Media is the public view of a catalogue record
type Media struct {
	ID           uint      `json:"id"`
	Path         string    `json:"path"`
	URL          string    `json:"url"`
	Kind         string    `json:"kind"`
	Folder       string    `json:"folder"`
	Filename     string    `json:"filename"`
	MimeType     string    `json:"mime_type"`
	DeclaredMime string    `json:"declared_mime"`
	Extension    string    `json:"extension"`
	Size         int64     `json:"size"`
	Exists       *bool     `json:"exists,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error  string      `json:"error"`
	Code   string      `json:"code"`
	Fields interface{} `json:"fields,omitempty"`
}

// CropperConfig is the widget configuration served to the browser
type CropperConfig struct {
	UploadURL      string   `json:"upload_url"`
	Ratios         []Ratio  `json:"ratios"`
	EnableRatio    bool     `json:"enable_ratio"`
	EnableCrop     bool     `json:"enable_crop"`
	DefaultFormat  string   `json:"default_format"`
	DefaultQuality int      `json:"default_quality"`
	MaxFileSize    int64    `json:"max_file_size"`
	AllowedTypes   []string `json:"allowed_types"`
	Formats        []string `json:"formats"`
}

type Ratio struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
