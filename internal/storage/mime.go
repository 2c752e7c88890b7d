package storage

import "strings"

// DefaultExtension is used when neither the MIME table nor the subtype
// gives an extension.
const DefaultExtension = "bin"

var mimeExtensions = map[string]string{
	"video/mp4":        "mp4",
	"video/mpeg":       "mpeg",
	"video/ogg":        "ogv",
	"video/webm":       "webm",
	"video/avi":        "avi",
	"video/quicktime":  "mov",
	"video/x-msvideo":  "avi",
	"video/x-matroska": "mkv",

	"audio/mpeg":  "mp3",
	"audio/wav":   "wav",
	"audio/ogg":   "oga",
	"audio/webm":  "weba",
	"audio/aac":   "aac",
	"audio/x-wav": "wav",
	"audio/flac":  "flac",

	"image/jpeg":    "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",

	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   "docx",
	"application/vnd.ms-excel":                                                  "xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         "xlsx",
	"application/vnd.ms-powerpoint":                                             "ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
	"application/zip":              "zip",
	"application/x-rar-compressed": "rar",
	"application/x-7z-compressed":  "7z",

	"text/plain": "txt",
	"text/csv":   "csv",
}

// ExtensionFor looks mimeType up in the static table.
func ExtensionFor(mimeType string) (string, bool) {
	ext, ok := mimeExtensions[strings.ToLower(mimeType)]
	return ext, ok
}

// ResolveExtension returns the table extension for mimeType. On a miss it
// falls back to subtype when useSubtype is set, otherwise DefaultExtension.
func ResolveExtension(mimeType, subtype string, useSubtype bool) string {
	if ext, ok := ExtensionFor(mimeType); ok {
		return ext
	}
	if useSubtype && isPlainToken(subtype) {
		return strings.ToLower(subtype)
	}
	return DefaultExtension
}

// isPlainToken rejects subtypes like "svg+xml" or "vnd.foo" that make poor
// file extensions.
func isPlainToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
