package model

import (
	"path/filepath"
	"strings"
)

// allowedFileTypes maps accepted upload extensions to the content type they are served with.
var allowedFileTypes = map[string]string{
	"pdf":  "application/pdf",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
}

// FileTypeOf returns the normalized lowercase extension of filename without the dot.
func FileTypeOf(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// ContentTypeFor returns the content type for an accepted file type.
// ok is false when the file type is not accepted for upload.
func ContentTypeFor(fileType string) (contentType string, ok bool) {
	contentType, ok = allowedFileTypes[fileType]
	return contentType, ok
}
