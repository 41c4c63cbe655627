package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	videoTypes = map[string]string{"video/mp4": ".mp4", "video/mov": ".mov", "video/avi": ".avi",
		"video/webm": ".webm", "video/quicktime": ".mov"}
	badNameChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)
)

// MaxVideoSize is the upload limit
const MaxVideoSize = 500 * 1024 * 1024

// MakeValidateFileName returns a safe object name for the uploaded file:
// drops directories, replaces unsupported symbols and lowercases the extension
func MakeValidateFileName(id, fileName string) (string, error) {
	base := filepath.Base(filepath.ToSlash(strings.TrimSpace(fileName)))
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("wrong file name '%s'", fileName)
	}
	ext := filepath.Ext(base)
	name := badNameChars.ReplaceAllString(strings.TrimSuffix(base, ext), "_")
	if name == "" || name == "_" {
		return "", fmt.Errorf("wrong file name '%s'", fileName)
	}
	res := name + strings.ToLower(ext)
	return MakeFileName(id, res), nil
}

// MakeFileName joins job ID and file name into an object name
func MakeFileName(id, fileName string) string {
	if id == "" {
		return fileName
	}
	return id + "/" + fileName
}

// SupportVideoType checks if video mime type is allowed
func SupportVideoType(mimeType string) bool {
	_, ok := videoTypes[strings.ToLower(strings.TrimSpace(mimeType))]
	return ok
}

// VideoExt returns file extension by the video mime type
func VideoExt(mimeType string) string {
	return videoTypes[strings.ToLower(strings.TrimSpace(mimeType))]
}

// ParamTrue - returns true if string param indicates true value
func ParamTrue(prm string) bool {
	return strings.ToLower(prm) == "true" || prm == "1"
}
