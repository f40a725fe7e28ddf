// Package validate checks uploaded image files before any processing:
// filename, declared MIME type, byte size, and magic-byte content sniffing.
package validate

import (
	"fmt"
	"strings"

	"github.com/kozaktomas/face-finder/internal/constants"
)

// SupportedImageTypes lists the accepted declared MIME types.
// image/jpg is a common non-standard alias accepted alongside image/jpeg.
var SupportedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

// allowedExtensions lists the accepted filename extensions (lowercase).
var allowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// File describes an uploaded file to validate.
type File struct {
	Name  string
	Type  string
	Size  int64
	Bytes []byte
}

// Result is the outcome of validating a file. All applicable checks run
// and every failure is collected into Errors; content sniffing only runs
// once the metadata checks have passed.
type Result struct {
	IsValid bool
	Errors  []string
}

// IsValidImageType reports whether the declared content type is supported.
func IsValidImageType(contentType string) bool {
	for _, t := range SupportedImageTypes {
		if contentType == t {
			return true
		}
	}
	return false
}

// IsValidFileSize reports whether the size is positive and within the limit.
func IsValidFileSize(size int64) bool {
	return size > 0 && size <= constants.MaxUploadSize
}

// IsValidFilename reports whether the filename is non-empty, within the
// length limit, free of control characters and path separators, and ends
// in an allowed image extension.
func IsValidFilename(filename string) bool {
	if filename == "" || len(filename) > constants.MaxFilenameLength {
		return false
	}
	for _, r := range filename {
		if r < 0x20 || r == 0x7f {
			return false
		}
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return false
		}
	}
	lower := strings.ToLower(filename)
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// MatchesDeclaredType reports whether the first bytes of data carry the
// magic signature of the declared content type.
func MatchesDeclaredType(data []byte, contentType string) bool {
	if len(data) < 4 {
		return false
	}

	switch contentType {
	case "image/jpeg", "image/jpg":
		// FF D8 FF
		return data[0] == 0xff && data[1] == 0xd8 && data[2] == 0xff
	case "image/png":
		// 89 50 4E 47
		return data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4e && data[3] == 0x47
	case "image/webp":
		// "RIFF" at 0-3 and "WEBP" at 8-11
		if len(data) < 12 {
			return false
		}
		return data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
			data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50
	default:
		return false
	}
}

// ImageFile validates an uploaded file. It is a pure function over its
// input: repeated calls with the same file yield the same result.
func ImageFile(file File) Result {
	var errors []string

	if !IsValidFilename(file.Name) {
		errors = append(errors, "invalid filename: only letters, numbers, and safe characters with a .jpg, .jpeg, .png or .webp extension are allowed")
	}

	if !IsValidImageType(file.Type) {
		errors = append(errors, fmt.Sprintf("unsupported file type: %s (supported: %s)",
			file.Type, strings.Join(SupportedImageTypes, ", ")))
	}

	if !IsValidFileSize(file.Size) {
		if file.Size <= 0 {
			errors = append(errors, "file is empty")
		} else {
			errors = append(errors, fmt.Sprintf("file size exceeds limit of %dMB",
				constants.MaxUploadSize/1024/1024))
		}
	}

	// Metadata failures make content inspection pointless.
	if len(errors) > 0 {
		return Result{IsValid: false, Errors: errors}
	}

	if len(file.Bytes) == 0 {
		return Result{IsValid: false, Errors: []string{"file content is empty"}}
	}

	if !MatchesDeclaredType(file.Bytes, file.Type) {
		return Result{IsValid: false, Errors: []string{"file content does not match the declared type"}}
	}

	return Result{IsValid: true}
}
