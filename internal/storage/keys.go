// Package storage derives object storage keys for uploaded files and
// provides a retrying gateway over an S3/R2-compatible object store.
package storage

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kozaktomas/face-finder/internal/constants"
)

// Storage key prefixes. Everything under uploads/ is durable; temp/ holds
// intermediate files eligible for cleanup.
const (
	UploadsPrefix = "uploads"
	TempPrefix    = "temp"
)

// GenerateFileID returns a new unique file identifier.
func GenerateFileID() string {
	return uuid.NewString()
}

// removeDiacritics strips diacritical marks from a string (e.g. "café" -> "cafe").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// CanonicalExtension maps a MIME type to the extension used in storage
// keys. Unknown types fall back to .jpg.
func CanonicalExtension(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// SafeFilename derives a storage-safe filename from the original name:
// diacritics folded, lowercased, whitespace replaced with underscores,
// unsafe characters dropped, and the extension replaced with the
// canonical one for the MIME type.
func SafeFilename(originalName, mimeType string) string {
	name := strings.ToLower(removeDiacritics(originalName))

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	// Strip the original extension before appending the canonical one.
	if idx := strings.LastIndex(cleaned, "."); idx > 0 {
		cleaned = cleaned[:idx]
	}

	return cleaned + CanonicalExtension(mimeType)
}

// truncateFilename shortens a filename to maxLength, preserving the
// extension. If the extension alone exceeds the limit, only the
// extension is kept.
func truncateFilename(filename string, maxLength int) string {
	if len(filename) <= maxLength {
		return filename
	}

	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return filename[:maxLength]
	}

	extension := filename[idx:]
	available := maxLength - len(extension)
	if available <= 0 {
		return extension
	}
	return filename[:available] + extension
}

// GenerateStorageKey builds the durable storage key for a file:
// uploads/YYYY/MM/DD/{fileID}_{safeFilename}, dated with the current UTC day.
func GenerateStorageKey(fileID, originalName, mimeType string) string {
	return generateStorageKeyAt(fileID, originalName, mimeType, time.Now().UTC())
}

func generateStorageKeyAt(fileID, originalName, mimeType string, now time.Time) string {
	safeName := truncateFilename(SafeFilename(originalName, mimeType), constants.MaxStorageFilenameLength)
	return UploadsPrefix + "/" + now.Format("2006/01/02") + "/" + fileID + "_" + safeName
}

// GenerateTempStorageKey builds a key under temp/ for intermediate files.
func GenerateTempStorageKey(fileID, originalName, mimeType string) string {
	safeName := truncateFilename(SafeFilename(originalName, mimeType), constants.MaxStorageFilenameLength)
	return TempPrefix + "/" + fileID + "_" + safeName
}

// ParsedKey holds the components recovered from a storage key.
type ParsedKey struct {
	Prefix   string
	Year     string
	Month    string
	Day      string
	FileID   string
	Filename string
}

// ParseStorageKey splits a storage key back into its components. Keys
// that do not match a known layout return only the prefix.
func ParseStorageKey(key string) ParsedKey {
	parts := strings.Split(key, "/")

	switch {
	case len(parts) == 5 && parts[0] == UploadsPrefix:
		parsed := ParsedKey{Prefix: parts[0], Year: parts[1], Month: parts[2], Day: parts[3]}
		parsed.FileID, parsed.Filename = splitFileComponent(parts[4])
		return parsed
	case len(parts) == 2 && parts[0] == TempPrefix:
		parsed := ParsedKey{Prefix: parts[0]}
		parsed.FileID, parsed.Filename = splitFileComponent(parts[1])
		return parsed
	default:
		return ParsedKey{Prefix: parts[0]}
	}
}

// splitFileComponent splits "fileID_filename.ext" at the first underscore.
func splitFileComponent(s string) (fileID, filename string) {
	idx := strings.Index(s, "_")
	if idx <= 0 {
		return "", ""
	}
	return s[:idx], s[idx+1:]
}

// IsValidStorageKey reports whether a key is usable: non-empty, within
// the length limit, free of control and reserved characters, and under a
// recognized prefix.
func IsValidStorageKey(key string) bool {
	if key == "" || len(key) > constants.MaxStorageKeyLength {
		return false
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return false
		}
		switch r {
		case '<', '>', ':', '"', '|', '?', '*':
			return false
		}
	}
	return strings.HasPrefix(key, UploadsPrefix+"/") || strings.HasPrefix(key, TempPrefix+"/")
}
