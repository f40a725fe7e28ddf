package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name     string
		original string
		mimeType string
		expected string
	}{
		{"spaces and punctuation", "My Photo!.PNG", "image/png", "my_photo.png"},
		{"simple jpeg", "holiday.jpg", "image/jpeg", "holiday.jpg"},
		{"jpg alias", "holiday.jpeg", "image/jpg", "holiday.jpg"},
		{"extension replaced", "scan.png", "image/jpeg", "scan.jpg"},
		{"diacritics folded", "café.png", "image/png", "cafe.png"},
		{"unknown type defaults to jpg", "file.bin", "application/octet-stream", "file.jpg"},
		{"dangerous characters dropped", `a<b>c:"d".webp`, "image/webp", "abcd.webp"},
		{"multiple dots keep stem", "a.b.c.jpg", "image/jpeg", "a.b.c.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeFilename(tt.original, tt.mimeType); got != tt.expected {
				t.Errorf("SafeFilename(%q, %q) = %q, want %q", tt.original, tt.mimeType, got, tt.expected)
			}
		})
	}
}

func TestGenerateStorageKeyAt(t *testing.T) {
	date := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	key := generateStorageKeyAt("abc123", "My Photo!.PNG", "image/png", date)

	expected := "uploads/2024/03/05/abc123_my_photo.png"
	if key != expected {
		t.Errorf("got %q, want %q", key, expected)
	}
}

func TestGenerateStorageKey_IsValid(t *testing.T) {
	key := GenerateStorageKey(GenerateFileID(), "photo.jpg", "image/jpeg")

	if !IsValidStorageKey(key) {
		t.Errorf("generated key %q fails its own validation", key)
	}
}

func TestGenerateStorageKey_LongFilenameTruncated(t *testing.T) {
	longName := strings.Repeat("a", 300) + ".jpg"

	key := generateStorageKeyAt("id1", longName, "image/jpeg", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	parsed := ParseStorageKey(key)
	if len(parsed.Filename) > 100 {
		t.Errorf("filename portion is %d chars, want <= 100", len(parsed.Filename))
	}
	if !strings.HasSuffix(parsed.Filename, ".jpg") {
		t.Errorf("truncation dropped the extension: %q", parsed.Filename)
	}
}

func TestParseStorageKey_RoundTrip(t *testing.T) {
	fileID := uuid.NewString()
	date := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)

	key := generateStorageKeyAt(fileID, "Family Reunion.jpg", "image/jpeg", date)
	parsed := ParseStorageKey(key)

	if parsed.Prefix != UploadsPrefix {
		t.Errorf("prefix = %q, want %q", parsed.Prefix, UploadsPrefix)
	}
	if parsed.Year != "2025" || parsed.Month != "12" || parsed.Day != "31" {
		t.Errorf("date components = %s/%s/%s, want 2025/12/31", parsed.Year, parsed.Month, parsed.Day)
	}
	if parsed.FileID != fileID {
		t.Errorf("fileID = %q, want %q", parsed.FileID, fileID)
	}
	if parsed.Filename != SafeFilename("Family Reunion.jpg", "image/jpeg") {
		t.Errorf("filename = %q, want %q", parsed.Filename, SafeFilename("Family Reunion.jpg", "image/jpeg"))
	}
}

func TestParseStorageKey_TempKey(t *testing.T) {
	key := GenerateTempStorageKey("tmp42", "draft.png", "image/png")

	parsed := ParseStorageKey(key)
	if parsed.Prefix != TempPrefix {
		t.Errorf("prefix = %q, want %q", parsed.Prefix, TempPrefix)
	}
	if parsed.FileID != "tmp42" {
		t.Errorf("fileID = %q, want tmp42", parsed.FileID)
	}
	if parsed.Filename != "draft.png" {
		t.Errorf("filename = %q, want draft.png", parsed.Filename)
	}
}

func TestParseStorageKey_Unrecognized(t *testing.T) {
	parsed := ParseStorageKey("somewhere/else/file.jpg")

	if parsed.Prefix != "somewhere" {
		t.Errorf("prefix = %q, want somewhere", parsed.Prefix)
	}
	if parsed.FileID != "" || parsed.Filename != "" {
		t.Errorf("expected empty components, got %+v", parsed)
	}
}

func TestIsValidStorageKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected bool
	}{
		{"valid uploads key", "uploads/2024/03/05/abc_photo.jpg", true},
		{"valid temp key", "temp/abc_photo.jpg", true},
		{"empty", "", false},
		{"wrong prefix", "downloads/photo.jpg", false},
		{"bare prefix", "uploads", false},
		{"control character", "uploads/a\x01b.jpg", false},
		{"reserved character", "uploads/a?b.jpg", false},
		{"angle bracket", "uploads/<photo>.jpg", false},
		{"too long", "uploads/" + strings.Repeat("a", 1020), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidStorageKey(tt.key); got != tt.expected {
				t.Errorf("IsValidStorageKey(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestTruncateFilename(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		maxLength int
		expected  string
	}{
		{"short unchanged", "photo.jpg", 100, "photo.jpg"},
		{"stem truncated", "aaaaaaaaaa.jpg", 8, "aaaa.jpg"},
		{"extension only", "ab.verylongextension", 10, ".verylongextension"},
		{"no extension", "aaaaaaaaaa", 4, "aaaa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncateFilename(tt.filename, tt.maxLength); got != tt.expected {
				t.Errorf("truncateFilename(%q, %d) = %q, want %q", tt.filename, tt.maxLength, got, tt.expected)
			}
		})
	}
}
