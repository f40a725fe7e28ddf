// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// File upload constants
const (
	// MaxUploadSize is the maximum accepted upload size in bytes (10 MiB)
	MaxUploadSize = 10 * 1024 * 1024

	// MaxFilenameLength is the maximum length of an original filename
	MaxFilenameLength = 255
)

// Face detection constants
const (
	// DefaultMinConfidence is the default minimum detection confidence
	DefaultMinConfidence = 0.5

	// DefaultMaxFaces is the default cap on returned faces per image
	DefaultMaxFaces = 10

	// MaxFacesLimit is the hard upper bound on the maxFaces option
	MaxFacesLimit = 50

	// LandmarkPointCount is the number of facial landmark points per face
	LandmarkPointCount = 68

	// DescriptorLength is the length of a face descriptor vector
	DescriptorLength = 128
)

// Image processing constants
const (
	// MaxImageDimension is the maximum dimension (width or height) for
	// the buffer handed to the detection provider
	MaxImageDimension = 1024

	// DefaultJPEGQuality is the quality used when re-encoding images
	DefaultJPEGQuality = 80
)

// Storage constants
const (
	// MaxStorageKeyLength is the maximum length of an object storage key
	MaxStorageKeyLength = 1024

	// MaxStorageFilenameLength is the maximum length of the filename
	// portion of a storage key (stem + extension, after sanitizing)
	MaxStorageFilenameLength = 100

	// MaxUploadAttempts is the number of put attempts before giving up
	MaxUploadAttempts = 3
)

// API error codes returned in error response bodies.
const (
	CodeMissingFile        = "MISSING_FILE"
	CodeInvalidFileType    = "INVALID_FILE_TYPE"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidParams      = "INVALID_PARAMS"
	CodeInvalidContentType = "INVALID_CONTENT_TYPE"
	CodeInvalidFileID      = "INVALID_FILE_ID"
	CodeDetectionError     = "DETECTION_ERROR"
	CodeUploadFailed       = "UPLOAD_FAILED"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeNotImplemented     = "NOT_IMPLEMENTED"
	CodeDatabaseRequired   = "DATABASE_REQUIRED"
)
