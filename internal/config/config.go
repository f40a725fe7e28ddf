package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/face-finder/internal/constants"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Detection DetectionConfig
	Image     ImageConfig
	Storage   StorageConfig
	Defaults  DefaultsConfig
}

type DetectionConfig struct {
	Provider          string        // "stub" or "remote" (defaults to stub)
	RemoteURL         string        // base URL of the remote detector service
	ModelPath         string        // model asset path for the detector
	MinConfidence     float64       // default minimum confidence (0.5)
	MaxFaces          int           // default cap on returned faces (10)
	EnableLandmarks   bool          // include landmark points by default
	EnableDescriptors bool          // include descriptor vectors by default
	Timeout           time.Duration // upper bound for one provider call
}

type ImageConfig struct {
	MaxFileSize  int64 // maximum upload size in bytes
	MaxDimension int   // max width/height handed to the detector
	JPEGQuality  int   // re-encode quality
}

type StorageConfig struct {
	Endpoint  string // S3-compatible endpoint (e.g. <account>.r2.cloudflarestorage.com)
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string // public base URL for uploaded objects
	UseSSL    bool
}

// DefaultsConfig holds values baked into the binary from defaults.yaml.
type DefaultsConfig struct {
	Image struct {
		SupportedTypes    []string `yaml:"supported_types"`
		AllowedExtensions []string `yaml:"allowed_extensions"`
	} `yaml:"image"`
	Detection struct {
		MinConfidence float64 `yaml:"min_confidence"`
		MaxFaces      int     `yaml:"max_faces"`
		MaxFacesLimit int     `yaml:"max_faces_limit"`
	} `yaml:"detection"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	var defaults DefaultsConfig
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Detection: DetectionConfig{
			Provider:          envString("DETECTION_PROVIDER", "stub"),
			RemoteURL:         os.Getenv("DETECTION_REMOTE_URL"),
			ModelPath:         envString("DETECTION_MODEL_PATH", "./models"),
			MinConfidence:     envFloat("DETECTION_MIN_CONFIDENCE", defaults.Detection.MinConfidence),
			MaxFaces:          envInt("DETECTION_MAX_FACES", defaults.Detection.MaxFaces),
			EnableLandmarks:   os.Getenv("DETECTION_ENABLE_LANDMARKS") == "true",
			EnableDescriptors: os.Getenv("DETECTION_ENABLE_DESCRIPTORS") == "true",
			Timeout:           time.Duration(envInt("DETECTION_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Image: ImageConfig{
			MaxFileSize:  int64(envInt("MAX_FILE_SIZE", constants.MaxUploadSize)),
			MaxDimension: envInt("IMAGE_MAX_DIMENSION", constants.MaxImageDimension),
			JPEGQuality:  envInt("IMAGE_QUALITY", constants.DefaultJPEGQuality),
		},
		Storage: StorageConfig{
			Endpoint:  os.Getenv("STORAGE_ENDPOINT"),
			AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:    envString("STORAGE_BUCKET", "face-finder-photos"),
			PublicURL: os.Getenv("STORAGE_PUBLIC_URL"),
			UseSSL:    os.Getenv("STORAGE_USE_SSL") != "false",
		},
		Defaults: defaults,
	}
}
