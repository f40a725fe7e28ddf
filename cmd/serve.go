package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/detect"
	"github.com/kozaktomas/face-finder/internal/storage"
	"github.com/kozaktomas/face-finder/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face Finder web server.
The server exposes the face detection and photo upload API, backed by
the configured detection provider and object storage.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8787, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// buildProvider selects the detection provider from config.
func buildProvider(cfg *config.Config) (detect.Provider, error) {
	switch cfg.Detection.Provider {
	case "", "stub":
		return detect.NewStubProvider(), nil
	case "remote":
		if cfg.Detection.RemoteURL == "" {
			return nil, errors.New("DETECTION_REMOTE_URL is required when DETECTION_PROVIDER=remote")
		}
		return detect.NewRemoteProvider(cfg.Detection.RemoteURL), nil
	default:
		return nil, fmt.Errorf("unknown detection provider %q", cfg.Detection.Provider)
	}
}

// buildGateway wires the object storage gateway when storage is
// configured. Returns nil when it is not; uploads are then disabled
// but detection keeps working.
func buildGateway(cfg *config.Config) (*storage.Gateway, error) {
	if cfg.Storage.Endpoint == "" {
		return nil, nil
	}
	store, err := storage.NewS3Store(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
		cfg.Storage.UseSSL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}
	return storage.NewGateway(store, cfg.Storage.PublicURL, storage.DefaultRetryPolicy()), nil
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Using %s detection provider\n", provider.Name())

	detector := detect.New(provider, detect.Options{
		MinConfidence:     cfg.Detection.MinConfidence,
		MaxFaces:          cfg.Detection.MaxFaces,
		EnableLandmarks:   cfg.Detection.EnableLandmarks,
		EnableDescriptors: cfg.Detection.EnableDescriptors,
	})

	gateway, err := buildGateway(cfg)
	if err != nil {
		return err
	}
	if gateway == nil {
		fmt.Println("Object storage not configured, uploads disabled (set STORAGE_ENDPOINT to enable)")
	} else {
		fmt.Printf("Object storage enabled (bucket %s)\n", cfg.Storage.Bucket)
	}

	port, host := resolveServeHostPort(cmd)

	server := web.NewServer(cfg, port, host, web.Dependencies{
		Detector: detector,
		Gateway:  gateway,
		Version:  Version,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Finder API on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
