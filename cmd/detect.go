package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-finder/internal/config"
	"github.com/kozaktomas/face-finder/internal/detect"
	"github.com/kozaktomas/face-finder/internal/imaging"
)

var detectCmd = &cobra.Command{
	Use:   "detect <image-file>",
	Short: "Detect faces in a local image file",
	Long: `Run face detection on a single image and print the result as JSON.
Uses the same preprocessing and detection pipeline as the API server.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().Float64("min-confidence", 0, "Minimum confidence threshold (0-1, default from config)")
	detectCmd.Flags().Int("max-faces", 0, "Maximum number of faces to return (default from config)")
	detectCmd.Flags().Bool("landmarks", false, "Include facial landmark points")
	detectCmd.Flags().Bool("descriptors", false, "Include face descriptor vectors")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	opts := detect.Options{
		MinConfidence:     cfg.Detection.MinConfidence,
		MaxFaces:          cfg.Detection.MaxFaces,
		EnableLandmarks:   mustGetBool(cmd, "landmarks"),
		EnableDescriptors: mustGetBool(cmd, "descriptors"),
	}
	if v := mustGetFloat64(cmd, "min-confidence"); v > 0 {
		opts.MinConfidence = v
	}
	if v := mustGetInt(cmd, "max-faces"); v > 0 {
		opts.MaxFaces = v
	}

	processor := imaging.NewProcessor(cfg.Image.MaxDimension, cfg.Image.JPEGQuality)
	processed, err := processor.Preprocess(data)
	if err != nil {
		return fmt.Errorf("failed to preprocess image: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Detection.Timeout)
	defer cancel()

	detector := detect.New(provider, opts)
	result, err := detector.Detect(ctx, processed, opts)
	if err != nil {
		return fmt.Errorf("face detection failed: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))

	fmt.Fprintf(os.Stderr, "Found %d face(s) in %dms\n", len(result.Faces), result.ProcessingTime)
	return nil
}
