package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MeKo-Tech/tilecrop/internal/config"
	"github.com/MeKo-Tech/tilecrop/internal/crop"
	"github.com/spf13/cobra"
)

// cropCmd represents the crop command.
var cropCmd = &cobra.Command{
	Use:   "crop",
	Short: "Cut every dataset image into overlapping patches",
	Long: `Cut every image of a dataset into fixed-size, overlapping patches and clip
its annotations into each patch.

Each image is resized (keeping its aspect ratio) onto the smallest canvas that
the patch grid covers exactly, so every patch has the requested size. An
annotation is kept in a patch only when its clipped outline is still a
quadrilateral. Existing patches are skipped, so an interrupted run can be
resumed with the same command.

Examples:
  tilecrop crop --dataset-path ./train --patch-width 640 --patch-height 640
  tilecrop crop --dataset-path ./test --has-gt=false --img-ext png --patch-width 512 --patch-height 512
  tilecrop crop --config tilecrop.yaml --progress --metrics-file /var/lib/node_exporter/tilecrop.prom`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runCropCommand,
}

// cropOptions are the settings of the crop command that are not part of
// the engine configuration.
type cropOptions struct {
	Progress    bool
	MetricsFile string
}

// configToCropConfig maps centralized configuration to crop.Config.
// Explicitly set CLI flags override config file values.
func configToCropConfig(cfg *config.Config, cmd *cobra.Command) (crop.Config, cropOptions) {
	cc := cfg.ToCropConfig()
	opts := cropOptions{Progress: cfg.Output.Progress, MetricsFile: cfg.Metrics.Textfile}
	flags := cmd.Flags()

	if flags.Changed("dataset-path") {
		cc.DatasetPath, _ = flags.GetString("dataset-path")
	}
	if flags.Changed("has-gt") {
		cc.HasGroundTruth, _ = flags.GetBool("has-gt")
	}
	if flags.Changed("img-ext") {
		cc.ImageExt, _ = flags.GetString("img-ext")
	}
	if flags.Changed("patch-width") {
		cc.PatchWidth, _ = flags.GetInt("patch-width")
	}
	if flags.Changed("patch-height") {
		cc.PatchHeight, _ = flags.GetInt("patch-height")
	}
	if flags.Changed("overlap-ratio") {
		cc.OverlapRatio, _ = flags.GetFloat64("overlap-ratio")
	}
	if flags.Changed("visualize") {
		cc.Visualize, _ = flags.GetBool("visualize")
	}
	if flags.Changed("output-dir") {
		cc.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("vis-dir") {
		cc.VisDir, _ = flags.GetString("vis-dir")
	}
	if flags.Changed("jpeg-quality") {
		cc.JPEGQuality, _ = flags.GetInt("jpeg-quality")
	}
	if flags.Changed("write-empty-labels") {
		cc.WriteEmptyLabels, _ = flags.GetBool("write-empty-labels")
	}
	if flags.Changed("overwrite") {
		cc.Overwrite, _ = flags.GetBool("overwrite")
	}
	if flags.Changed("progress") {
		opts.Progress, _ = flags.GetBool("progress")
	}
	if flags.Changed("metrics-file") {
		opts.MetricsFile, _ = flags.GetString("metrics-file")
	}

	return cc, opts
}

func runCropCommand(cmd *cobra.Command, args []string) error {
	cc, opts := configToCropConfig(GetConfig(), cmd)

	processor, err := crop.NewProcessor(cc)
	if err != nil {
		return err
	}
	processor.WithLogger(slog.Default())
	if opts.Progress {
		processor.WithProgress(crop.NewConsoleProgressCallback(cmd.ErrOrStderr(), "Cropping: "))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, runErr := processor.Run(ctx)

	if opts.MetricsFile != "" {
		if err := processor.Metrics().WriteTextfile(opts.MetricsFile); err != nil {
			slog.Error("Failed to write metrics file", "path", opts.MetricsFile, "error", err)
		}
	}

	if result != nil && !errors.Is(runErr, crop.ErrMissingInputDir) && !errors.Is(runErr, crop.ErrManifestMismatch) {
		summary, err := crop.FormatResult(result, "text")
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(cmd.OutOrStdout(), summary)
	}

	if runErr != nil {
		return fmt.Errorf("crop failed: %w", runErr)
	}
	return nil
}

// addCropFlags registers the crop flags on cmd.
func addCropFlags(cmd *cobra.Command) {
	defaults := crop.DefaultConfig()

	// Dataset flags
	cmd.Flags().String("dataset-path", "", "dataset directory containing img/ and gt/ (required)")
	cmd.Flags().Bool("has-gt", defaults.HasGroundTruth, "dataset has ground-truth label files in gt/")
	cmd.Flags().String("img-ext", defaults.ImageExt, "image file extension without the dot (jpg, png, bmp, tif, gif)")

	// Tiling flags
	cmd.Flags().Int("patch-width", 0, "patch width in pixels (required)")
	cmd.Flags().Int("patch-height", 0, "patch height in pixels (required)")
	cmd.Flags().Float64("overlap-ratio", defaults.OverlapRatio, "fraction of a patch shared with its neighbour, in [0, 1)")

	// Output flags
	cmd.Flags().Bool("visualize", defaults.Visualize, "write annotated preview images")
	cmd.Flags().String("output-dir", "", "output directory (default <dataset-path>/patch)")
	cmd.Flags().String("vis-dir", "", "full-image preview directory (default <dataset-path>/vis)")
	cmd.Flags().Int("jpeg-quality", defaults.JPEGQuality, "JPEG quality for patches and previews (1-100)")
	cmd.Flags().Bool("write-empty-labels", defaults.WriteEmptyLabels, "write a label file even for patches without annotations")
	cmd.Flags().Bool("overwrite", defaults.Overwrite, "rewrite existing patches and ignore a differing manifest")

	// Progress and monitoring flags
	cmd.Flags().Bool("progress", false, "show progress bar on stderr")
	cmd.Flags().String("metrics-file", "", "write Prometheus metrics in text format to this file after the run")
}

func init() {
	rootCmd.AddCommand(cropCmd)
	addCropFlags(cropCmd)
}
