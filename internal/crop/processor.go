// Package crop turns an annotated dataset of large images into a grid of
// fixed-size, overlapping patches with patch-local annotations.
//
// For each source image the processor resizes it onto a canvas that the
// tiling plan covers exactly, scales its annotations by the same factor and
// then visits every grid cell in row-major order: the cell is cut from the
// canvas, the annotations are clipped to it and the result is written
// immediately.
package crop

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/tilecrop/internal/label"
	"github.com/MeKo-Tech/tilecrop/internal/tiling"
	"github.com/MeKo-Tech/tilecrop/internal/utils"
	"github.com/google/uuid"
)

type imageStatus int

const (
	statusProcessed imageStatus = iota
	statusSkipped
	statusFailed
)

func (s imageStatus) String() string {
	switch s {
	case statusProcessed:
		return "processed"
	case statusSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Processor runs the crop over one dataset.
type Processor struct {
	cfg      Config
	layout   Layout
	writer   *PatchWriter
	logger   *slog.Logger
	progress ProgressCallback
	metrics  *Metrics
}

// NewProcessor validates cfg and prepares a processor.
func NewProcessor(cfg Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crop configuration: %w", err)
	}
	layout := NewLayout(cfg)
	return &Processor{
		cfg:      cfg,
		layout:   layout,
		writer:   NewPatchWriter(layout, cfg),
		logger:   slog.Default(),
		progress: NoOpProgressCallback{},
		metrics:  NewMetrics(),
	}, nil
}

// WithLogger sets the logger.
func (p *Processor) WithLogger(logger *slog.Logger) *Processor {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// WithProgress sets the progress callback.
func (p *Processor) WithProgress(cb ProgressCallback) *Processor {
	if cb != nil {
		p.progress = cb
	}
	return p
}

// WithMetrics replaces the metrics collector.
func (p *Processor) WithMetrics(m *Metrics) *Processor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// Metrics returns the metrics collector of this processor.
func (p *Processor) Metrics() *Metrics { return p.metrics }

// Layout returns the resolved directory layout.
func (p *Processor) Layout() Layout { return p.layout }

// Run crops every image of the dataset. Configuration and layout problems
// abort before anything is written. Per-image problems are recorded in the
// result and reported as ErrImagesFailed once all images were visited.
// Cancelling ctx stops the run at the next cell boundary.
func (p *Processor) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", res.RunID)

	if err := p.layout.CheckInputs(p.cfg.HasGroundTruth); err != nil {
		return res, err
	}
	images, err := discoverImages(p.layout.ImageDir, p.layout.ImageExt)
	if err != nil {
		return res, err
	}
	res.Images = len(images)

	manifest := ManifestFor(p.cfg)
	if err := checkManifest(p.layout.ManifestPath(), manifest, p.cfg.Overwrite); err != nil {
		return res, err
	}
	if err := p.layout.EnsureOutputs(p.cfg.HasGroundTruth, p.cfg.Visualize); err != nil {
		return res, err
	}
	if err := WriteManifest(p.layout.ManifestPath(), manifest); err != nil {
		return res, err
	}

	logger.Info("Starting crop",
		"dataset", p.cfg.DatasetPath,
		"images", len(images),
		"patch_width", p.cfg.PatchWidth,
		"patch_height", p.cfg.PatchHeight,
		"overlap_ratio", p.cfg.OverlapRatio,
		"output", p.layout.OutputDir)

	p.progress.OnStart(len(images))
	defer p.progress.OnComplete()

	for i, path := range images {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		imageStart := time.Now()
		status, err := p.processImage(ctx, logger, path, res)
		if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
			res.Duration = time.Since(start)
			return res, ctxErr
		}
		p.metrics.imageDuration.Observe(time.Since(imageStart).Seconds())
		p.metrics.images.WithLabelValues(status.String()).Inc()

		switch status {
		case statusProcessed:
			res.ImagesProcessed++
		case statusSkipped:
			res.ImagesSkipped++
			logger.Warn("Skipping image", "image", path, "error", err)
		case statusFailed:
			res.ImagesFailed++
			res.Failures = append(res.Failures, ImageFailure{Image: path, Error: err.Error()})
			logger.Error("Image failed", "image", path, "error", err)
			p.progress.OnError(i+1, err)
		}
		p.progress.OnProgress(i+1, len(images))
	}

	res.Duration = time.Since(start)
	logger.Info("Crop finished",
		"processed", res.ImagesProcessed,
		"skipped", res.ImagesSkipped,
		"failed", res.ImagesFailed,
		"patches_written", res.PatchesWritten,
		"patches_skipped", res.PatchesSkipped,
		"duration", res.Duration.Round(time.Millisecond))
	return res, res.Err()
}

// processImage crops one source image. Unreadable images are skipped;
// a missing label file or a write error fails the image.
func (p *Processor) processImage(ctx context.Context, logger *slog.Logger, path string, res *Result) (imageStatus, error) {
	name := imageName(path)
	logger = logger.With("image", name)

	var anns []label.Annotation
	if p.cfg.HasGroundTruth {
		labels, err := label.ReadFile(p.layout.LabelPath(name), logger)
		if err != nil {
			if label.IsNotExist(err) {
				return statusFailed, fmt.Errorf("label file missing: %w", err)
			}
			return statusFailed, fmt.Errorf("read labels: %w", err)
		}
		res.LabelLinesRejected += labels.Rejected
		p.metrics.rejectedLines.Add(float64(labels.Rejected))
		anns = labels.Annotations
	}

	src, err := utils.LoadImage(path)
	if err != nil {
		return statusSkipped, err
	}

	plan, err := tiling.NewPlan(src.Metadata.Width, src.Metadata.Height,
		p.cfg.PatchWidth, p.cfg.PatchHeight, p.cfg.OverlapRatio)
	if err != nil {
		return statusFailed, err
	}
	canvas, scale, err := utils.ResizeToCanvas(src.Image, plan.CanvasWidth, plan.CanvasHeight)
	if err != nil {
		return statusFailed, err
	}
	anns = label.Scale(anns, scale)
	logger.Debug("Planned image", "plan", plan.String(), "scale", scale, "annotations", len(anns))

	if p.cfg.Visualize {
		if err := p.saveImageVis(name, canvas, anns); err != nil {
			return statusFailed, fmt.Errorf("write visualization: %w", err)
		}
	}

	for _, cell := range plan.Cells() {
		if err := ctx.Err(); err != nil {
			return statusFailed, err
		}
		if p.writer.Exists(name, cell) {
			res.PatchesSkipped++
			p.metrics.patches.WithLabelValues("skipped").Inc()
			continue
		}
		if err := p.writeCell(name, canvas, cell, anns, res); err != nil {
			return statusFailed, err
		}
	}
	return statusProcessed, nil
}

func (p *Processor) writeCell(name string, canvas *image.NRGBA, cell tiling.Cell, anns []label.Annotation, res *Result) error {
	patch := Patch{Cell: cell, Image: utils.ExtractPatch(canvas, cell.Rect)}
	if p.cfg.HasGroundTruth {
		kept, dropped := clipAnnotations(anns, cell.Rect)
		patch.Labels = kept
		res.AnnotationsKept += len(kept)
		res.AnnotationsDropped += dropped
		p.metrics.annotations.WithLabelValues("kept").Add(float64(len(kept)))
		p.metrics.annotations.WithLabelValues("dropped").Add(float64(dropped))
	}

	written, err := p.writer.Write(name, patch)
	if err != nil {
		return fmt.Errorf("write patch %d,%d: %w", cell.Row, cell.Col, err)
	}
	if !written {
		res.PatchesSkipped++
		p.metrics.patches.WithLabelValues("skipped").Inc()
		return nil
	}
	res.PatchesWritten++
	p.metrics.patches.WithLabelValues("written").Inc()

	if p.cfg.Visualize && len(patch.Labels) > 0 {
		if err := p.savePatchVis(name, patch); err != nil {
			return fmt.Errorf("write patch visualization %d,%d: %w", cell.Row, cell.Col, err)
		}
	}
	return nil
}
