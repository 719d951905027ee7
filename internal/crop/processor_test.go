package crop

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/tilecrop/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageConfig() testutil.TestImageConfig {
	cfg := testutil.DefaultTestImageConfig()
	cfg.Size = testutil.ImageSize{Width: 200, Height: 100}
	return cfg
}

// newPageDataset writes a 200x100 page with three annotations. With
// 100x100 patches and 0.5 overlap it yields a 1x3 grid.
func newPageDataset(t *testing.T) *testutil.Dataset {
	t.Helper()
	ds := testutil.NewDataset(t, "png")
	ds.AddImage("page", pageConfig())
	ds.AddLabels("page",
		"10,10,40,10,40,30,10,30,a",
		"90,40,60,40,60,20,90,20,b",
		"120,50,180,50,180,80,120,80,###",
		"not a label line",
	)
	return ds
}

func newTestProcessor(t *testing.T, cfg Config) *Processor {
	t.Helper()
	p, err := NewProcessor(cfg)
	require.NoError(t, err)
	return p.WithLogger(discardLogger())
}

func pngConfig(ds *testutil.Dataset) Config {
	cfg := validConfig(ds.Root)
	cfg.ImageExt = "png"
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // G304: test output paths
	require.NoError(t, err)
	return string(data)
}

func TestRun_EndToEnd(t *testing.T) {
	ds := newPageDataset(t)
	p := newTestProcessor(t, pngConfig(ds))
	l := p.Layout()

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	require.NoError(t, err, "every run gets an id")
	assert.Equal(t, 1, res.Images)
	assert.Equal(t, 1, res.ImagesProcessed)
	assert.Equal(t, 3, res.PatchesWritten)
	assert.Equal(t, 5, res.AnnotationsKept)
	assert.Equal(t, 0, res.AnnotationsDropped)
	assert.Equal(t, 1, res.LabelLinesRejected)

	assert.Equal(t, "10,10,40,10,40,30,10,30,a\n60,20,90,20,90,40,60,40,b\n",
		readFile(t, l.PatchLabelPath("page", 0, 0)))
	assert.Equal(t, "10,20,40,20,40,40,10,40,b\n70,50,100,50,100,80,70,80,###\n",
		readFile(t, l.PatchLabelPath("page", 0, 1)))
	assert.Equal(t, "20,50,80,50,80,80,20,80,###\n",
		readFile(t, l.PatchLabelPath("page", 0, 2)))

	for col := range 3 {
		img := testutil.LoadImage(t, l.PatchImagePath("page", 0, col))
		assert.Equal(t, 100, img.Bounds().Dx())
		assert.Equal(t, 100, img.Bounds().Dy())
		assert.FileExists(t, l.PatchVisPath("page", 0, col))
	}
	assert.NoFileExists(t, l.PatchImagePath("page", 1, 0))
	assert.FileExists(t, l.VisPath("page"))
	assert.FileExists(t, l.ManifestPath())
}

func TestRun_ResumeSkipsExistingPatches(t *testing.T) {
	ds := newPageDataset(t)
	cfg := pngConfig(ds)
	cfg.Visualize = false

	_, err := newTestProcessor(t, cfg).Run(context.Background())
	require.NoError(t, err)

	res, err := newTestProcessor(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.PatchesWritten)
	assert.Equal(t, 3, res.PatchesSkipped)
	assert.Equal(t, 1, res.ImagesProcessed)

	cfg.Overwrite = true
	res, err = newTestProcessor(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.PatchesWritten)
}

func TestRun_ManifestMismatch(t *testing.T) {
	ds := newPageDataset(t)
	cfg := pngConfig(ds)
	cfg.Visualize = false

	_, err := newTestProcessor(t, cfg).Run(context.Background())
	require.NoError(t, err)

	cfg.PatchWidth = 50
	_, err = newTestProcessor(t, cfg).Run(context.Background())
	require.ErrorIs(t, err, ErrManifestMismatch)

	cfg.Overwrite = true
	res, err := newTestProcessor(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, res.PatchesWritten, "50x100 patches at stride 25 give a 1x7 grid")

	m, err := ReadManifest(NewLayout(cfg).ManifestPath())
	require.NoError(t, err)
	assert.Equal(t, 50, m.PatchWidth)
}

func TestRun_ScalesAnnotations(t *testing.T) {
	ds := testutil.NewDataset(t, "png")
	img := testutil.DefaultTestImageConfig()
	img.Size = testutil.ImageSize{Width: 120, Height: 120}
	ds.AddImage("small", img)
	ds.AddLabels("small", "8,8,40,8,40,24,8,24,word")

	cfg := pngConfig(ds)
	cfg.Visualize = false
	p := newTestProcessor(t, cfg)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.PatchesWritten, "120x120 is resized onto a 150x150 canvas")
	assert.Equal(t, "10,10,50,10,50,30,10,30,word\n",
		readFile(t, p.Layout().PatchLabelPath("small", 0, 0)))
}

func TestRun_MissingLabelFileFailsOnlyThatImage(t *testing.T) {
	ds := newPageDataset(t)
	ds.AddImage("unlabelled", pageConfig())

	cfg := pngConfig(ds)
	cfg.Visualize = false
	p := newTestProcessor(t, cfg)

	res, err := p.Run(context.Background())
	require.ErrorIs(t, err, ErrImagesFailed)
	assert.Equal(t, 1, res.ImagesProcessed)
	assert.Equal(t, 1, res.ImagesFailed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, ds.ImagePath("unlabelled"), res.Failures[0].Image)
	assert.FileExists(t, p.Layout().PatchImagePath("page", 0, 0))
	assert.NoFileExists(t, p.Layout().PatchImagePath("unlabelled", 0, 0))
}

func TestRun_CorruptImageIsSkipped(t *testing.T) {
	ds := newPageDataset(t)
	ds.AddRaw(filepath.Join("img", "broken.png"), []byte("not a png"))
	ds.AddLabels("broken", "0,0,10,0,10,10,0,10,x")

	cfg := pngConfig(ds)
	cfg.Visualize = false

	res, err := newTestProcessor(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.ImagesSkipped)
	assert.Equal(t, 1, res.ImagesProcessed)
}

func TestRun_MissingInputDirectories(t *testing.T) {
	ds := testutil.NewDataset(t, "png")
	require.NoError(t, os.Remove(filepath.Join(ds.Root, "gt")))

	cfg := pngConfig(ds)
	_, err := newTestProcessor(t, cfg).Run(context.Background())
	require.ErrorIs(t, err, ErrMissingInputDir)
	assert.NoDirExists(t, filepath.Join(ds.Root, "patch"), "nothing is written before inputs are checked")

	cfg.HasGroundTruth = false
	res, err := newTestProcessor(t, cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Images)
}

func TestRun_WithoutGroundTruth(t *testing.T) {
	ds := testutil.NewDataset(t, "png")
	ds.AddImage("page", pageConfig())

	cfg := pngConfig(ds)
	cfg.HasGroundTruth = false
	p := newTestProcessor(t, cfg)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.PatchesWritten)
	assert.NoDirExists(t, p.Layout().PatchLabelDir)
	assert.NoFileExists(t, p.Layout().PatchVisPath("page", 0, 2), "patches without labels are not visualized")
}

func TestRun_PatchVisOnlyForLabelledCells(t *testing.T) {
	ds := testutil.NewDataset(t, "png")
	ds.AddImage("page", pageConfig())
	ds.AddLabels("page", "10,10,40,10,40,30,10,30,a")

	p := newTestProcessor(t, pngConfig(ds))
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.PatchesWritten)

	l := p.Layout()
	assert.FileExists(t, l.PatchVisPath("page", 0, 0))
	assert.FileExists(t, l.PatchImagePath("page", 0, 2))
	assert.NoFileExists(t, l.PatchLabelPath("page", 0, 2))
	assert.NoFileExists(t, l.PatchVisPath("page", 0, 1))
	assert.NoFileExists(t, l.PatchVisPath("page", 0, 2))
}

func TestRun_Cancelled(t *testing.T) {
	ds := newPageDataset(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestProcessor(t, pngConfig(ds))
	res, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.PatchesWritten)
	assert.NoFileExists(t, p.Layout().PatchImagePath("page", 0, 0))
}

func TestRun_MetricsTextfile(t *testing.T) {
	ds := newPageDataset(t)
	cfg := pngConfig(ds)
	cfg.Visualize = false
	p := newTestProcessor(t, cfg)

	_, err := p.Run(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tilecrop.prom")
	require.NoError(t, p.Metrics().WriteTextfile(path))
	text := readFile(t, path)
	assert.Contains(t, text, `tilecrop_images_total{status="processed"} 1`)
	assert.Contains(t, text, `tilecrop_patches_total{status="written"} 3`)
	assert.Contains(t, text, `tilecrop_annotations_total{status="kept"} 5`)
	assert.Contains(t, text, "tilecrop_label_lines_rejected_total 1")
	assert.Contains(t, text, "tilecrop_image_duration_seconds_count 1")
}

type recordingProgress struct {
	started, completed bool
	total, last        int
	errors             int
}

func (r *recordingProgress) OnStart(total int)         { r.started, r.total = true, total }
func (r *recordingProgress) OnProgress(current, _ int) { r.last = current }
func (r *recordingProgress) OnComplete()               { r.completed = true }
func (r *recordingProgress) OnError(_ int, _ error)    { r.errors++ }

func TestRun_ReportsProgress(t *testing.T) {
	ds := newPageDataset(t)
	ds.AddImage("unlabelled", pageConfig())
	cfg := pngConfig(ds)
	cfg.Visualize = false

	rec := &recordingProgress{}
	_, err := newTestProcessor(t, cfg).WithProgress(rec).Run(context.Background())
	require.ErrorIs(t, err, ErrImagesFailed)
	assert.True(t, rec.started)
	assert.True(t, rec.completed)
	assert.Equal(t, 2, rec.total)
	assert.Equal(t, 2, rec.last)
	assert.Equal(t, 1, rec.errors)
}
