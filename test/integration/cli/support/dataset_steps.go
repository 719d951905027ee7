package support

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/tilecrop/internal/testutil"
	"github.com/cucumber/godog"
	"github.com/disintegration/imaging"
)

// anEmptyDataset creates the img/ and gt/ directories.
func (testCtx *TestContext) anEmptyDataset() error {
	for _, dir := range []string{"img", "gt"} {
		if err := testutil.EnsureDir(testCtx.datasetPath(dir)); err != nil {
			return fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}
	return nil
}

// aDatasetImage writes a generated text image of the given size.
func (testCtx *TestContext) aDatasetImage(width, height int, ext, name string) error {
	if err := testCtx.anEmptyDataset(); err != nil {
		return err
	}
	cfg := testutil.DefaultTestImageConfig()
	cfg.Size = testutil.ImageSize{Width: width, Height: height}
	path := testCtx.datasetPath(filepath.Join("img", name+"."+ext))
	if err := imaging.Save(testutil.GenerateTextImage(cfg), path); err != nil {
		return fmt.Errorf("failed to write image %s: %w", path, err)
	}
	return nil
}

// theImageHasLabels writes gt/gt_<name>.txt from a doc string.
func (testCtx *TestContext) theImageHasLabels(name string, content *godog.DocString) error {
	path := testCtx.datasetPath(filepath.Join("gt", "gt_"+name+".txt"))
	return os.WriteFile(path, []byte(strings.TrimSpace(content.Content)+"\n"), 0o600)
}

// theDatasetFileShouldExist verifies a regular file below the dataset root exists.
func (testCtx *TestContext) theDatasetFileShouldExist(rel string) error {
	if !testutil.FileExists(testCtx.datasetPath(rel)) {
		return fmt.Errorf("dataset file %s does not exist", rel)
	}
	return nil
}

// theDatasetDirectoryShouldExist verifies a directory below the dataset root exists.
func (testCtx *TestContext) theDatasetDirectoryShouldExist(rel string) error {
	if !testutil.DirExists(testCtx.datasetPath(rel)) {
		return fmt.Errorf("dataset directory %s does not exist", rel)
	}
	return nil
}

// theDatasetFileShouldNotExist verifies a file below the dataset root is absent.
func (testCtx *TestContext) theDatasetFileShouldNotExist(rel string) error {
	if _, err := os.Stat(testCtx.datasetPath(rel)); err == nil {
		return fmt.Errorf("dataset file %s exists but should not", rel)
	}
	return nil
}

// theDatasetFileShouldContainExactly compares a dataset file with a doc string.
func (testCtx *TestContext) theDatasetFileShouldContainExactly(rel string, content *godog.DocString) error {
	data, err := os.ReadFile(testCtx.datasetPath(rel))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", rel, err)
	}
	want := strings.TrimSpace(content.Content) + "\n"
	if string(data) != want {
		return fmt.Errorf("dataset file %s differs\nExpected:\n%s\nActual:\n%s", rel, want, string(data))
	}
	return nil
}

// thePatchShouldBe verifies the pixel size of a patch image.
func (testCtx *TestContext) thePatchShouldBe(rel string, width, height int) error {
	f, err := os.Open(testCtx.datasetPath(rel))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", rel, err)
	}
	if cfg.Width != width || cfg.Height != height {
		return fmt.Errorf("patch %s is %dx%d, expected %dx%d", rel, cfg.Width, cfg.Height, width, height)
	}
	return nil
}

// theDatasetShouldHavePatchImages counts files in patch/img.
func (testCtx *TestContext) theDatasetShouldHavePatchImages(want int) error {
	entries, err := os.ReadDir(testCtx.datasetPath("patch/img"))
	if err != nil {
		return fmt.Errorf("failed to read patch/img: %w", err)
	}
	if len(entries) != want {
		return fmt.Errorf("patch/img holds %d files, expected %d", len(entries), want)
	}
	return nil
}

// RegisterDatasetSteps registers dataset setup and verification steps.
func (testCtx *TestContext) RegisterDatasetSteps(sc *godog.ScenarioContext) {
	sc.Step(`^an empty dataset$`, testCtx.anEmptyDataset)
	sc.Step(`^a dataset with a (\d+)x(\d+) "([^"]*)" image "([^"]*)"$`, testCtx.aDatasetImage)
	sc.Step(`^the image "([^"]*)" has the labels:$`, testCtx.theImageHasLabels)

	sc.Step(`^the dataset file "([^"]*)" should exist$`, testCtx.theDatasetFileShouldExist)
	sc.Step(`^the dataset file "([^"]*)" should not exist$`, testCtx.theDatasetFileShouldNotExist)
	sc.Step(`^the dataset directory "([^"]*)" should exist$`, testCtx.theDatasetDirectoryShouldExist)
	sc.Step(`^the dataset file "([^"]*)" should contain exactly:$`, testCtx.theDatasetFileShouldContainExactly)
	sc.Step(`^the patch "([^"]*)" should be (\d+)x(\d+) pixels$`, testCtx.thePatchShouldBe)
	sc.Step(`^the dataset should have (\d+) patch images$`, testCtx.theDatasetShouldHavePatchImages)
}
