package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Dataset builds an on-disk dataset with img/ and gt/ sub-directories.
type Dataset struct {
	t    *testing.T
	Root string
	Ext  string
}

// NewDataset creates an empty dataset in a fresh temporary directory.
func NewDataset(t *testing.T, ext string) *Dataset {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, EnsureDir(filepath.Join(root, "img")))
	require.NoError(t, EnsureDir(filepath.Join(root, "gt")))
	return &Dataset{t: t, Root: root, Ext: ext}
}

// ImagePath returns the path of the named source image.
func (d *Dataset) ImagePath(name string) string {
	return filepath.Join(d.Root, "img", name+"."+d.Ext)
}

// LabelPath returns the path of the named label file.
func (d *Dataset) LabelPath(name string) string {
	return filepath.Join(d.Root, "gt", "gt_"+name+".txt")
}

// AddImage generates and saves a source image.
func (d *Dataset) AddImage(name string, cfg TestImageConfig) {
	d.t.Helper()
	SaveImage(d.t, GenerateTextImage(cfg), d.ImagePath(name))
}

// AddLabels writes the label file of name, one line per entry.
func (d *Dataset) AddLabels(name string, lines ...string) {
	d.t.Helper()
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	require.NoError(d.t, os.WriteFile(d.LabelPath(name), []byte(content), 0o600))
}

// AddRaw writes arbitrary bytes under the dataset root.
func (d *Dataset) AddRaw(rel string, data []byte) {
	d.t.Helper()
	path := filepath.Join(d.Root, rel)
	require.NoError(d.t, EnsureDir(filepath.Dir(path)))
	require.NoError(d.t, os.WriteFile(path, data, 0o600))
}

// AddAnnotatedImage draws the words into an image and writes a label file
// whose boxes enclose them.
func (d *Dataset) AddAnnotatedImage(name string, cfg TestImageConfig) {
	d.t.Helper()
	d.AddImage(name, cfg)

	lines := make([]string, 0, len(cfg.Words))
	for _, w := range cfg.Words {
		q := WordQuad(w)
		lines = append(lines, fmt.Sprintf("%d,%d,%d,%d,%d,%d,%d,%d,%s",
			q[0], q[1], q[2], q[3], q[4], q[5], q[6], q[7], w.Text))
	}
	d.AddLabels(name, lines...)
}
