package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/addonsync/pkg/checksum"
	"github.com/sidkik/addonsync/pkg/lockprobe"
	"github.com/sidkik/addonsync/pkg/manifest"
)

func writeFile(t *testing.T, path, contents string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	addonDir := filepath.Join(dir, "Bagnon")
	writeFile(t, filepath.Join(addonDir, "Bagnon.toc"), "toc")
	writeFile(t, filepath.Join(addonDir, "core", "bags.lua"), "bags")
	writeFile(t, filepath.Join(addonDir, "core", "bags.lua.bak"), "old")

	out := bytes.NewBuffer(nil)
	stdout = out
	defer func() {
		stdout = os.Stdout
		isLocked = lockprobe.IsLocked
	}()

	builder := manifest.Builder{Exclude: []string{"**/*.bak"}}

	// Print to stdout.
	require.NoError(t, run(builder, addonDir, options{algorithm: "xxhash"}))
	var printed manifest.Manifest
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, checksum.XXHash, printed.Algorithm)
	require.Len(t, printed.Files, 2)
	assert.Equal(t, "Bagnon.toc", printed.Files[0].RelativePath)
	assert.Equal(t, "core/bags.lua", printed.Files[1].RelativePath)

	// Write to a file, skipping locked files.
	isLocked = func(path string) bool { return filepath.Base(path) == "bags.lua" }
	outPath := filepath.Join(dir, "manifest.json")
	require.NoError(t, run(builder, addonDir, options{out: outPath, skipLocked: true}))

	written, err := manifest.Read(outPath)
	require.NoError(t, err)
	assert.Equal(t, checksum.SHA256, written.Algorithm)
	require.Len(t, written.Files, 1)
	assert.Equal(t, "Bagnon.toc", written.Files[0].RelativePath)

	assert.Error(t, run(builder, addonDir, options{algorithm: "md5"}))
}
