package posesource

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirListAndFetch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "2_pose.json"), []byte(`[]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.md"), []byte(`#`), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub.json"), 0755))

	d := Dir{Path: root}
	names, err := d.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2_pose.json"}, names)

	f, err := d.Fetch(context.Background(), "2_pose.json")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	_, err = d.Fetch(context.Background(), "../escape.json")
	assert.Error(t, err)
}

func TestDirMissing(t *testing.T) {
	_, err := Dir{Path: filepath.Join(t.TempDir(), "nope")}.List(context.Background())
	assert.Error(t, err)
}
