package verbscript_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/verbscript/pkg/verbscript"
)

func TestLoadProfileSelectsLibraries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	err := os.WriteFile(path, []byte("libraries: [core, control, math]\n"), 0o644)
	require.NoError(t, err)

	profile, err := verbscript.LoadProfile(path)
	require.NoError(t, err)

	engine := verbscript.New(verbscript.EngineOptions{Profile: profile})

	result, err := engine.Eval("1 + 2;")
	require.NoError(t, err)
	assert.Equal(t, float64(3), result.Value.Number())

	_, err = engine.Eval(`str.upper("hi");`)
	assert.Error(t, err, "strlib was not included in the profile")
}

func TestLoadProfileRejectsEmptyLibraryList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("libraries: []\n"), 0o644))

	_, err := verbscript.LoadProfile(path)
	assert.Error(t, err)
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := verbscript.LoadProfile("/nonexistent/profile.yaml")
	assert.Error(t, err)
}
