package skillx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Delimiters(t *testing.T) {
	t.Parallel()
	got := Split("python, django;aws|docker\ngit")
	assert.Equal(t, []string{"python", " django", "aws", "docker", "git"}, got)
}

func TestNormalize_DedupeTrimSort(t *testing.T) {
	t.Parallel()
	got := Normalize([]string{" Python ", "django", "PYTHON", "", "  "})
	assert.Equal(t, []string{"django", "python"}, got)
}

func TestNormalize_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]string{}))
}

func TestNormalizeString(t *testing.T) {
	t.Parallel()
	got := NormalizeString("Go, golang ,;Rust")
	assert.Equal(t, []string{"go", "golang", "rust"}, got)
}

func TestSplitBands_ShortList(t *testing.T) {
	t.Parallel()
	core, optional := SplitBands([]string{"Python", "Django"})
	assert.Equal(t, []string{"django", "python"}, core)
	assert.Empty(t, optional)
}

func TestSplitBands_CoreIsFirstThree(t *testing.T) {
	t.Parallel()
	core, optional := SplitBands([]string{"Python", "Django", "AWS", "Docker", "Git"})
	assert.Equal(t, []string{"aws", "django", "python"}, core)
	assert.Equal(t, []string{"docker", "git"}, optional)
}

func TestIntersectSubtract(t *testing.T) {
	t.Parallel()
	a := []string{"aws", "django", "python"}
	b := []string{"django", "go", "python"}
	assert.Equal(t, []string{"django", "python"}, Intersect(a, b))
	assert.Equal(t, []string{"aws"}, Subtract(a, b))
	assert.Empty(t, Intersect(a, nil))
	assert.Equal(t, a, Subtract(a, nil))
}

func TestKeywords(t *testing.T) {
	t.Parallel()
	got := Keywords("Research in Machine Learning, and the GPA was 3.9!")
	assert.Equal(t, []string{"gpa", "learning", "machine", "research"}, got)
}

func TestKeywords_ShortAndStopWordsDropped(t *testing.T) {
	t.Parallel()
	got := Keywords("to be or not to be with it")
	assert.Empty(t, got)
}

func TestLoadAliasTable_Missing(t *testing.T) {
	t.Parallel()
	tbl, err := LoadAliasTable(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, tbl)
}

func TestLoadAliasTable_AndApply(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Golang: go\nJS: javascript\n"), 0o600))
	tbl, err := LoadAliasTable(path)
	require.NoError(t, err)
	got := tbl.Apply([]string{"golang", "go", "js", "react"})
	assert.Equal(t, []string{"go", "javascript", "react"}, got)
}

func TestLoadAliasTable_BadYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - broken: ["), 0o600))
	_, err := LoadAliasTable(path)
	require.Error(t, err)
}

func TestAliasTable_Empty_ApplyPassthrough(t *testing.T) {
	t.Parallel()
	in := []string{"go", "rust"}
	assert.Equal(t, in, AliasTable{}.Apply(in))
}
