package scanner

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, afero.WriteFile(fs, p, []byte("content"), 0o644))
	}
}

func TestScan_MatchesPatternsSorted(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs,
		"/repo/pkg/b/util_test.go",
		"/repo/pkg/a/client_test.go",
		"/repo/pkg/a/client.go",
		"/repo/tests/test_models.py",
		"/repo/docs/guide.md",
	)

	s := New(fs, "/repo", nil, []string{"*_test.go", "test_*.py"}, 0)
	found, err := s.Scan()
	require.NoError(t, err)

	got := make([]string, 0, len(found))
	for _, f := range found {
		got = append(got, f.Path)
	}
	assert.Equal(t, []string{
		"pkg/a/client_test.go",
		"pkg/b/util_test.go",
		"tests/test_models.py",
	}, got)
}

func TestScan_RestrictedPaths(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs,
		"/repo/included/a_test.go",
		"/repo/excluded/b_test.go",
	)

	s := New(fs, "/repo", []string{"included"}, []string{"*_test.go"}, 0)
	found, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "included/a_test.go", found[0].Path)
}

func TestScan_MissingPathIgnored(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/repo/src/a_test.go")

	s := New(fs, "/repo", []string{"src", "no-such-dir"}, []string{"*_test.go"}, 0)
	found, err := s.Scan()
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestScan_Limit(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs,
		"/repo/a_test.go",
		"/repo/b_test.go",
		"/repo/c_test.go",
	)

	s := New(fs, "/repo", nil, []string{"*_test.go"}, 2)
	found, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, found, 2)
	// limit keeps the first files in sorted order, so reruns are stable
	assert.Equal(t, "a_test.go", found[0].Path)
	assert.Equal(t, "b_test.go", found[1].Path)
}

func TestScan_SkipsHiddenAndVendorDirs(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs,
		"/repo/.git/objects/x_test.go",
		"/repo/node_modules/pkg/y_test.go",
		"/repo/vendor/dep/z_test.go",
		"/repo/src/real_test.go",
	)

	s := New(fs, "/repo", nil, []string{"*_test.go"}, 0)
	found, err := s.Scan()
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "src/real_test.go", found[0].Path)
}
