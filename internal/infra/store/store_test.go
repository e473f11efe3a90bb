package store

import (
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteAndReadRecord(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "/out")

	in := testRecord{Name: "discovery", Count: 3}
	require.NoError(t, s.WriteRecord("01-discovery.json", in))

	var out testRecord
	require.NoError(t, s.ReadRecord("01-discovery.json", &out))
	assert.Equal(t, in, out)

	// pretty-printed with trailing newline
	data, err := afero.ReadFile(fs, "/out/01-discovery.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "  \"name\"")
	assert.Equal(t, byte('\n'), data[len(data)-1])
}

func TestWriteRecord_ReplacesAtomically(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New(fs, "/out")

	require.NoError(t, s.WriteRecord("r.json", testRecord{Name: "v1"}))
	require.NoError(t, s.WriteRecord("r.json", testRecord{Name: "v2"}))

	var out testRecord
	require.NoError(t, s.ReadRecord("r.json", &out))
	assert.Equal(t, "v2", out.Name)

	// no temp files left behind
	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "r.json", entries[0].Name())
}

func TestReadRecord_NotFound(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/out")

	var out testRecord
	err := s.ReadRecord("missing.json", &out)
	assert.True(t, errors.Is(err, ErrRecordNotFound))
}

func TestReadRecord_Corrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/out/bad.json", []byte("{not json"), 0o644))
	s := New(fs, "/out")

	var out testRecord
	err := s.ReadRecord("bad.json", &out)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRecordNotFound))
}

func TestReadOptional(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/out")

	var out testRecord
	found, err := s.ReadOptional("missing.json", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.WriteRecord("present.json", testRecord{Name: "x"}))
	found, err = s.ReadOptional("present.json", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "x", out.Name)
}

func TestExists(t *testing.T) {
	s := New(afero.NewMemMapFs(), "/out")
	assert.False(t, s.Exists("r.json"))
	require.NoError(t, s.WriteRecord("r.json", testRecord{}))
	assert.True(t, s.Exists("r.json"))
}
