package tracker

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("content"))
	b := Fingerprint([]byte("content"))
	c := Fingerprint([]byte("different"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestSnapshot_IsolatesUnreadableFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/repo/ok_test.go", []byte("package ok"), 0o644))

	now := time.Now()
	units, errs := Snapshot(fs, "/repo", []Scanned{
		{Path: "ok_test.go", LastModified: now},
		{Path: "missing_test.go", LastModified: now},
	})

	require.Len(t, units, 1)
	assert.Equal(t, "ok_test.go", units[0].Path)
	assert.NotEmpty(t, units[0].Fingerprint)
	require.Len(t, errs, 1)
	assert.Equal(t, "missing_test.go", errs[0].Path)
}

func unit(path, fp string, status model.UnitStatus) model.InputUnit {
	return model.InputUnit{Path: path, Fingerprint: fp, Status: status}
}

func TestClassify_FirstRunAllCreated(t *testing.T) {
	current := []model.InputUnit{unit("b.go", "2", ""), unit("a.go", "1", "")}

	out := Classify(current, nil)
	require.Len(t, out, 2)
	assert.Equal(t, "a.go", out[0].Path, "output is sorted by path")
	for _, u := range out {
		assert.Equal(t, model.UnitCreated, u.Status)
	}
}

func TestClassify_SecondRunStatuses(t *testing.T) {
	previous := []model.InputUnit{
		unit("same.go", "aaa", model.UnitCreated),
		unit("changed.go", "bbb", model.UnitCreated),
		unit("gone.go", "ccc", model.UnitCreated),
	}
	current := []model.InputUnit{
		unit("same.go", "aaa", ""),
		unit("changed.go", "new", ""),
		unit("brand.go", "ddd", ""),
	}

	out := Classify(current, previous)
	byPath := map[string]model.UnitStatus{}
	for _, u := range out {
		byPath[u.Path] = u.Status
	}
	assert.Equal(t, model.UnitCreated, byPath["brand.go"])
	assert.Equal(t, model.UnitUpdated, byPath["changed.go"])
	assert.Equal(t, model.UnitUnchanged, byPath["same.go"])
	assert.Equal(t, model.UnitDeleted, byPath["gone.go"])
	assert.Len(t, out, 4, "every classified unit appears exactly once")
}

func TestClassify_DeletedUnitsDropOut(t *testing.T) {
	// A unit recorded as deleted last run is no longer tracked.
	previous := []model.InputUnit{
		unit("kept.go", "aaa", model.UnitUnchanged),
		unit("gone.go", "bbb", model.UnitDeleted),
	}
	current := []model.InputUnit{unit("kept.go", "aaa", "")}

	out := Classify(current, previous)
	require.Len(t, out, 1)
	assert.Equal(t, "kept.go", out[0].Path)
	assert.Equal(t, model.UnitUnchanged, out[0].Status)
}

func TestClassify_Idempotent(t *testing.T) {
	previous := []model.InputUnit{
		unit("a.go", "1", model.UnitCreated),
		unit("b.go", "2", model.UnitUpdated),
	}
	current := []model.InputUnit{unit("a.go", "1", ""), unit("b.go", "2", "")}

	first := Classify(current, previous)
	second := Classify(current, first)
	assert.Equal(t, first, second, "reclassifying without input changes is stable")
	for _, u := range second {
		assert.Equal(t, model.UnitUnchanged, u.Status)
	}
}

func TestSummarize(t *testing.T) {
	units := []model.InputUnit{
		unit("a.go", "1", model.UnitCreated),
		unit("b.go", "2", model.UnitUpdated),
		unit("c.go", "3", model.UnitUnchanged),
		unit("d.go", "4", model.UnitUnchanged),
		unit("e.go", "5", model.UnitDeleted),
	}
	sum := Summarize(units, 4)
	assert.Equal(t, 4, sum.TotalDiscovered)
	assert.Equal(t, 5, sum.TotalTracked)
	assert.Equal(t, 1, sum.Created)
	assert.Equal(t, 1, sum.Updated)
	assert.Equal(t, 2, sum.Unchanged)
	assert.Equal(t, 1, sum.Deleted)
}
