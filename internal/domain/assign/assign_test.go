package assign

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koetsu-dev/exemplar/internal/domain/model"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Basic Client Usage", "basic-client-usage"},
		{"  spaces  everywhere  ", "spaces-everywhere"},
		{"Already-Slugged", "already-slugged"},
		{"symbols!@#$%^&*()here", "symbols-here"},
		{"Ünïcode Nörmalization", "n-code-n-rmalization"},
		{"ＦｕｌｌＷｉｄｔｈ", "fullwidth"},
		{"", "example"},
		{"!!!", "example"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}

func TestSlugify_Clamped(t *testing.T) {
	long := strings.Repeat("word ", 30)
	slug := Slugify(long)
	assert.LessOrEqual(t, len([]rune(slug)), 60)
	assert.False(t, strings.HasSuffix(slug, "-"))
}

func candidate(key, title string, c model.Complexity) model.ExampleCandidate {
	return model.ExampleCandidate{StableKey: key, Title: title, Complexity: c}
}

func TestAssign_OrderAndNumbering(t *testing.T) {
	in := []model.ExampleCandidate{
		candidate("k1", "Zeta advanced", model.ComplexityComplex),
		candidate("k2", "Alpha basics", model.ComplexitySimple),
		candidate("k3", "beta basics", model.ComplexitySimple),
		candidate("k4", "Middle ground", model.ComplexityModerate),
	}

	out := Assign(in)
	require.Len(t, out, 4)
	assert.Equal(t, "01-alpha-basics", out[0].ExampleID)
	assert.Equal(t, "02-beta-basics", out[1].ExampleID)
	assert.Equal(t, "03-middle-ground", out[2].ExampleID)
	assert.Equal(t, "04-zeta-advanced", out[3].ExampleID)
	for _, c := range out {
		assert.Equal(t, c.ExampleID, c.Folder)
	}
}

func TestAssign_Deterministic(t *testing.T) {
	in := []model.ExampleCandidate{
		candidate("k1", "One", model.ComplexitySimple),
		candidate("k2", "Two", model.ComplexityModerate),
		candidate("k3", "Three", model.ComplexitySimple),
	}
	a := Assign(in)
	b := Assign([]model.ExampleCandidate{in[2], in[0], in[1]})

	// Same set, any input order: identical assignment per stable key.
	idsA := map[string]string{}
	for _, c := range a {
		idsA[c.StableKey] = c.ExampleID
	}
	for _, c := range b {
		assert.Equal(t, idsA[c.StableKey], c.ExampleID)
	}
}

func TestAssign_RenumberingPreservesStableKeys(t *testing.T) {
	in := []model.ExampleCandidate{
		candidate("k1", "Alpha", model.ComplexitySimple),
		candidate("k2", "Beta", model.ComplexitySimple),
	}
	out := Assign(in)
	assert.Equal(t, "01-alpha", out[0].ExampleID)

	// Removing the first candidate shifts numbering but not pairing.
	out2 := Assign(in[1:])
	require.Len(t, out2, 1)
	assert.Equal(t, "01-beta", out2[0].ExampleID)
	assert.Equal(t, "k2", out2[0].StableKey)
}

func TestAssign_DoesNotMutateInput(t *testing.T) {
	in := []model.ExampleCandidate{candidate("k1", "Alpha", model.ComplexitySimple)}
	_ = Assign(in)
	assert.Empty(t, in[0].ExampleID)
	assert.Empty(t, in[0].Folder)
}
