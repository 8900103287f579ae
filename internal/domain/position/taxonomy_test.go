package position

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depthchart-hub/depth-chart-hub/internal/domain/shared"
)

func TestNew_KeepsDeclarationOrder(t *testing.T) {
	tax, err := New("test", "B", "A", "C")
	require.NoError(t, err)

	assert.Equal(t, []Tag{"B", "A", "C"}, tax.Tags())
	assert.Equal(t, 3, tax.Len())
	assert.Equal(t, "test", tax.Sport())
}

func TestNew_RejectsInvalidDeclarations(t *testing.T) {
	tests := []struct {
		name  string
		sport string
		tags  []string
	}{
		{"no sport", "", []string{"QB"}},
		{"no tags", "nfl", nil},
		{"empty tag", "nfl", []string{"QB", " "}},
		{"duplicate tag", "nfl", []string{"QB", "WR", "QB"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, err := New(tt.sport, tt.tags...)
			assert.Nil(t, tax)
			assert.Error(t, err)
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew("nfl") })
}

func TestTaxonomy_Parse(t *testing.T) {
	tax := NFL()

	tag, err := tax.Parse("QB")
	require.NoError(t, err)
	assert.Equal(t, Tag("QB"), tag)

	_, err = tax.Parse("qb")
	require.Error(t, err, "matching is case-sensitive")
	assert.True(t, errors.Is(err, shared.ErrUnknownPosition))
	assert.Equal(t, "Requested value 'qb' was not found in nfl positions.", err.Error())

	_, err = tax.Parse("SS")
	assert.ErrorIs(t, err, shared.ErrUnknownPosition)
}

func TestTaxonomy_Contains(t *testing.T) {
	tax := MLB()

	assert.True(t, tax.Contains("1B"))
	assert.True(t, tax.Contains("DH"))
	assert.False(t, tax.Contains("QB"))
}

func TestTaxonomy_TagsReturnsCopy(t *testing.T) {
	tax := NHL()

	tags := tax.Tags()
	tags[0] = "XX"

	assert.Equal(t, Tag("LW"), tax.Tags()[0])
}

func TestBuiltinTaxonomies(t *testing.T) {
	assert.Equal(t, []Tag{"QB", "WR", "RB", "TE", "K", "P", "KR", "PR"}, NFL().Tags())
	assert.Equal(t, []Tag{"SP", "RP", "C", "1B", "2B", "3B", "SS", "LF", "CF", "RF", "DH"}, MLB().Tags())
	assert.Equal(t, []Tag{"LW", "RW", "C", "D", "G"}, NHL().Tags())
}

func TestForSport(t *testing.T) {
	for _, id := range KnownSports() {
		tax, ok := ForSport(id)
		require.True(t, ok, id)
		assert.Equal(t, id, tax.Sport())
	}

	tax, ok := ForSport(" NFL ")
	require.True(t, ok)
	assert.Equal(t, SportNFL, tax.Sport())

	_, ok = ForSport("cricket")
	assert.False(t, ok)
}
