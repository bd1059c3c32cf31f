package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.gpl")
	data := "GIMP Palette\nName: two\nColumns: 2\n# comment\n  0   0   0\tblack\n255 255 255\twhite\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	p, err := LoadGPL(path)
	require.NoError(t, err)
	assert.Equal(t, "two", p.Name)
	assert.Equal(t, []RGB{{0, 0, 0}, {255, 255, 255}}, p.Colors)
	assert.Equal(t, RGB{127, 127, 127}, p.Lookup(0.5))
}

func TestLoadGPLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gpl")
	require.NoError(t, os.WriteFile(path, []byte("GIMP Palette\n"), 0644))
	_, err := LoadGPL(path)
	assert.Error(t, err)
}

func TestLookupSingleColor(t *testing.T) {
	p := &Palette{Colors: []RGB{{1, 2, 3}}}
	assert.Equal(t, RGB{1, 2, 3}, p.Lookup(0.5))
}

func TestNoteColorByPitchClass(t *testing.T) {
	th := New(Plasma())
	assert.Equal(t, th.NoteColor(60), th.NoteColor(72))
	assert.Equal(t, th.NoteColor(-1), th.NoteColor(11))
	assert.NotEqual(t, th.NoteColor(60), th.NoteColor(61))
}
