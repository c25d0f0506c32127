package binlookup

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schedulesJSON = `{
  "districts": [
    {
      "postcode_district": "BD7",
      "area_name": "Little Horton",
      "collections": [
        {"bin_type": "General waste", "collection_day": "Tuesday", "next_collection_date": "2026-10-20"},
        {"bin_type": "Recycling", "collection_day": "Tuesday", "next_collection_date": "2026-10-27"}
      ]
    },
    {
      "postcode_district": "bd3",
      "area_name": "Bradford Moor",
      "collections": [
        {"bin_type": "Garden waste", "collection_day": "Friday", "next_collection_date": "2026-10-23"}
      ]
    },
    {
      "postcode_district": "BD9",
      "area_name": "",
      "collections": []
    }
  ]
}`

func testDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := Parse([]byte(schedulesJSON))
	require.NoError(t, err)
	return d
}

func TestLoad(t *testing.T) {
	t.Run("reads schedules from the filesystem", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fsys, "/data/schedules.json", []byte(schedulesJSON), 0o644))

		d, err := Load(fsys, "/data/schedules.json")
		require.NoError(t, err)
		assert.Equal(t, 3, d.Len())
	})

	t.Run("missing file yields an empty directory", func(t *testing.T) {
		d, err := Load(afero.NewMemMapFs(), "/data/missing.json")
		require.NoError(t, err)
		assert.Zero(t, d.Len())
	})

	t.Run("malformed file fails", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fsys, "/data/schedules.json", []byte(`{"districts": [`), 0o644))

		_, err := Load(fsys, "/data/schedules.json")
		assert.ErrorIs(t, err, ErrParseFailed)
	})
}

func TestExtractDistrict(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"BD7", "BD7"},
		{"my postcode is bd7 1ab", "BD7"},
		{"bins for BD10 please", "BD10"},
		{"BD123", ""},
		{"ABD7", ""},
		{"no postcode here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDistrict(tt.text))
		})
	}
}

func TestDirectory_Districts(t *testing.T) {
	d := testDirectory(t)
	assert.Equal(t, []string{"BD3", "BD7", "BD9"}, d.Districts())

	s, ok := d.ByDistrict("bd3")
	require.True(t, ok)
	assert.Equal(t, "Bradford Moor", s.AreaName)

	_, ok = d.ByDistrict("BD1")
	assert.False(t, ok)
}

func TestDirectory_ByArea(t *testing.T) {
	d := testDirectory(t)

	tests := []struct {
		name  string
		query string
		want  string
		found bool
	}{
		{"exact", "Little Horton", "Little Horton", true},
		{"extra whitespace and case", "  LITTLE   horton ", "Little Horton", true},
		{"query inside area", "horton", "Little Horton", true},
		{"area inside query", "when are bins collected in bradford moor", "Bradford Moor", true},
		{"no match", "Keighley", "", false},
		{"blank query", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := d.ByArea(tt.query)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, s.AreaName)
		})
	}
}

func TestDirectory_Answer(t *testing.T) {
	d := testDirectory(t)

	t.Run("district answers outside the topic", func(t *testing.T) {
		reply, ok := d.Answer("BD7 1AB", false)
		require.True(t, ok)
		assert.Equal(t, "Bin collection info for Little Horton:\n\n"+
			"General waste - Tuesday (Next: 2026-10-20)\n"+
			"Recycling - Tuesday (Next: 2026-10-27)", reply)
	})

	t.Run("unknown district in topic lists supported districts", func(t *testing.T) {
		reply, ok := d.Answer("bin day for BD1", true)
		require.True(t, ok)
		assert.Contains(t, reply, "BD3, BD7, BD9")
		assert.Contains(t, reply, "Little Horton")
	})

	t.Run("unknown district outside the topic is left to retrieval", func(t *testing.T) {
		_, ok := d.Answer("council tax band for BD1", false)
		assert.False(t, ok)
	})

	t.Run("area name in topic", func(t *testing.T) {
		reply, ok := d.Answer("bin collection in little horton", true)
		require.True(t, ok)
		assert.Contains(t, reply, "Little Horton")
	})

	t.Run("area name outside the topic is ignored", func(t *testing.T) {
		_, ok := d.Answer("little horton", false)
		assert.False(t, ok)
	})

	t.Run("general bins question is left to retrieval", func(t *testing.T) {
		_, ok := d.Answer("how do I order a replacement bin", true)
		assert.False(t, ok)
	})
}

func TestDirectory_FallbackWhenEmpty(t *testing.T) {
	d := NewDirectory(nil)
	reply, ok := d.Answer("BD7", true)
	require.True(t, ok)
	assert.Contains(t, reply, "none yet")
}
