package extcodec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableRoundTrip(t *testing.T) {
	codec := Default()

	for _, p := range DefaultPairs() {
		stored, err := codec.Encode(p.Real)
		require.NoError(t, err)
		assert.Equal(t, p.Stored, stored)
		assert.NotEqual(t, p.Real, stored, "obfuscation must not be a no-op")

		real, err := codec.Decode(stored)
		require.NoError(t, err)
		assert.Equal(t, p.Real, real)
	}
}

func TestEncodeSongExtension(t *testing.T) {
	stored, err := Default().Encode("MP3")
	require.NoError(t, err)
	assert.Equal(t, "ad3", stored)
}

func TestUnmappedExtensionsPassThrough(t *testing.T) {
	codec := Default()
	for _, ext := range []string{"txt", "pdf", "wav", "crypt", ""} {
		stored, err := codec.Encode(ext)
		require.NoError(t, err)
		assert.Equal(t, ext, stored)

		back, err := codec.Decode(stored)
		require.NoError(t, err)
		assert.Equal(t, ext, back)
	}
}

func TestStoredExtensionAsRealExtensionRoundTrips(t *testing.T) {
	codec := Default()

	stored, err := codec.Encode("ad3")
	require.NoError(t, err)
	assert.Equal(t, "mp3", stored)

	back, err := codec.Decode(stored)
	require.NoError(t, err)
	assert.Equal(t, "ad3", back)
}

func TestRejectsTraversalCharacters(t *testing.T) {
	codec := Default()
	for _, ext := range []string{"../etc", "a/b", `a\b`, "m.p3", "toolongextension17"} {
		_, err := codec.Encode(ext)
		assert.ErrorIs(t, err, ErrInvalidExtension, ext)

		_, err = codec.Decode(ext)
		assert.ErrorIs(t, err, ErrInvalidExtension, ext)
	}
}

func TestNewRejectsNonBijectiveTables(t *testing.T) {
	cases := map[string][]Pair{
		"duplicate real":   {{Real: "mp3", Stored: "ad3"}, {Real: "mp3", Stored: "zz"}},
		"duplicate stored": {{Real: "mp3", Stored: "ad3"}, {Real: "wav", Stored: "ad3"}},
		"identity":         {{Real: "mp3", Stored: "mp3"}},
		"chained":          {{Real: "mp3", Stored: "ad3"}, {Real: "ad3", Stored: "qq"}},
		"invalid":          {{Real: "../x", Stored: "ad3"}},
		"empty":            {{Real: "", Stored: "ad3"}},
	}
	for name, pairs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(pairs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTable))
		})
	}
}

func TestStoredExtensions(t *testing.T) {
	stored := Default().StoredExtensions()
	assert.Equal(t, []string{"ad3", "hyp", "jsn", "ph", "sc", "ssz", "sty", "sz", "vd4"}, stored)
	assert.True(t, Default().Mapped("AD3"))
	assert.False(t, Default().Mapped("txt"))
}
