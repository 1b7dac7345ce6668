package category

import (
	"testing"

	"github.com/abduss/filecrypt/internal/extcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyByExtension(t *testing.T) {
	cases := []struct {
		ext  string
		mime string
		want Category
	}{
		{"mp3", "", Audio},
		{"FLAC", "", Audio},
		{"png", "", Image},
		{".jpeg", "", Image},
		{"json", "", JSON},
		{"txt", "", Other},
		{"crypt", "", Encrypted},
		// the extension wins over a conflicting hint
		{"mp3", "image/png", Audio},
		{"unknownext", "audio/x-custom", Audio},
		{"unknownext", "image/tiff", Image},
		{"unknownext", "application/ld+json", JSON},
		{"unknownext", "application/octet-stream", Other},
		{"", "", Other},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.ext, tc.mime), "%s / %s", tc.ext, tc.mime)
	}
}

func TestObfuscatedExtensionsAreEncrypted(t *testing.T) {
	for _, stored := range extcodec.Default().StoredExtensions() {
		assert.Equal(t, Encrypted, Classify(stored, ""), stored)
	}
}

func TestParse(t *testing.T) {
	for _, c := range All() {
		got, err := Parse(" " + string(c) + " ")
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := Parse("video")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	_, err = Parse("")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "audio/mpeg", MIMEType("mp3"))
	assert.Equal(t, "image/jpeg", MIMEType(".JPG"))
	assert.Empty(t, MIMEType("xyz"))
	assert.Equal(t, "image/png", DefaultMIMEType(Image))
	assert.Equal(t, "application/octet-stream", DefaultMIMEType(Other))
}
