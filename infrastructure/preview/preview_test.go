package preview

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePNG_KeepsSmallImages(t *testing.T) {
	var buf bytes.Buffer

	err := EncodePNG(&buf, image.NewRGBA(image.Rect(0, 0, 300, 750)), DefaultMaxSide)

	require.NoError(t, err)
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 750), img.Bounds())
}

func TestEncodePNG_FitsLargeImages(t *testing.T) {
	var buf bytes.Buffer

	err := EncodePNG(&buf, image.NewRGBA(image.Rect(0, 0, 2000, 1000)), 500)

	require.NoError(t, err)
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 500, img.Bounds().Dx())
	assert.Equal(t, 250, img.Bounds().Dy())
}
