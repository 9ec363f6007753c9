package pdf

import (
	"bytes"
	"image"
	"testing"

	"github.com/prasetyowira/qrlabel/domain/label"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageCount counts page objects; "/Type /Pages" is the page tree root.
func pageCount(data []byte) int {
	return bytes.Count(data, []byte("/Type /Page")) - bytes.Count(data, []byte("/Type /Pages"))
}

func pages(n, w, h int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		out[i] = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	return out
}

func TestWriter_Export(t *testing.T) {
	// Arrange
	doc := &label.Document{Pages: pages(3, 300, 750), DPI: 300}

	// Act
	data, err := NewWriter("labels").Export(doc)

	// Assert
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Equal(t, 3, pageCount(data))
}

func TestWriter_ExportMixedPageSizes(t *testing.T) {
	doc := &label.Document{
		Pages: []image.Image{
			image.NewRGBA(image.Rect(0, 0, 300, 750)),
			image.NewRGBA(image.Rect(0, 0, 600, 900)),
		},
		DPI: 300,
	}

	data, err := NewWriter("labels").Export(doc)

	require.NoError(t, err)
	assert.Equal(t, 2, pageCount(data))
}

func TestWriter_ExportEmpty(t *testing.T) {
	data, err := NewWriter("labels").Export(&label.Document{DPI: 300})

	assert.Error(t, err)
	assert.Nil(t, data)

	data, err = NewWriter("labels").Export(nil)
	assert.Error(t, err)
	assert.Nil(t, data)
}
