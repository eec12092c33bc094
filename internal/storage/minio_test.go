package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", contentType(".JPG"))
	assert.Equal(t, "image/png", contentType(".png"))
	assert.Equal(t, "application/octet-stream", contentType(".exe"))
	assert.Equal(t, "application/octet-stream", contentType(""))
}
