package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyRoundTrip(t *testing.T) {
	c := &CloudStorageClient{bucketName: "masterhub-files"}

	url := c.PublicURL("avatars/u1/abc.png")
	assert.Equal(t, "https://storage.googleapis.com/masterhub-files/avatars/u1/abc.png", url)

	key, err := c.objectKey(url)
	require.NoError(t, err)
	assert.Equal(t, "avatars/u1/abc.png", key)
}

func TestObjectKeyRejectsForeignURLs(t *testing.T) {
	c := &CloudStorageClient{bucketName: "masterhub-files"}

	for _, url := range []string{
		"https://example.com/masterhub-files/a.png",
		"https://storage.googleapis.com/other-bucket/a.png",
		"https://storage.googleapis.com/masterhub-files/",
	} {
		_, err := c.objectKey(url)
		assert.Error(t, err, url)
	}
}
