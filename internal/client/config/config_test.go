package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerBaseURL)
	assert.Equal(t, "ws://127.0.0.1:8080/jobs/ws", c.SocketURL)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, 1*time.Second, c.ReconnectMinDelay)
	assert.Equal(t, 30*time.Second, c.ReconnectMaxDelay)

	require.Contains(t, c.Uploads, "video")
	require.Contains(t, c.Uploads, "audio")
	require.Contains(t, c.Uploads, "image")

	assert.Equal(t, int64(5_000_000_000), c.Uploads["video"].MaxFileSize)
	assert.Equal(t, int64(200_000_000), c.Uploads["audio"].MaxFileSize)
	assert.Equal(t, int64(50_000_000), c.Uploads["image"].MaxFileSize)

	assert.Contains(t, c.Uploads["video"].AcceptedTypes, "video/mp4")
	assert.Contains(t, c.Uploads["audio"].AcceptedTypes, "audio/mpeg")
	assert.Contains(t, c.Uploads["image"].AcceptedTypes, "image/png")
}
