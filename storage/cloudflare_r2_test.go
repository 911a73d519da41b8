package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{"host only", "https://cdn.example.com", "ladders/team_1/latest.json", "https://cdn.example.com/ladders/team_1/latest.json"},
		{"trailing slash", "https://cdn.example.com/", "ladders/a.json", "https://cdn.example.com/ladders/a.json"},
		{"leading slash on key", "https://cdn.example.com/", "/ladders/a.json", "https://cdn.example.com/ladders/a.json"},
		{"base with path", "https://cdn.example.com/public", "ladders/a.json", "https://cdn.example.com/public/ladders/a.json"},
		{"empty key", "https://cdn.example.com", "", ""},
		{"empty base", "", "ladders/a.json", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicURL(tt.base, tt.key))
		})
	}
}

func TestNewCloudflareR2Uploader_RequiresAllFields(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc", BucketName: "ladders"})
	require.ErrorIs(t, err, ErrInvalidR2Config)

	cfg := CloudflareR2UploaderConfig{
		AccountID:       "acc",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "ladders",
		PublicBaseURL:   "https://cdn.example.com",
	}
	assert.True(t, cfg.Enabled())
	uploader, err := NewCloudflareR2Uploader(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/ladders/x.json", uploader.PublicURL("ladders/x.json"))
}

func TestCloudflareR2Uploader_RejectsEmptyKey(t *testing.T) {
	uploader, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{
		AccountID:       "acc",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "ladders",
		PublicBaseURL:   "https://cdn.example.com",
	})
	require.NoError(t, err)

	_, err = uploader.Upload(context.Background(), Object{ContentType: "application/json", Body: []byte("{}")})
	assert.Error(t, err)
}
