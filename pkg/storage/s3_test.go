package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPresignExpire(t *testing.T) {
	s := &S3{cfg: S3Config{PresignExpireMinutes: 30}}
	assert.Equal(t, 30*time.Minute, s.PresignExpire())

	s = &S3{cfg: S3Config{}}
	assert.Equal(t, 15*time.Minute, s.PresignExpire(), "unset expiry falls back to 15 minutes")

	s = &S3{cfg: S3Config{PresignExpireMinutes: -5}}
	assert.Equal(t, 15*time.Minute, s.PresignExpire())
}

func TestPhotosBucket(t *testing.T) {
	s := &S3{cfg: S3Config{PhotosBucket: "equitrack-horse-photos"}}
	assert.Equal(t, "equitrack-horse-photos", s.PhotosBucket())
}

func TestPhotoKey(t *testing.T) {
	assert.Equal(t, "horses/abc/portrait.jpg", PhotoKey("abc", "portrait.jpg"))
	assert.Equal(t, "horses/abc/evil.jpg", PhotoKey("abc", "../../evil.jpg"), "path segments are stripped")
}

func TestValidatePhotoType(t *testing.T) {
	assert.True(t, ValidatePhotoType("image/jpeg", "a.bin"))
	assert.True(t, ValidatePhotoType("", "a.png"))
	assert.False(t, ValidatePhotoType("application/pdf", "a.pdf"))
	assert.False(t, ValidatePhotoType("", ""))
}

func TestContentTypeForFilename(t *testing.T) {
	assert.Equal(t, "image/webp", ContentTypeForFilename("photo.WEBP"))
	assert.Equal(t, "application/octet-stream", ContentTypeForFilename("notes.txt"))
}
