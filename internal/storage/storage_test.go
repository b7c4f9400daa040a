package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "http://cdn.local/"})
	require.NoError(t, err)

	key := ResumePDFKey("u1", "r1")
	require.NoError(t, s.Save(ctx, key, strings.NewReader("%PDF-1.7"), "application/pdf"))

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(body))

	assert.Equal(t, "http://cdn.local/users/u1/resumes/r1.pdf", s.URL(key))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, AvatarKey("u1", ".PNG"), strings.NewReader("a"), "image/png"))
	require.NoError(t, s.Save(ctx, ResumePDFKey("u1", "r1"), strings.NewReader("b"), "application/pdf"))
	require.NoError(t, s.Save(ctx, AvatarKey("u2", "png"), strings.NewReader("c"), "image/png"))

	require.NoError(t, s.DeletePrefix(ctx, UserPrefix("u1")))

	_, err = s.Get(ctx, "users/u1/avatar.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	rc, err := s.Get(ctx, "users/u2/avatar.png")
	require.NoError(t, err)
	rc.Close()
}

func TestCleanKey(t *testing.T) {
	_, err := cleanKey("../etc/passwd")
	assert.Error(t, err)
	_, err = cleanKey("/")
	assert.Error(t, err)

	key, err := cleanKey("/users//u1/avatar.png")
	require.NoError(t, err)
	assert.Equal(t, "users/u1/avatar.png", key)
}

func TestNewStorage_Unsupported(t *testing.T) {
	_, err := NewStorage(Config{Type: "ftp"})
	assert.Error(t, err)
}
