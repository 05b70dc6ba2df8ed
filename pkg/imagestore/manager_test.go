package imagestore

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func pngPayload(t *testing.T, w, h int) *bytes.Reader {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return bytes.NewReader(buf.Bytes())
}

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	return NewManager(store, nil), dir
}

func TestStoreNormalizesToSquareJPEG(t *testing.T) {
	m, dir := newTestManager(t)

	for _, dims := range [][2]int{{640, 480}, {120, 600}, {300, 300}} {
		name, err := m.Store(context.Background(), pngPayload(t, dims[0], dims[1]))
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(name, "logo-"))
		require.True(t, strings.HasSuffix(name, ".jpg"))

		f, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err)
		img, err := jpeg.Decode(f)
		require.NoError(t, f.Close())
		require.NoError(t, err)
		require.Equal(t, LogoSize, img.Bounds().Dx())
		require.Equal(t, LogoSize, img.Bounds().Dy())
	}
}

func TestStoreRejectsEmptyPayload(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Store(context.Background(), nil)
	require.ErrorIs(t, err, ErrImageRequired)

	_, err = m.Store(context.Background(), bytes.NewReader(nil))
	require.ErrorIs(t, err, ErrImageRequired)
}

func TestStoreRejectsNonImagePayload(t *testing.T) {
	m, dir := newTestManager(t)

	_, err := m.Store(context.Background(), strings.NewReader("definitely not an image"))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestReplaceDeletesPrevious(t *testing.T) {
	m, dir := newTestManager(t)

	first, err := m.Store(context.Background(), pngPayload(t, 64, 64))
	require.NoError(t, err)

	second, err := m.Replace(context.Background(), first, pngPayload(t, 64, 64))
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = os.Stat(filepath.Join(dir, first))
	require.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(dir, second))
	require.NoError(t, err)
}

func TestReplaceWithNoPrevious(t *testing.T) {
	m, dir := newTestManager(t)

	name, err := m.Replace(context.Background(), "", pngPayload(t, 64, 64))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)
}

func TestDeleteIdempotent(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.Delete(context.Background(), ""))
	require.NoError(t, m.Delete(context.Background(), "logo-never-existed.jpg"))

	name, err := m.Store(context.Background(), pngPayload(t, 64, 64))
	require.NoError(t, err)
	require.NoError(t, m.Delete(context.Background(), name))
	require.NoError(t, m.Delete(context.Background(), name))
}
