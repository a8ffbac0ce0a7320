package cmd

import (
	"bytes"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/qrbatch/internal/testutil"
)

func TestEncode_Stdout(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "encode", "https://example.com/abcd", "--size", "300", "-e", "q")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader([]byte(out)))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, "https://example.com/abcd", testutil.RequireDecode(t, img))
}

func TestEncode_DefaultsToLargestSize(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "encode", "hello")
	require.NoError(t, err)

	img, err := png.Decode(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 450, img.Bounds().Dx())
}

func TestEncode_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "abcd.png")

	out, errOut, err := execute(t, "encode", "https://example.com/abcd", "-o", path,
		"--size", "270", "--border", "2", "--engine", "skip2", "--verify")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, `"msg":"generated QR code"`)

	img, err := testutil.LoadImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, 270, img.Bounds().Dx())
	assert.Equal(t, "https://example.com/abcd", testutil.RequireDecode(t, img))
}

func TestEncode_TooLong(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "encode", strings.Repeat("x", 3000), "-e", "l")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode payload")
	assert.Contains(t, err.Error(), "data too long")
	assert.Empty(t, out)
}

func TestEncode_Args(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "encode")
	require.Error(t, err)

	_, _, err = execute(t, "encode", "a", "b")
	require.Error(t, err)

	_, _, err = execute(t, "encode", "a", "--size", "-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid size")

	out, _, err := execute(t, "encode", "a", "--size", "10", "--border", "2000000000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid border")
	assert.Empty(t, out)
}
