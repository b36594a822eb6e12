package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "1/1/2024, 10:00 - Alice: hi\n1/1/2024, 10:05 - Bob: hey\n"

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestIdentify(t *testing.T) {
	assert.Equal(t, Text, Identify("chat.TXT"))
	assert.Equal(t, Zip, Identify("export.zip"))
	assert.Equal(t, Unknown, Identify("photo.jpg"))
	assert.Equal(t, "zip", Zip.String())
}

func TestRead_Text(t *testing.T) {
	up, err := New(0).Read("chat.txt", strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, sample, up.Text)
	assert.Equal(t, "chat.txt", up.Entry)
	assert.NotEmpty(t, up.Checksum)
}

func TestRead_StripsBOM(t *testing.T) {
	up, err := New(0).Read("chat.txt", bytes.NewReader(append([]byte{0xEF, 0xBB, 0xBF}, sample...)))
	require.NoError(t, err)
	assert.Equal(t, sample, up.Text)
	assert.Equal(t, Checksum(sample), up.Checksum)
}

func TestRead_UTF16(t *testing.T) {
	// UTF-16 LE with BOM
	data := []byte{0xFF, 0xFE}
	for _, r := range "1/1/2024, 10:00 - Ana: olá" {
		data = append(data, byte(r), byte(r>>8))
	}
	up, err := New(0).Read("chat.txt", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "1/1/2024, 10:00 - Ana: olá", up.Text)
}

func TestRead_Zip(t *testing.T) {
	data := buildZip(t, map[string]string{
		"IMG-0001.jpg":               "binary",
		"notes.txt":                  "not the chat",
		"WhatsApp Chat with Bob.txt": sample,
	})
	up, err := New(0).Read("export.zip", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "WhatsApp Chat with Bob.txt", up.Entry)
	assert.Equal(t, sample, up.Text)
}

func TestRead_ZipWithoutText(t *testing.T) {
	data := buildZip(t, map[string]string{"IMG-0001.jpg": "binary"})
	_, err := New(0).Read("export.zip", bytes.NewReader(data))
	assert.True(t, errors.Is(err, ErrNoTextFileFound))
}

func TestRead_Errors(t *testing.T) {
	_, err := New(0).Read("chat.pdf", strings.NewReader(sample))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = New(0).Read("chat.txt", bytes.NewReader([]byte{0xC3, 0x28}))
	assert.ErrorIs(t, err, ErrDecodeFailed)

	_, err = New(8).Read("chat.txt", strings.NewReader(sample))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = New(0).Read("export.zip", strings.NewReader("not a zip"))
	assert.Error(t, err)
}
