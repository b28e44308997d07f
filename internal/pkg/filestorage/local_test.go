package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusprint/internal/pkg/apperrors"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSaveStoresUniqueSanitizedName(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, 1024)
	require.NoError(t, err)

	a, err := ls.Save(fileHeader(t, "My Thesis (final).PDF", []byte("%PDF-1.4")))
	require.NoError(t, err)
	b, err := ls.Save(fileHeader(t, "My Thesis (final).PDF", []byte("%PDF-1.4")))
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}_My_Thesis_final.PDF$`), a.StoredName)
	assert.NotEqual(t, a.StoredName, b.StoredName)
	assert.Equal(t, "My_Thesis_final.PDF", a.OriginalName)
	assert.Equal(t, int64(8), a.Size)

	data, err := os.ReadFile(a.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestSaveRejectsUnsupportedExtension(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), 1024)
	require.NoError(t, err)

	_, err = ls.Save(fileHeader(t, "photo.png", []byte("png")))
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)
	assert.True(t, apperrors.IsValidation(err))

	_, err = ls.Save(nil)
	assert.ErrorIs(t, err, apperrors.ErrNoFile)
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, 4)
	require.NoError(t, err)

	_, err = ls.Save(fileHeader(t, "big.docx", []byte("0123456789")))
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSaveFallsBackToDocumentName(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), 1024)
	require.NoError(t, err)

	stored, err := ls.Save(fileHeader(t, "??.doc", []byte("x")))
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{16}_document\.doc$`, stored.StoredName)
}

func TestDeleteIsIdempotentAndConfined(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, 1024)
	require.NoError(t, err)

	stored, err := ls.Save(fileHeader(t, "notes.pdf", []byte("x")))
	require.NoError(t, err)

	require.NoError(t, ls.Delete(stored.Path))
	_, err = os.Stat(stored.Path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, ls.Delete(stored.Path))

	outside := filepath.Join(t.TempDir(), "keep.pdf")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))
	require.NoError(t, ls.Delete(outside))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd":      "passwd",
		`C:\Users\me\cv.docx`:   "cv.docx",
		"report final.pdf":      "report_final.pdf",
		"ünïcödé.pdf":           "ncd.pdf",
		".hidden.doc":           "hidden.doc",
		"///":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}
