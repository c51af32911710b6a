package management

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/usecase/files"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFilesUsecase struct {
	files     []entity.File
	listErr   error
	uploadErr error
	removeErr error

	lastScope  files.Scope
	lastUserID string
	lastName   string
	lastURL    string
	content    string
}

func (f *fakeFilesUsecase) ListFiles(ctx context.Context, scope files.Scope, userID string) ([]entity.File, error) {
	f.lastScope = scope
	f.lastUserID = userID
	return f.files, f.listErr
}

func (f *fakeFilesUsecase) UploadFile(ctx context.Context, scope files.Scope, userID, name string, content io.Reader) (*entity.File, error) {
	f.lastScope = scope
	f.lastUserID = userID
	f.lastName = name
	data, _ := io.ReadAll(content)
	f.content = string(data)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &entity.File{UserID: userID, Name: name, Status: entity.FileStatusUploaded}, nil
}

func (f *fakeFilesUsecase) UploadFromURL(ctx context.Context, scope files.Scope, userID, name, url string) (*entity.File, error) {
	f.lastScope = scope
	f.lastUserID = userID
	f.lastName = name
	f.lastURL = url
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &entity.File{UserID: userID, Name: name, Status: entity.FileStatusUploaded}, nil
}

func (f *fakeFilesUsecase) RemoveFile(ctx context.Context, scope files.Scope, userID, name string) error {
	f.lastScope = scope
	f.lastUserID = userID
	f.lastName = name
	return f.removeErr
}

func newTestRouter(uc FilesUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, config.FileUploadConfig{MaxFileSize: 1 << 20, MaxUploadSize: 1 << 21}))
	return r
}

func multipartBody(t *testing.T, fileName, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestListFiles(t *testing.T) {
	uc := &fakeFilesUsecase{files: []entity.File{
		{UserID: "u1", Name: "a.txt", Status: entity.FileStatusUploaded},
	}}
	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodGet, "/management/files?user_id=u1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", uc.lastUserID)

	var listed []entity.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "a.txt", listed[0].Name)
	assert.Equal(t, entity.FileStatusUploaded, listed[0].Status)
}

func TestListFiles_RequiresUserID(t *testing.T) {
	router := newTestRouter(&fakeFilesUsecase{})

	req := httptest.NewRequest(http.MethodGet, "/management/files", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListFiles_ForwardsStorageScope(t *testing.T) {
	uc := &fakeFilesUsecase{}
	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodGet,
		"/management/files?user_id=u1&bucket_name=other-bucket&gcs_prefix=archive", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "other-bucket", uc.lastScope.Bucket)
	assert.Equal(t, "archive", uc.lastScope.Prefix)
}

func TestUploadFile_Multipart(t *testing.T) {
	uc := &fakeFilesUsecase{}
	router := newTestRouter(uc)

	body, contentType := multipartBody(t, "notes.txt", "file content", map[string]string{"user_id": "u1"})
	req := httptest.NewRequest(http.MethodPost, "/management/files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", uc.lastUserID)
	assert.Equal(t, "notes.txt", uc.lastName)
	assert.Equal(t, "file content", uc.content)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "uploaded", resp.Status)
}

func TestUploadFile_GeneratesUserIDWhenMissing(t *testing.T) {
	uc := &fakeFilesUsecase{}
	router := newTestRouter(uc)

	body, contentType := multipartBody(t, "notes.txt", "x", nil)
	req := httptest.NewRequest(http.MethodPost, "/management/files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, uc.lastUserID)

	var resp uploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uc.lastUserID, resp.UserID, "generated user id must be returned to the client")
}

func TestUploadFile_UnsupportedExtensionBody(t *testing.T) {
	uc := &fakeFilesUsecase{
		uploadErr: fmt.Errorf("%w: file prog.exe with extension .exe is not supported", entity.ErrUnsupportedExtension),
	}
	router := newTestRouter(uc)

	body, contentType := multipartBody(t, "prog.exe", "x", map[string]string{"user_id": "u1"})
	req := httptest.NewRequest(http.MethodPost, "/management/files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UnsupportedFileExtensionError", resp.Error)
	assert.Contains(t, resp.Message, ".exe")
}

func TestUploadFile_FromURL(t *testing.T) {
	uc := &fakeFilesUsecase{}
	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodPost, "/management/files",
		strings.NewReader(`{"url":"http://example.com/doc.txt","fileName":"doc.txt","user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://example.com/doc.txt", uc.lastURL)
	assert.Equal(t, "doc.txt", uc.lastName)
	assert.Equal(t, "u1", uc.lastUserID)
}

func TestUploadFile_URLDownloadStatusPassthrough(t *testing.T) {
	uc := &fakeFilesUsecase{
		uploadErr: &entity.DownloadError{URL: "http://example.com/doc.txt", Status: 403},
	}
	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodPost, "/management/files",
		strings.NewReader(`{"url":"http://example.com/doc.txt","fileName":"doc.txt","user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUploadFile_RejectsMissingURLAndFile(t *testing.T) {
	router := newTestRouter(&fakeFilesUsecase{})

	req := httptest.NewRequest(http.MethodPost, "/management/files",
		strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadFile_RejectsBothURLAndFile(t *testing.T) {
	router := newTestRouter(&fakeFilesUsecase{})

	body, contentType := multipartBody(t, "notes.txt", "x", map[string]string{
		"user_id": "u1",
		"url":     "http://example.com/doc.txt",
	})
	req := httptest.NewRequest(http.MethodPost, "/management/files", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveFile(t *testing.T) {
	uc := &fakeFilesUsecase{}
	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodDelete, "/management/files/a.txt?user_id=u1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a.txt", uc.lastName)
	assert.JSONEq(t, `{"message":"File a.txt removed successfully."}`, w.Body.String())
}

func TestRemoveFile_NotFoundBody(t *testing.T) {
	uc := &fakeFilesUsecase{removeErr: entity.ErrFileNotFound}
	router := newTestRouter(uc)

	req := httptest.NewRequest(http.MethodDelete, "/management/files/ghost.txt?user_id=u1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"FileNotFoundError","message":"File ghost.txt not found."}`, w.Body.String())
}
