package management

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"github.com/futig/rag-gateway/internal/usecase/files"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase FilesUsecase
	cfg     config.FileUploadConfig
}

func NewHandler(usecase FilesUsecase, cfg config.FileUploadConfig) *Handler {
	return &Handler{usecase: usecase, cfg: cfg}
}

type uploadURLRequest struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
	UserID   string `json:"user_id"`
}

type uploadResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ListFiles handles GET /management/files
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListFiles")

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}
	ctx = logger.AddFields(ctx, zap.String("user_id", userID))

	fileList, err := h.usecase.ListFiles(ctx, scopeFromQuery(r), userID)
	if err != nil {
		h.handleUsecaseError(ctx, w, "", err)
		return
	}

	ctxzap.Info(ctx, "files listed", zap.Int("count", len(fileList)))
	response.Success(w, fileList)
}

// UploadFile handles POST /management/files
//
// Accepts either a multipart form with a "file" part or a JSON body
// with "url" and "fileName". A missing user_id gets a generated one,
// returned in the response so the client can address the files later.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadFile")
	scope := scopeFromQuery(r)

	var (
		file *entity.File
		err  error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, err = h.uploadMultipart(ctx, w, r, scope)
	} else {
		file, err = h.uploadFromURL(ctx, w, r, scope)
	}
	if err != nil {
		// Response already written by the upload path.
		return
	}

	ctxzap.Info(ctx, "file uploaded",
		zap.String("user_id", file.UserID),
		zap.String("file", file.Name),
	)
	response.Success(w, uploadResponse{
		UserID: file.UserID,
		Name:   file.Name,
		Status: string(file.Status),
	})
}

func (h *Handler) uploadMultipart(ctx context.Context, w http.ResponseWriter, r *http.Request, scope files.Scope) (*entity.File, error) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		ctxzap.Warn(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid form data or size too large")
		return nil, err
	}

	if r.FormValue("url") != "" {
		response.Error(w, http.StatusBadRequest, "provide either a file or a url, not both")
		return nil, entity.ErrInvalidRequest
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		ctxzap.Warn(ctx, "no file provided", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "either a file or a url is required")
		return nil, err
	}
	defer part.Close()

	userID := r.FormValue("user_id")
	if userID == "" {
		userID = r.URL.Query().Get("user_id")
	}
	if userID == "" {
		userID = uuid.New().String()
	}
	ctx = logger.AddFields(ctx, zap.String("user_id", userID))

	file, err := h.usecase.UploadFile(ctx, scope, userID, header.Filename, part)
	if err != nil {
		h.handleUsecaseError(ctx, w, header.Filename, err)
		return nil, err
	}
	return file, nil
}

func (h *Handler) uploadFromURL(ctx context.Context, w http.ResponseWriter, r *http.Request, scope files.Scope) (*entity.File, error) {
	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode request body", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return nil, err
	}

	if req.URL == "" || req.FileName == "" {
		response.Error(w, http.StatusBadRequest, "either a file or a url with fileName is required")
		return nil, entity.ErrInvalidRequest
	}

	userID := req.UserID
	if userID == "" {
		userID = r.URL.Query().Get("user_id")
	}
	if userID == "" {
		userID = uuid.New().String()
	}
	ctx = logger.AddFields(ctx, zap.String("user_id", userID))

	file, err := h.usecase.UploadFromURL(ctx, scope, userID, req.FileName, req.URL)
	if err != nil {
		h.handleUsecaseError(ctx, w, req.FileName, err)
		return nil, err
	}
	return file, nil
}

// RemoveFile handles DELETE /management/files/{file_name}
func (h *Handler) RemoveFile(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "RemoveFile")
	fileName := chi.URLParam(r, "file_name")

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		response.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}
	ctx = logger.AddFields(ctx,
		zap.String("user_id", userID),
		zap.String("file", fileName),
	)

	if err := h.usecase.RemoveFile(ctx, scopeFromQuery(r), userID, fileName); err != nil {
		h.handleUsecaseError(ctx, w, fileName, err)
		return
	}

	ctxzap.Info(ctx, "file removed")
	response.Success(w, map[string]string{
		"message": fmt.Sprintf("File %s removed successfully.", fileName),
	})
}

func scopeFromQuery(r *http.Request) files.Scope {
	return files.Scope{
		Bucket: r.URL.Query().Get("bucket_name"),
		Prefix: r.URL.Query().Get("gcs_prefix"),
	}
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, fileName string, err error) {
	var downloadErr *entity.DownloadError

	switch {
	case errors.Is(err, entity.ErrFileNotFound):
		ctxzap.Warn(ctx, "file not found", zap.Error(err))
		response.NamedError(w, http.StatusNotFound, "FileNotFoundError",
			fmt.Sprintf("File %s not found.", fileName))
	case errors.Is(err, entity.ErrUnsupportedExtension), errors.Is(err, entity.ErrMissingFileName):
		ctxzap.Warn(ctx, "unsupported file", zap.Error(err))
		response.NamedError(w, http.StatusBadRequest, "UnsupportedFileExtensionError", err.Error())
	case errors.Is(err, entity.ErrFileTooLarge):
		ctxzap.Warn(ctx, "file too large", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &downloadErr):
		ctxzap.Warn(ctx, "file download failed", zap.Error(err))
		response.NamedError(w, downloadErr.Status, "DownloadError", downloadErr.Error())
	default:
		ctxzap.Error(ctx, "file operation failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
