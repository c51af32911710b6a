package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	retrygo "github.com/avast/retry-go/v4"
	"github.com/futig/rag-gateway/internal/entity"
	pkgretry "github.com/futig/rag-gateway/internal/pkg/retry"
	"github.com/futig/rag-gateway/internal/pkg/validator"
	"github.com/futig/rag-gateway/internal/storage"
	pkghttp "github.com/futig/rag-gateway/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Scope optionally redirects bucket-backed storage for one request.
// Ignored by the local backend.
type Scope struct {
	Bucket string
	Prefix string
}

// Usecase keeps the stored files and the retrieval index of a user
// consistent: every upload triggers a full re-index, every removal a
// reset. No locking is attempted around the triggers; concurrent
// mutations for one user settle on last-write-wins.
type Usecase struct {
	store      storage.Adapter
	indexer    Indexer
	engines    EngineInvalidator
	validator  *validator.Validator
	downloader Downloader
	retryCfg   pkgretry.RetryConfig
	logger     *zap.Logger
}

func NewUsecase(
	store storage.Adapter,
	indexer Indexer,
	engines EngineInvalidator,
	fileValidator *validator.Validator,
	downloader Downloader,
	retryCfg pkgretry.RetryConfig,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		store:      store,
		indexer:    indexer,
		engines:    engines,
		validator:  fileValidator,
		downloader: downloader,
		retryCfg:   retryCfg,
		logger:     logger,
	}
}

func (uc *Usecase) adapter(scope Scope) storage.Adapter {
	if scope.Bucket == "" && scope.Prefix == "" {
		return uc.store
	}
	if scoper, ok := uc.store.(storage.BucketScoper); ok {
		return scoper.WithScope(scope.Bucket, scope.Prefix)
	}
	return uc.store
}

// ListFiles enumerates the user's stored objects as File views. Always
// a live listing against the storage adapter.
func (uc *Usecase) ListFiles(ctx context.Context, scope Scope, userID string) ([]entity.File, error) {
	names, err := uc.adapter(scope).List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	files := make([]entity.File, 0, len(names))
	for _, name := range names {
		files = append(files, entity.File{
			UserID: userID,
			Name:   name,
			Status: entity.FileStatusUploaded,
		})
	}
	return files, nil
}

// UploadFile validates the extension, persists the content and triggers
// a full re-index for the user. The extension gate runs before any
// storage write, so a rejected upload leaves the listing unchanged.
func (uc *Usecase) UploadFile(ctx context.Context, scope Scope, userID, name string, content io.Reader) (*entity.File, error) {
	if err := uc.validator.ValidateFileName(name); err != nil {
		return nil, err
	}

	if err := uc.adapter(scope).Upload(ctx, userID, name, content); err != nil {
		return nil, fmt.Errorf("persist file: %w", err)
	}

	if err := uc.indexer.IndexAll(ctx, userID); err != nil {
		return nil, fmt.Errorf("reindex: %w", err)
	}
	uc.engines.Invalidate(userID)

	ctxzap.Info(ctx, "file uploaded",
		zap.String("user_id", userID),
		zap.String("file", name),
	)

	return &entity.File{UserID: userID, Name: name, Status: entity.FileStatusUploaded}, nil
}

// UploadFromURL fetches the remote content in full, then follows the
// same path as UploadFile. A non-success upstream status surfaces as
// *entity.DownloadError so the router can pass the status through.
func (uc *Usecase) UploadFromURL(ctx context.Context, scope Scope, userID, name, url string) (*entity.File, error) {
	if err := uc.validator.ValidateFileName(name); err != nil {
		return nil, err
	}

	content, err := retrygo.DoWithData(func() ([]byte, error) {
		return uc.downloader.FetchBytes(ctx, url)
	}, append(uc.retryCfg.ToRetryOptions(),
		retrygo.Context(ctx),
		retrygo.RetryIf(isRetryableFetchError),
		retrygo.LastErrorOnly(true),
	)...)
	if err != nil {
		var httpErr *pkghttp.HTTPError
		if errors.As(err, &httpErr) {
			return nil, &entity.DownloadError{URL: url, Status: httpErr.StatusCode}
		}
		return nil, fmt.Errorf("download file: %w", err)
	}

	if err := uc.validator.ValidateFileSize(int64(len(content))); err != nil {
		return nil, err
	}

	return uc.UploadFile(ctx, scope, userID, name, bytes.NewReader(content))
}

// RemoveFile deletes the object and resets the user's index so stale
// content is no longer retrievable. Reset is a full rebuild trigger,
// not a selective deletion from the index.
func (uc *Usecase) RemoveFile(ctx context.Context, scope Scope, userID, name string) error {
	if err := uc.adapter(scope).Delete(ctx, userID, name); err != nil {
		return err
	}

	if err := uc.indexer.Reset(ctx, userID); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	uc.engines.Invalidate(userID)

	ctxzap.Info(ctx, "file removed",
		zap.String("user_id", userID),
		zap.String("file", name),
	)
	return nil
}

// isRetryableFetchError retries network failures and 5xx statuses;
// client errors are final.
func isRetryableFetchError(err error) bool {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}
	return true
}
