package management

import (
	"context"
	"io"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/usecase/files"
)

type FilesUsecase interface {
	ListFiles(ctx context.Context, scope files.Scope, userID string) ([]entity.File, error)
	UploadFile(ctx context.Context, scope files.Scope, userID, name string, content io.Reader) (*entity.File, error)
	UploadFromURL(ctx context.Context, scope files.Scope, userID, name, url string) (*entity.File, error)
	RemoveFile(ctx context.Context, scope files.Scope, userID, name string) error
}
