package validator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
)

// SupportedExtensions is the set of file types the index loader can ingest.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".docx": true,
	".pdf":  true,
}

// Validator validates file uploads
type Validator struct {
	cfg config.FileUploadConfig
}

func NewFileValidator(cfg config.FileUploadConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateFileName checks that the name is present and carries a supported extension
func (v *Validator) ValidateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return entity.ErrMissingFileName
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !SupportedExtensions[ext] {
		return fmt.Errorf("%w: file %s with extension %s is not supported", entity.ErrUnsupportedExtension, name, ext)
	}

	return nil
}

// ValidateFileSize checks the declared size against the configured limit
func (v *Validator) ValidateFileSize(size int64) error {
	if size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: maximum %d bytes allowed, got %d", entity.ErrFileTooLarge, v.cfg.MaxFileSize, size)
	}
	return nil
}

// MaxUploadSize is the multipart memory limit for upload requests
func (v *Validator) MaxUploadSize() int64 {
	return v.cfg.MaxUploadSize
}
