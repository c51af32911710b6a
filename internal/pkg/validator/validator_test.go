package validator

import (
	"testing"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *Validator {
	return NewFileValidator(config.FileUploadConfig{
		MaxFileSize:   1024,
		MaxUploadSize: 2048,
	})
}

func TestValidateFileName(t *testing.T) {
	v := newTestValidator()

	for _, name := range []string{"a.txt", "b.md", "c.csv", "d.docx", "e.pdf", "REPORT.TXT"} {
		assert.NoError(t, v.ValidateFileName(name), name)
	}

	err := v.ValidateFileName("prog.exe")
	require.ErrorIs(t, err, entity.ErrUnsupportedExtension)
	assert.Contains(t, err.Error(), "prog.exe")
	assert.Contains(t, err.Error(), ".exe")

	assert.ErrorIs(t, v.ValidateFileName("noextension"), entity.ErrUnsupportedExtension)
	assert.ErrorIs(t, v.ValidateFileName(""), entity.ErrMissingFileName)
	assert.ErrorIs(t, v.ValidateFileName("   "), entity.ErrMissingFileName)
}

func TestValidateFileSize(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateFileSize(1024))
	assert.ErrorIs(t, v.ValidateFileSize(1025), entity.ErrFileTooLarge)
}

func TestValidateMessages(t *testing.T) {
	message, history, err := ValidateMessages([]entity.ChatMessage{
		{Role: entity.RoleUser, Content: "first"},
		{Role: entity.RoleAssistant, Content: "second"},
		{Role: entity.RoleUser, Content: "third"},
	})
	require.NoError(t, err)
	assert.Equal(t, "third", message)
	require.Len(t, history, 2)
	assert.Equal(t, "first", history[0].Content)

	_, _, err = ValidateMessages(nil)
	assert.ErrorIs(t, err, entity.ErrNoMessages)

	_, _, err = ValidateMessages([]entity.ChatMessage{
		{Role: entity.RoleAssistant, Content: "hello"},
	})
	assert.ErrorIs(t, err, entity.ErrLastNotUser)
}
