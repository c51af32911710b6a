package entity

// FileStatus describes the lifecycle state of a stored file.
type FileStatus string

const (
	FileStatusUploaded FileStatus = "uploaded"
)

// File is a view over one stored object in a user's namespace. Existence
// is derived from the storage adapter listing, not from a persisted record.
type File struct {
	UserID string     `json:"user_id"`
	Name   string     `json:"name"`
	Status FileStatus `json:"status"`
}
