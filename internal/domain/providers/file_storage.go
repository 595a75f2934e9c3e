package providers

import "context"

// FileStorage stores uploaded blobs and returns the name clients use to fetch them
type FileStorage interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}
