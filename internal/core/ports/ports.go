package ports

import (
	"context"
	"io"

	"github.com/thushan/llamadeck/internal/core/domain"
)

// PropsService fetches the server properties payload
type PropsService interface {
	Fetch(ctx context.Context) (*domain.ServerProps, error)
}

// FileUploader sends a file to the server and returns its server-side path
type FileUploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	UploadFile(ctx context.Context, path string) (string, error)
}
