package analysis

import "context"

// Repository port (interface for result history persistence)
type Repository interface {
	Save(ctx context.Context, r *Result) error
	Get(ctx context.Context, id ID) (*Result, error)
	Latest(ctx context.Context, limit int) ([]*Result, error)
	Paginate(ctx context.Context, page, pageSize int) ([]*Result, error)
	Summary(ctx context.Context, sinceDays int) (Summary, error)
}

// ReportPublisher port (interface to the report collaborator); returns an
// opaque artifact reference for the rendered report.
type ReportPublisher interface {
	Publish(ctx context.Context, r *Result) (string, error)
}

// ArtifactStore port (interface for raw result artifact storage)
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
