package generation

import (
	"context"

	"github.com/VarozXYZ/didactio/db"
	"github.com/VarozXYZ/didactio/models"
	"github.com/VarozXYZ/didactio/services/llm"
)

// ClientProvider resolves a provider name to a configured LLM client. An
// empty name resolves to the default provider.
type ClientProvider interface {
	ClientFor(provider string) (llm.Client, error)
}

// CourseIndexer pushes finished courses into the semantic search index.
// Indexing is best effort and never affects the pipeline outcome.
type CourseIndexer interface {
	IndexCourse(ctx context.Context, course *models.Course) error
}

// Service orchestrates course generation. All pipeline work for a course
// runs through a per-course worker queue, so at most one task touches a
// course at a time.
type Service struct {
	repo                 db.CourseRepository
	clients              ClientProvider
	worker               *Worker
	indexer              CourseIndexer
	invalidateDownstream bool
}

// NewService creates a generation service. indexer may be nil when semantic
// search is not configured. invalidateDownstream controls whether a module
// regeneration discards and rebuilds the modules after it.
func NewService(repo db.CourseRepository, clients ClientProvider, indexer CourseIndexer, invalidateDownstream bool) *Service {
	return &Service{
		repo:                 repo,
		clients:              clients,
		worker:               NewWorker(),
		indexer:              indexer,
		invalidateDownstream: invalidateDownstream,
	}
}
