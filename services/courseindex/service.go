package courseindex

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/VarozXYZ/didactio/models"
)

const courseNamespace = "didactio-courses"

// Service maintains the semantic course index: one vector per realized
// module, embedded from its title, overview and summary, searchable across
// courses. Callers treat every operation as best effort.
type Service struct {
	client    *pinecone.Client
	embedder  embeddings.Embedder
	indexName string
}

func NewService(pineconeAPIKey, openaiAPIKey, indexName string) (*Service, error) {
	log.Printf("[INFO] Initializing course index service")

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: pineconeAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(openaiAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	service := &Service{
		client:    pc,
		embedder:  embedder,
		indexName: indexName,
	}

	log.Printf("[INFO] Course index service initialized successfully")
	return service, nil
}

// EnsureIndex creates the serverless index if it does not exist yet and
// waits until it is ready.
func (s *Service) EnsureIndex(ctx context.Context) error {
	indexes, err := s.client.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}
	for _, idx := range indexes {
		if idx.Name == s.indexName {
			log.Printf("[INFO] Index %s already exists", s.indexName)
			return nil
		}
	}

	log.Printf("[INFO] Creating Pinecone index: %s", s.indexName)
	dimension := int32(1536)
	deletionProtection := pinecone.DeletionProtectionDisabled
	metric := pinecone.Cosine

	_, err = s.client.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:               s.indexName,
		Dimension:          &dimension,
		Metric:             &metric,
		Cloud:              pinecone.Aws,
		Region:             "us-east-1",
		DeletionProtection: &deletionProtection,
		Tags:               &pinecone.IndexTags{"project": "didactio"},
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	for {
		idx, err := s.client.DescribeIndex(ctx, s.indexName)
		if err != nil {
			return fmt.Errorf("failed to describe index: %w", err)
		}
		if idx.Status.Ready {
			log.Printf("[INFO] Index %s is ready", s.indexName)
			return nil
		}
		log.Printf("[INFO] Waiting for index %s to be ready...", s.indexName)
		time.Sleep(10 * time.Second)
	}
}

// IndexCourse replaces the vectors of a course with one vector per realized
// module. Vector ids follow course_<id>_module_<planIndex> so a whole course
// can be removed by prefix.
func (s *Service) IndexCourse(ctx context.Context, course *models.Course) error {
	if course.Syllabus == nil || len(course.Modules) == 0 {
		return fmt.Errorf("course %d has no generated modules to index", course.ID)
	}
	log.Printf("[INFO] Indexing course %d with %d modules", course.ID, len(course.Modules))

	if err := s.RemoveCourse(ctx, course.ID); err != nil {
		return fmt.Errorf("failed to remove stale vectors: %w", err)
	}

	texts := make([]string, len(course.Modules))
	for i, module := range course.Modules {
		texts[i] = fmt.Sprintf("Course: %s\nModule: %s\nOverview: %s\nSummary: %s",
			course.Syllabus.Title, module.Title, module.Overview, module.Summary)
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	upserts := make([]*pinecone.Vector, 0, len(course.Modules))
	for i, module := range course.Modules {
		metadata, err := structpb.NewStruct(map[string]any{
			"course_id":    course.ID,
			"plan_index":   module.PlanIndex,
			"module_title": module.Title,
			"course_title": course.Syllabus.Title,
			"topic":        course.Syllabus.Topic,
			"summary":      module.Summary,
			"created_at":   time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("failed to create metadata for module %d: %w", module.PlanIndex, err)
		}
		upserts = append(upserts, &pinecone.Vector{
			Id:       fmt.Sprintf("course_%d_module_%d", course.ID, module.PlanIndex),
			Values:   &vectors[i],
			Metadata: metadata,
		})
	}

	idxConn, err := s.indexConnection(ctx)
	if err != nil {
		return err
	}
	count, err := idxConn.UpsertVectors(ctx, upserts)
	if err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}
	log.Printf("[INFO] Upserted %d vectors for course %d", count, course.ID)
	return nil
}

// SearchCourses embeds the query and returns the best matching modules
// across all indexed courses, highest score first.
func (s *Service) SearchCourses(ctx context.Context, query string, topK int) ([]models.CourseSearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if topK <= 0 {
		topK = 10
	}
	log.Printf("[INFO] Semantic course search for %q (top %d)", query, topK)

	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	idxConn, err := s.indexConnection(ctx)
	if err != nil {
		return nil, err
	}

	result, err := idxConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          queryVector,
		TopK:            uint32(topK),
		IncludeValues:   false,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}

	results := make([]models.CourseSearchResult, 0, len(result.Matches))
	for _, match := range result.Matches {
		if match.Vector == nil || match.Vector.Metadata == nil {
			continue
		}
		metadata := match.Vector.Metadata.AsMap()
		results = append(results, models.CourseSearchResult{
			CourseID:    metadataInt(metadata, "course_id"),
			PlanIndex:   metadataInt(metadata, "plan_index"),
			ModuleTitle: metadataString(metadata, "module_title"),
			CourseTitle: metadataString(metadata, "course_title"),
			Topic:       metadataString(metadata, "topic"),
			Summary:     metadataString(metadata, "summary"),
			Score:       float64(match.Score),
		})
	}

	log.Printf("[INFO] Semantic search returned %d matches", len(results))
	return results, nil
}

// RemoveCourse deletes every vector belonging to the course, paging through
// the id prefix until none remain.
func (s *Service) RemoveCourse(ctx context.Context, courseID int) error {
	idxConn, err := s.indexConnection(ctx)
	if err != nil {
		return err
	}

	prefix := fmt.Sprintf("course_%d_", courseID)
	limit := uint32(100)

	listResp, err := idxConn.ListVectors(ctx, &pinecone.ListVectorsRequest{
		Prefix: &prefix,
		Limit:  &limit,
	})
	if err != nil {
		// A namespace only exists once something was upserted into it.
		if strings.Contains(err.Error(), "Namespace not found") {
			return nil
		}
		return fmt.Errorf("failed to list vectors: %w", err)
	}

	for len(listResp.VectorIds) > 0 {
		ids := make([]string, 0, len(listResp.VectorIds))
		for _, vectorID := range listResp.VectorIds {
			if vectorID != nil {
				ids = append(ids, *vectorID)
			}
		}
		if len(ids) > 0 {
			if err := idxConn.DeleteVectorsById(ctx, ids); err != nil {
				return fmt.Errorf("failed to delete vector batch: %w", err)
			}
			log.Printf("[INFO] Deleted %d vectors for course %d", len(ids), courseID)
		}

		if listResp.NextPaginationToken == nil {
			break
		}
		listResp, err = idxConn.ListVectors(ctx, &pinecone.ListVectorsRequest{
			Prefix:          &prefix,
			Limit:           &limit,
			PaginationToken: listResp.NextPaginationToken,
		})
		if err != nil {
			return fmt.Errorf("failed to list next batch of vectors: %w", err)
		}
	}
	return nil
}

func (s *Service) indexConnection(ctx context.Context) (*pinecone.IndexConnection, error) {
	idxDesc, err := s.client.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index: %w", err)
	}
	idxConn, err := s.client.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: courseNamespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}
	return idxConn, nil
}

func metadataString(metadata map[string]any, key string) string {
	if value, ok := metadata[key].(string); ok {
		return value
	}
	return ""
}

// Struct metadata stores all numbers as float64.
func metadataInt(metadata map[string]any, key string) int {
	if value, ok := metadata[key].(float64); ok {
		return int(value)
	}
	return 0
}
