package main

import (
	"context"
	"log"

	"github.com/VarozXYZ/didactio/config"
	"github.com/VarozXYZ/didactio/db"
	"github.com/VarozXYZ/didactio/models"
	"github.com/VarozXYZ/didactio/services/courseindex"
)

// Backfills the semantic course index from the database: every ready course
// with generated modules gets (re)indexed. Useful after enabling search on
// an existing installation or after changing the index.
func main() {
	log.Printf("[INFO] Starting course indexing process")

	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("[ERROR] DB_URL environment variable is required")
	}
	if cfg.PineconeAPIKey == "" {
		log.Fatal("[ERROR] PINECONE_API_KEY environment variable is required")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("[ERROR] OPENAI_API_KEY environment variable is required")
	}

	courseRepo, err := db.NewPostgresCourseRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize course database: %v", err)
	}
	defer courseRepo.Close()

	indexService, err := courseindex.NewService(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize course index service: %v", err)
	}

	ctx := context.Background()
	if err := indexService.EnsureIndex(ctx); err != nil {
		log.Fatalf("[ERROR] Failed to ensure Pinecone index: %v", err)
	}

	courses, err := courseRepo.GetAllCourses()
	if err != nil {
		log.Fatalf("[ERROR] Failed to retrieve courses: %v", err)
	}
	log.Printf("[INFO] Retrieved %d courses from database", len(courses))

	indexed := 0
	for i, course := range courses {
		log.Printf("[INFO] Processing course %d/%d (ID: %d)", i+1, len(courses), course.ID)

		if course.Status != models.CourseStatusReady || len(course.Modules) == 0 {
			log.Printf("[INFO] Skipping course %d (status: %s, modules: %d)", course.ID, course.Status, len(course.Modules))
			continue
		}

		if err := indexService.IndexCourse(ctx, course); err != nil {
			log.Printf("[ERROR] Failed to index course %d: %v", course.ID, err)
			continue
		}

		indexed++
		log.Printf("[INFO] Successfully indexed course %d", course.ID)
	}

	log.Printf("[INFO] Course indexing completed, %d of %d courses indexed", indexed, len(courses))
}
