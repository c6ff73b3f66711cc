package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/VarozXYZ/didactio/config"
	"github.com/VarozXYZ/didactio/db"
	"github.com/VarozXYZ/didactio/handlers"
	"github.com/VarozXYZ/didactio/services"
	"github.com/VarozXYZ/didactio/services/courseindex"
	"github.com/VarozXYZ/didactio/services/generation"
	"github.com/VarozXYZ/didactio/services/llm"
)

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	if cfg.OpenAIAPIKey == "" && cfg.AnthropicAPIKey == "" {
		log.Fatal("At least one of OPENAI_API_KEY and ANTHROPIC_API_KEY is required")
	}

	courseRepo, err := db.NewPostgresCourseRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize course database: %v", err)
	}
	defer courseRepo.Close()

	llmService, err := llm.NewService(llm.Options{
		DefaultProvider: cfg.DefaultProvider,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize LLM service: %v", err)
	}

	// The course index needs Pinecone and OpenAI embeddings; without the
	// keys the server runs with semantic search disabled.
	var courseIndex *courseindex.Service
	if cfg.PineconeAPIKey != "" && cfg.OpenAIAPIKey != "" {
		courseIndex, err = courseindex.NewService(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
		if err != nil {
			log.Fatalf("Failed to initialize course index service: %v", err)
		}
	} else {
		log.Printf("[WARN] Semantic course search disabled, PINECONE_API_KEY or OPENAI_API_KEY not set")
	}

	// A nil *courseindex.Service must not end up inside a non-nil
	// interface, so the typed value is only assigned when it exists.
	var indexer generation.CourseIndexer
	var remover services.CourseIndexRemover
	var searcher handlers.CourseSearcher
	if courseIndex != nil {
		indexer = courseIndex
		remover = courseIndex
		searcher = courseIndex
	}

	generationService := generation.NewService(courseRepo, llmService, indexer, cfg.RegenerateInvalidateDownstream)
	generationHandler := handlers.NewGenerationHandler(generationService)

	courseStoreService := services.NewCourseStoreService(courseRepo, remover)
	courseStoreHandler := handlers.NewCourseStoreHandler(courseStoreService)

	searchHandler := handlers.NewSearchHandler(searcher)

	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	generationHandler.RegisterRoutes(router)
	courseStoreHandler.RegisterRoutes(router)
	searchHandler.RegisterRoutes(router)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
