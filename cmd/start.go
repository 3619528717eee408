/*
Copyright © 2025 PhilipWidoff
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/spf13/cobra"

	"github.com/PhilipWidoff/SmartPDF/config"
	"github.com/PhilipWidoff/SmartPDF/database"
	"github.com/PhilipWidoff/SmartPDF/handler"
	"github.com/PhilipWidoff/SmartPDF/service"
	"github.com/PhilipWidoff/SmartPDF/types"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the question-answering server",
	Long:  `Starts the HTTP server that answers questions about PDF documents`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		// Initialize services
		pdfService := service.NewPDFService(
			types.DocumentServiceConfig{
				MaxChunkSize: cfg.MaxChunkSize,
				OverlapSize:  cfg.OverlapSize,
			})
		documentStore := service.NewFileDocumentStore(cfg.DocumentsDir, pdfService)

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}

		indexService := service.NewIndexService(cfg.IndexDir, documentStore, pdfService, weaviateDb)
		locator := service.NewPageLocator(documentStore)

		var (
			aiService    service.AIService
			answerEngine service.StreamingAnswerEngine
		)
		readPage := readPageHandler(documentStore)
		switch cfg.AIBackend {
		case "gemini":
			geminiService, err := service.NewGeminiService(cfg.GeminiAPIKeys, cfg.GeminiModel, weaviateDb, cfg.RetrievalLimit)
			if err != nil {
				log.Fatalf("Failed to create Gemini service: %v", err)
			}
			geminiService.RegisterFunction("read_page", readPageDescription,
				map[string]*genai.Schema{
					"document": {Type: genai.TypeString, Description: "Document identifier"},
					"page":     {Type: genai.TypeInteger, Description: "1-based page number"},
				}, readPage)
			aiService, answerEngine = geminiService, geminiService
		default:
			openaiService := service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model, weaviateDb, cfg.RetrievalLimit)
			openaiService.RegisterFunctionCall("read_page", readPageDescription,
				jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"document": {Type: jsonschema.String, Description: "Document identifier"},
						"page":     {Type: jsonschema.Integer, Description: "1-based page number"},
					},
					Required: []string{"document", "page"},
				}, readPage)
			aiService, answerEngine = openaiService, openaiService
		}

		queryService := service.NewQueryService(indexService, answerEngine, locator, cfg.MemoryWindow)
		analysisService := service.NewAnalysisService(aiService, documentStore)
		fileService := service.NewFileService(cfg.DocumentsDir)
		wsService := service.NewWebSocketService(indexService, answerEngine, locator, cfg.MemoryWindow)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		queryHandler := handler.NewQueryHandler(queryService)
		analyzeHandler := handler.NewAnalyzeHandler(analysisService)
		documentHandler := handler.NewDocumentHandler(documentStore, cfg.StaticDir)
		uploadHandler := handler.NewUploadHandler(fileService)

		// Setup Gin router
		router := gin.Default()

		// Apply global middleware
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/query", queryHandler.HandleQuery)
			apiV1.POST("/analyze", analyzeHandler.HandleAnalyze)
			apiV1.GET("/documents", documentHandler.HandleList)
			apiV1.POST("/documents/upload", uploadHandler.HandleUpload)
			apiV1.GET("/pdf", documentHandler.ServeDocument)
			apiV1.GET("/background", documentHandler.ServeBackground)
		}

		router.GET("/ws", func(c *gin.Context) {
			wsService.HandleQuery(c.Writer, c.Request)
		})

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

const readPageDescription = "Read the full extracted text of one page of the document being discussed. " +
	"Use it when the provided excerpts are not enough to answer precisely."

// readPageHandler exposes raw page text to the answering engines as a tool.
func readPageHandler(documents service.DocumentStore) types.FunctionHandler {
	return func(ctx context.Context, args []byte) (any, error) {
		var params struct {
			Document string `json:"document"`
			Page     int    `json:"page"`
		}
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, fmt.Errorf("invalid read_page arguments: %w", err)
		}
		pages, err := documents.Pages(ctx, params.Document)
		if err != nil {
			return nil, err
		}
		if params.Page < 1 || params.Page > len(pages) {
			return nil, fmt.Errorf("page %d out of range, document has %d pages", params.Page, len(pages))
		}
		text := pages[params.Page-1].Text
		const maxToolChars = 4000
		if len(text) > maxToolChars {
			text = text[:maxToolChars]
		}
		return text, nil
	}
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
