/*
Copyright © 2025 PhilipWidoff
*/
package cmd

import (
	"context"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/PhilipWidoff/SmartPDF/config"
	"github.com/PhilipWidoff/SmartPDF/database"
	"github.com/PhilipWidoff/SmartPDF/service"
	"github.com/PhilipWidoff/SmartPDF/types"
)

// indexDocumentCmd builds the index for a single PDF ahead of time, so the
// first query against it does not pay the build cost.
var indexDocumentCmd = &cobra.Command{
	Use:   "index-document",
	Short: "Build the index for one PDF",
	Long: `Extracts, chunks and indexes a single PDF from the documents
directory into the vector store, and persists its index manifest.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		file, _ := cmd.Flags().GetString("file")
		reinit, _ := cmd.Flags().GetBool("reinit")
		if file == "" {
			log.Fatal("--file is required")
		}

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if reinit {
			if err := weaviateDb.ReInit(); err != nil {
				log.Fatalf("Failed to reinitialize Weaviate database: %v", err)
			}
		}

		pdfService := service.NewPDFService(
			types.DocumentServiceConfig{
				MaxChunkSize: cfg.MaxChunkSize,
				OverlapSize:  cfg.OverlapSize,
			})
		documentStore := service.NewFileDocumentStore(cfg.DocumentsDir, pdfService)
		indexService := service.NewIndexService(cfg.IndexDir, documentStore, pdfService, weaviateDb)

		document := filepath.Base(file)
		manifest, err := indexService.GetOrBuild(context.Background(), document)
		if err != nil {
			log.Fatalf("Failed to index %s: %v", document, err)
		}
		log.Printf("Indexed %s: %d pages, %d chunks", manifest.Document, manifest.Pages, manifest.Chunks)
	},
}

func init() {
	rootCmd.AddCommand(indexDocumentCmd)

	indexDocumentCmd.Flags().StringP("file", "f", "", "PDF in the documents directory to index")
	indexDocumentCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
	indexDocumentCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the database")
}
