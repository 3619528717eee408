/*
Copyright © 2025 PhilipWidoff
*/
package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/PhilipWidoff/SmartPDF/config"
	"github.com/PhilipWidoff/SmartPDF/database"
	"github.com/PhilipWidoff/SmartPDF/service"
	"github.com/PhilipWidoff/SmartPDF/types"
)

// batchIndexCmd represents the batchIndex command
var batchIndexCmd = &cobra.Command{
	Use:   "batch-index",
	Short: "Build indexes for every PDF in the documents directory",
	Long: `Walks the documents directory and builds (or reuses) the index for
every PDF found. Documents whose index is already current are skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		reinit, _ := cmd.Flags().GetBool("reinit")

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

		documents, err := documentStore.List()
		if err != nil {
			log.Fatalf("Failed to list documents: %v", err)
		}
		if len(documents) == 0 {
			log.Println("No documents found")
			return
		}

		for _, document := range documents {
			manifest, err := indexService.GetOrBuild(context.Background(), document)
			if err != nil {
				log.Printf("Failed to index %s: %v", document, err)
				continue
			}
			log.Printf("Indexed %s: %d pages, %d chunks", manifest.Document, manifest.Pages, manifest.Chunks)
		}
	},
}

func init() {
	rootCmd.AddCommand(batchIndexCmd)

	batchIndexCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
	batchIndexCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the database")
}
