/*
Copyright © 2025 PhilipWidoff
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PhilipWidoff/SmartPDF/config"
	"github.com/PhilipWidoff/SmartPDF/database"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
// Running it bare resets the vector store schema; the server lives under the
// start subcommand.
var rootCmd = &cobra.Command{
	Use:   "smartpdf",
	Short: "PDF question-answering backend",
	Long: `SmartPDF is a backend that answers natural-language questions about
PDF documents. Documents are indexed lazily into a Weaviate vector store on
first query; answers come back with page citations.

Run without a subcommand to recreate the DocumentChunk schema in Weaviate.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		weaviateDb, err := database.NewWeaviateStore(cfg.WeaviateStoreConfig)
		if err != nil {
			log.Fatalf("Failed to connect to Weaviate database: %v", err)
		}
		if err := weaviateDb.ReInit(); err != nil {
			log.Fatalf("Failed to reset DocumentChunk schema: %v", err)
		}
		fmt.Println("DocumentChunk schema recreated")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file (default is $HOME/.smartpdf.yaml)")
	rootCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".smartpdf" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".smartpdf")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
