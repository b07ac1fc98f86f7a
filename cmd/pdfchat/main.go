package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pdfchat",
	Short: "Ask questions about a PDF from the terminal",
	Long: `pdfchat indexes a PDF locally and answers questions about it using the
same retrieval pipeline and LLM provider as the HTTP service.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
