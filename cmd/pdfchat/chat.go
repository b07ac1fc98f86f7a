package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pdf-rag-chatbot/internal/ai"
	"pdf-rag-chatbot/internal/config"
	"pdf-rag-chatbot/internal/logger"
	"pdf-rag-chatbot/services"

	"github.com/spf13/cobra"
)

const cliSessionID = "cli"

var chatCmd = &cobra.Command{
	Use:   "chat [file.pdf]",
	Short: "Index a PDF and start a question loop",
	Long: `Loads and indexes the given PDF, then reads questions from stdin until
"exit" is entered.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.InitLoggerWithWriter(cfg, io.Discard)

	ctx := context.Background()
	embedder, err := ai.NewEmbedder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	defer ai.Close(embedder)
	completer, err := ai.NewCompleter(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("init LLM client: %w", err)
	}
	defer ai.Close(completer)

	svc := services.NewChatService(services.ChatServiceDeps{
		Extractor:   services.NewPDFExtractor(cfg.MaxFileSize),
		Chunker:     services.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		Embedder:    embedder,
		Completer:   completer,
		Store:       services.NewMemorySessionStore(0),
		TopK:        cfg.TopK,
		Temperature: cfg.LLMTemperature,
	})

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return err
	}
	defer f.Close()

	if _, err := svc.Upload(ctx, cliSessionID, filepath.Base(path), f); err != nil {
		return fmt.Errorf("index %s: %w", path, err)
	}
	cmd.Println("PDF loaded and indexed.")

	return repl(ctx, svc, cmd.InOrStdin(), cmd.OutOrStdout())
}

// repl answers one question per input line until "exit" (any case) or EOF.
func repl(ctx context.Context, svc *services.ChatService, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nAsk a question (or 'exit'): ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(q, "exit") {
			return nil
		}
		if q == "" {
			continue
		}

		answer, err := svc.Ask(ctx, cliSessionID, q)
		if err != nil {
			fmt.Fprintf(out, "\nError: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "\nAnswer:\n%s\n", answer)
	}
}
