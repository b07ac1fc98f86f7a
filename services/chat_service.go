package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"pdf-rag-chatbot/internal/ai"
	"pdf-rag-chatbot/internal/logger"
	"pdf-rag-chatbot/internal/telemetry"
	"pdf-rag-chatbot/models"
	"pdf-rag-chatbot/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// NotReadyMessage is the answer given when a session has no processed document.
const NotReadyMessage = "I need a processed PDF to answer questions. Please upload one first."

// UploadResult summarises a processed upload.
type UploadResult struct {
	SessionID  string
	Filename   string
	ChunkCount int
	Reused     bool
}

// ChatService owns the upload and question flows for keyed sessions.
type ChatService struct {
	extractor   *PDFExtractor
	chunker     *Chunker
	embedder    ai.Embedder
	retriever   *Retriever
	answers     *AnswerGenerator
	store       SessionStore
	transcripts TranscriptStore
	metrics     *telemetry.Metrics
	now         func() time.Time

	mu       sync.Mutex
	inflight map[string]int
}

// ChatServiceDeps groups the collaborators of a ChatService.
type ChatServiceDeps struct {
	Extractor   *PDFExtractor
	Chunker     *Chunker
	Embedder    ai.Embedder
	Completer   ai.Completer
	Store       SessionStore
	Transcripts TranscriptStore
	Metrics     *telemetry.Metrics
	TopK        int
	Temperature float64
}

func NewChatService(deps ChatServiceDeps) *ChatService {
	if deps.Extractor == nil {
		deps.Extractor = NewPDFExtractor(0)
	}
	if deps.Chunker == nil {
		deps.Chunker = NewChunker(DefaultChunkSize, DefaultChunkOverlap)
	}
	if deps.Transcripts == nil {
		deps.Transcripts = NopTranscriptStore{}
	}
	return &ChatService{
		extractor:   deps.Extractor,
		chunker:     deps.Chunker,
		embedder:    deps.Embedder,
		retriever:   NewRetriever(deps.Embedder, deps.TopK),
		answers:     NewAnswerGenerator(deps.Completer, deps.Temperature),
		store:       deps.Store,
		transcripts: deps.Transcripts,
		metrics:     deps.Metrics,
		now:         time.Now,
		inflight:    make(map[string]int),
	}
}

// ValidateFilename accepts non-empty names ending in .pdf (any case).
func ValidateFilename(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: no file selected", ErrInvalidInput)
	}
	if len(filename) > 255 {
		return fmt.Errorf("%w: filename too long (max 255 characters)", ErrInvalidInput)
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return fmt.Errorf("%w: only PDF files (.pdf extension) are allowed", ErrInvalidInput)
	}
	return nil
}

// Upload processes a PDF into a new snapshot for sessionID, generating an ID
// when none is given. The previous snapshot stays in place unless processing
// succeeds.
func (s *ChatService) Upload(ctx context.Context, sessionID, filename string, r io.Reader) (*UploadResult, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: no file part", ErrInvalidInput)
	}
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}

	s.begin(sessionID)
	defer s.end(sessionID)

	ctx, span := otel.Tracer("chat-service").Start(ctx, "pdf.process")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID), attribute.String("pdf.filename", filename))

	start := time.Now()
	status := "error"
	chunkCount := 0
	defer func() {
		s.metrics.RecordPDFProcessing(time.Since(start).Seconds(), chunkCount, status)
	}()

	content, err := s.extractor.ReadAll(r)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	fileHash := utils.ContentHash(content)

	if prev, err := s.store.Get(ctx, sessionID); err == nil && prev.FileHash == fileHash && prev.Index != nil {
		snapshot := prev
		if prev.Filename != filename {
			snapshot = &Session{
				ID:        prev.ID,
				Filename:  filename,
				Chunks:    prev.Chunks,
				Index:     prev.Index,
				FileHash:  prev.FileHash,
				CreatedAt: s.now(),
			}
			if err := s.store.Save(ctx, snapshot); err != nil {
				return nil, fmt.Errorf("save session: %w", err)
			}
		}
		status = "duplicate"
		logger.InfoContext(ctx, "Duplicate upload reused existing index", "session_id", sessionID, "chunks", len(prev.Chunks))
		return &UploadResult{SessionID: sessionID, Filename: filename, ChunkCount: len(prev.Chunks), Reused: true}, nil
	}

	extracted, err := s.extractor.Extract(ctx, content)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	chunks := s.chunker.Split(extracted.Text)
	if len(chunks) == 0 {
		err := fmt.Errorf("%w: no extractable text", ErrExtraction)
		span.RecordError(err)
		return nil, err
	}

	vectors, err := s.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	index, err := NewVectorIndex(vectors)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	snapshot := &Session{
		ID:        sessionID,
		Filename:  filename,
		Chunks:    chunks,
		Index:     index,
		FileHash:  fileHash,
		CreatedAt: s.now(),
	}
	if err := s.store.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	status = "success"
	chunkCount = len(chunks)
	span.SetAttributes(attribute.Int("pdf.pages", extracted.Pages), attribute.Int("pdf.chunks", len(chunks)))
	logger.InfoContext(ctx, "PDF processed",
		"session_id", sessionID,
		"filename", filename,
		"pages", extracted.Pages,
		"words", extracted.WordCount,
		"chunks", len(chunks),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &UploadResult{SessionID: sessionID, Filename: filename, ChunkCount: len(chunks)}, nil
}

// Ask answers message from the session's document. Sessions without a
// document get NotReadyMessage and no provider is called. Completion failures
// are folded into the answer text; only retrieval failures return an error.
func (s *ChatService) Ask(ctx context.Context, sessionID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: no question provided", ErrInvalidInput)
	}
	if sessionID == "" {
		return NotReadyMessage, nil
	}
	if err := ValidateSessionID(sessionID); err != nil {
		return "", err
	}

	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return NotReadyMessage, nil
		}
		return "", err
	}

	contextText, err := s.retriever.Retrieve(ctx, message, session.Chunks, session.Index)
	if err != nil {
		if errors.Is(err, ErrNotReady) {
			return NotReadyMessage, nil
		}
		return "", err
	}

	answer := s.answers.Generate(ctx, message, contextText)

	now := s.now()
	requestID := logger.RequestID(ctx)
	if err := s.transcripts.Append(ctx,
		models.Message{SessionID: sessionID, Role: models.RoleUser, Content: message, Filename: session.Filename, RequestID: requestID, Timestamp: now},
		models.Message{SessionID: sessionID, Role: models.RoleAssistant, Content: answer, Filename: session.Filename, RequestID: requestID, Timestamp: now.Add(time.Millisecond)},
	); err != nil {
		logger.WarnContext(ctx, "failed to record transcript", "session_id", sessionID, "error", err)
	}

	return answer, nil
}

// State reports the lifecycle state of a session and its current snapshot, if any.
func (s *ChatService) State(ctx context.Context, sessionID string) (SessionState, *Session, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return StateEmpty, nil, err
	}
	session, err := s.store.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return StateEmpty, nil, err
	}
	if s.processing(sessionID) {
		return StateProcessing, session, nil
	}
	if session == nil {
		return StateEmpty, nil, nil
	}
	return StateReady, session, nil
}

// Reset drops the session snapshot and its transcript.
func (s *ChatService) Reset(ctx context.Context, sessionID string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	if err := s.transcripts.DeleteSession(ctx, sessionID); err != nil {
		logger.WarnContext(ctx, "failed to delete transcript", "session_id", sessionID, "error", err)
	}
	return nil
}

// Messages lists the transcript of a session, oldest first.
func (s *ChatService) Messages(ctx context.Context, sessionID string, limit int64) ([]models.Message, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	return s.transcripts.List(ctx, sessionID, limit)
}

func (s *ChatService) begin(id string) {
	s.mu.Lock()
	s.inflight[id]++
	s.mu.Unlock()
}

func (s *ChatService) end(id string) {
	s.mu.Lock()
	if s.inflight[id] <= 1 {
		delete(s.inflight, id)
	} else {
		s.inflight[id]--
	}
	s.mu.Unlock()
}

func (s *ChatService) processing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight[id] > 0
}
