package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pdf-rag-chatbot/internal/testutil"
	"pdf-rag-chatbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	svc         *ChatService
	store       *countingStore
	embedder    *countingEmbedder
	completer   *echoCompleter
	transcripts *memoryTranscripts
}

type memoryTranscripts struct {
	msgs []models.Message
	err  error
}

func (m *memoryTranscripts) Append(ctx context.Context, msgs ...models.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *memoryTranscripts) List(ctx context.Context, sessionID string, limit int64) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range m.msgs {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memoryTranscripts) DeleteSession(ctx context.Context, sessionID string) error {
	kept := m.msgs[:0]
	for _, msg := range m.msgs {
		if msg.SessionID != sessionID {
			kept = append(kept, msg)
		}
	}
	m.msgs = kept
	return nil
}

func newChatFixture(chunkSize int) *chatFixture {
	f := &chatFixture{
		store:       &countingStore{MemorySessionStore: NewMemorySessionStore(time.Hour)},
		embedder:    newCountingEmbedder(),
		completer:   &echoCompleter{},
		transcripts: &memoryTranscripts{},
	}
	f.svc = NewChatService(ChatServiceDeps{
		Extractor:   NewPDFExtractor(1 << 20),
		Chunker:     NewChunker(chunkSize, 0),
		Embedder:    f.embedder,
		Completer:   f.completer,
		Store:       f.store,
		Transcripts: f.transcripts,
		TopK:        5,
		Temperature: 0.1,
	})
	return f
}

func TestChatService_AskWithoutDocument(t *testing.T) {
	f := newChatFixture(500)
	ctx := context.Background()

	for _, id := range []string{"", "unknown"} {
		got, err := f.svc.Ask(ctx, id, "What is this about?")
		require.NoError(t, err)
		assert.Equal(t, NotReadyMessage, got)
	}

	assert.Equal(t, int32(0), f.embedder.total())
	assert.Equal(t, int32(0), f.completer.calls.Load())
	assert.Empty(t, f.transcripts.msgs)
}

func TestChatService_AskEmptyQuestion(t *testing.T) {
	f := newChatFixture(500)
	_, err := f.svc.Ask(context.Background(), "s", "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, int32(0), f.store.gets.Load())
}

func TestChatService_UploadThenAskRoundTrip(t *testing.T) {
	f := newChatFixture(4)
	ctx := context.Background()
	pdf := testutil.BuildPDF("Refunds are processed within five business days")

	res, err := f.svc.Upload(ctx, "s1", "policy.pdf", bytes.NewReader(pdf))
	require.NoError(t, err)
	assert.Equal(t, "s1", res.SessionID)
	assert.Equal(t, "policy.pdf", res.Filename)
	assert.Equal(t, 2, res.ChunkCount)
	assert.False(t, res.Reused)

	state, snap, err := f.svc.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StateReady, state)
	require.NotNil(t, snap)
	assert.Equal(t, snap.Index.Len(), len(snap.Chunks))

	answer, err := f.svc.Ask(ctx, "s1", "Refunds are processed within")
	require.NoError(t, err)
	assert.Contains(t, answer, "Refunds are processed within")
	assert.Contains(t, answer, "five business days")
	assert.True(t, strings.HasPrefix(answer, "Answer the question"), "echoed answer is trimmed")

	req := f.completer.last.Load()
	require.NotNil(t, req)

	msgs, err := f.svc.Messages(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleUser, msgs[0].Role)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "policy.pdf", msgs[1].Filename)
}

func TestChatService_GeneratesSessionID(t *testing.T) {
	f := newChatFixture(500)
	res, err := f.svc.Upload(context.Background(), "", "a.PDF", bytes.NewReader(testutil.BuildPDF("some words here")))
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
}

func TestChatService_RejectsNonPDFAndKeepsState(t *testing.T) {
	f := newChatFixture(500)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "s1", "first.pdf", bytes.NewReader(testutil.BuildPDF("original document text")))
	require.NoError(t, err)
	_, before, err := f.svc.State(ctx, "s1")
	require.NoError(t, err)
	calls := f.embedder.total()

	tests := []struct {
		name     string
		filename string
		body     []byte
		wantErr  error
	}{
		{"wrong extension", "notes.txt", []byte("hello"), ErrInvalidInput},
		{"missing name", "", []byte("hello"), ErrInvalidInput},
		{"not a pdf container", "fake.pdf", []byte("plain text pretending"), ErrExtraction},
		{"no text", "blank.pdf", testutil.BuildPDF(""), ErrExtraction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Upload(ctx, "s1", tt.filename, bytes.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.wantErr)

			state, after, err := f.svc.State(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, StateReady, state)
			assert.Same(t, before, after)
		})
	}
	assert.Equal(t, calls, f.embedder.total())

	_, err = f.svc.Upload(ctx, "s1", "x.pdf", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestChatService_EmbeddingFailureKeepsPrevious(t *testing.T) {
	f := newChatFixture(500)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "s1", "a.pdf", bytes.NewReader(testutil.BuildPDF("alpha document")))
	require.NoError(t, err)
	_, before, _ := f.svc.State(ctx, "s1")

	f.embedder.err = errors.New("embedding backend down")
	_, err = f.svc.Upload(ctx, "s1", "b.pdf", bytes.NewReader(testutil.BuildPDF("beta document")))
	require.Error(t, err)

	_, after, _ := f.svc.State(ctx, "s1")
	assert.Same(t, before, after)
}

func TestChatService_DuplicateUploadReusesIndex(t *testing.T) {
	f := newChatFixture(500)
	ctx := context.Background()
	pdf := testutil.BuildPDF("the same document twice")

	_, err := f.svc.Upload(ctx, "s1", "a.pdf", bytes.NewReader(pdf))
	require.NoError(t, err)
	batches := f.embedder.batchCalls.Load()
	_, first, _ := f.svc.State(ctx, "s1")

	res, err := f.svc.Upload(ctx, "s1", "renamed.pdf", bytes.NewReader(pdf))
	require.NoError(t, err)
	assert.True(t, res.Reused)
	assert.Equal(t, batches, f.embedder.batchCalls.Load())

	_, second, _ := f.svc.State(ctx, "s1")
	assert.Equal(t, "renamed.pdf", second.Filename)
	assert.Same(t, first.Index, second.Index)
}

func TestChatService_ReplacementSwapsWholeSnapshot(t *testing.T) {
	f := newChatFixture(500)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "s1", "a.pdf", bytes.NewReader(testutil.BuildPDF("apples grow on trees")))
	require.NoError(t, err)
	_, err = f.svc.Upload(ctx, "s1", "b.pdf", bytes.NewReader(testutil.BuildPDF("bananas are yellow")))
	require.NoError(t, err)

	answer, err := f.svc.Ask(ctx, "s1", "what colour are bananas?")
	require.NoError(t, err)
	assert.Contains(t, answer, "bananas are yellow")
	assert.NotContains(t, answer, "apples")
}

func TestChatService_CompletionFailureIsAnswer(t *testing.T) {
	f := newChatFixture(500)
	failing := &failingCompleter{}
	f.svc.answers = NewAnswerGenerator(failing, 0.1)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "s1", "a.pdf", bytes.NewReader(testutil.BuildPDF("some context text")))
	require.NoError(t, err)

	answer, err := f.svc.Ask(ctx, "s1", "question?")
	require.NoError(t, err)
	assert.Equal(t, "An error occurred with the AI model: 401 invalid api key", answer)
	assert.Equal(t, int32(1), failing.calls.Load())
}

func TestChatService_RetrievalFailureIsError(t *testing.T) {
	f := newChatFixture(500)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "s1", "a.pdf", bytes.NewReader(testutil.BuildPDF("some context text")))
	require.NoError(t, err)

	f.embedder.err = errors.New("embedding backend down")
	_, err = f.svc.Ask(ctx, "s1", "question?")
	require.Error(t, err)
	assert.Equal(t, int32(0), f.completer.calls.Load())
}

func TestChatService_TranscriptFailureDoesNotFailAsk(t *testing.T) {
	f := newChatFixture(500)
	ctx := context.Background()
	_, err := f.svc.Upload(ctx, "s1", "a.pdf", bytes.NewReader(testutil.BuildPDF("some context text")))
	require.NoError(t, err)

	f.transcripts.err = errors.New("mongo down")
	answer, err := f.svc.Ask(ctx, "s1", "question?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
}

func TestChatService_StateAndReset(t *testing.T) {
	f := newChatFixture(500)
	ctx := context.Background()

	state, snap, err := f.svc.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, state)
	assert.Nil(t, snap)

	f.svc.begin("s1")
	state, _, err = f.svc.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StateProcessing, state)
	f.svc.end("s1")

	_, err = f.svc.Upload(ctx, "s1", "a.pdf", bytes.NewReader(testutil.BuildPDF("some context text")))
	require.NoError(t, err)
	_, err = f.svc.Ask(ctx, "s1", "question?")
	require.NoError(t, err)

	require.NoError(t, f.svc.Reset(ctx, "s1"))
	state, _, err = f.svc.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, state)
	assert.Empty(t, f.transcripts.msgs)

	assert.ErrorIs(t, f.svc.Reset(ctx, "s1"), ErrSessionNotFound)

	got, err := f.svc.Ask(ctx, "s1", "question?")
	require.NoError(t, err)
	assert.Equal(t, NotReadyMessage, got)
}

func TestValidateFilename(t *testing.T) {
	assert.NoError(t, ValidateFilename("report.pdf"))
	assert.NoError(t, ValidateFilename("REPORT.PDF"))
	assert.ErrorIs(t, ValidateFilename("report.pdf.exe"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateFilename(strings.Repeat("a", 300)+".pdf"), ErrInvalidInput)
}

func TestChatService_ZeroChunksRejected(t *testing.T) {
	f := newChatFixture(500)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "blank", "scan.pdf", bytes.NewReader(testutil.BuildPDF("", "")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, err.Error(), "no extractable text")
	assert.Zero(t, f.embedder.total())

	state, _, err := f.svc.State(ctx, "blank")
	require.NoError(t, err)
	assert.Equal(t, StateEmpty, state)
}

func TestChatService_RejectsInvalidSessionID(t *testing.T) {
	f := newChatFixture(500)
	ctx := context.Background()
	long := strings.Repeat("x", MaxSessionIDLength+1)

	_, err := f.svc.Upload(ctx, long, "a.pdf", bytes.NewReader(testutil.BuildPDF("some words")))
	assert.ErrorIs(t, err, ErrInvalidSessionID)
	assert.Zero(t, f.embedder.total())
	assert.Zero(t, f.store.Len())

	_, err = f.svc.Ask(ctx, "bad id", "question?")
	assert.ErrorIs(t, err, ErrInvalidSessionID)

	_, _, err = f.svc.State(ctx, long)
	assert.ErrorIs(t, err, ErrInvalidSessionID)
	assert.ErrorIs(t, f.svc.Reset(ctx, long), ErrInvalidSessionID)
	_, err = f.svc.Messages(ctx, long, 10)
	assert.ErrorIs(t, err, ErrInvalidSessionID)
}
