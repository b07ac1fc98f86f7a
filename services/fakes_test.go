package services

import (
	"context"
	"errors"
	"sync/atomic"

	"pdf-rag-chatbot/internal/ai"

	"github.com/stretchr/testify/mock"
)

// countingEmbedder delegates to the hashing embedder and counts calls.
type countingEmbedder struct {
	inner      *ai.HashingEmbedder
	embedCalls atomic.Int32
	batchCalls atomic.Int32
	err        error
}

func newCountingEmbedder() *countingEmbedder {
	return &countingEmbedder{inner: ai.NewHashingEmbedder(128)}
}

func (c *countingEmbedder) Name() string { return "counting" }

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.embedCalls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.batchCalls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.inner.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) total() int32 { return c.embedCalls.Load() + c.batchCalls.Load() }

// echoCompleter answers with the prompt it was given.
type echoCompleter struct {
	calls atomic.Int32
	last  atomic.Value
}

func (e *echoCompleter) Model() string { return "echo" }

func (e *echoCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.Completion, error) {
	e.calls.Add(1)
	e.last.Store(req)
	return &ai.Completion{Text: "\n" + req.Prompt + "\n", Model: "echo"}, nil
}

type failingCompleter struct {
	calls atomic.Int32
}

func (f *failingCompleter) Model() string { return "failing" }

func (f *failingCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.Completion, error) {
	f.calls.Add(1)
	return nil, errors.New("401 invalid api key")
}

type MockCompleter struct{ mock.Mock }

func (m *MockCompleter) Model() string { return "mock" }

func (m *MockCompleter) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.Completion), args.Error(1)
}

// countingStore wraps the memory store and counts Get calls.
type countingStore struct {
	*MemorySessionStore
	gets atomic.Int32
}

func (c *countingStore) Get(ctx context.Context, id string) (*Session, error) {
	c.gets.Add(1)
	return c.MemorySessionStore.Get(ctx, id)
}
