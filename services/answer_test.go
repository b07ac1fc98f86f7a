package services

import (
	"context"
	"errors"
	"testing"

	"pdf-rag-chatbot/internal/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBuildPrompt(t *testing.T) {
	want := "Answer the question using ONLY the context below.\n" +
		"If the answer is not in the context, clearly state that you don't have enough information.\n" +
		"\n" +
		"Context:\n" +
		"CTX\n" +
		"\n" +
		"Question: Q?\n" +
		"Answer:"
	assert.Equal(t, want, BuildPrompt("CTX", "Q?"))
}

func TestAnswerGenerator_TrimsAndSendsRequest(t *testing.T) {
	m := new(MockCompleter)
	m.On("Complete", mock.Anything, ai.CompletionRequest{
		System:      SystemInstruction,
		Prompt:      BuildPrompt("ctx", "q"),
		Temperature: 0.1,
	}).Return(&ai.Completion{Text: "  \n the answer \n"}, nil)

	got := NewAnswerGenerator(m, 0.1).Generate(context.Background(), "q", "ctx")

	assert.Equal(t, "the answer", got)
	m.AssertExpectations(t)
}

func TestAnswerGenerator_FoldsErrors(t *testing.T) {
	m := new(MockCompleter)
	m.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	got := NewAnswerGenerator(m, 0.1).Generate(context.Background(), "q", "ctx")

	assert.Equal(t, "An error occurred with the AI model: connection refused", got)
}

func TestAnswerGenerator_CircuitOpen(t *testing.T) {
	m := new(MockCompleter)
	m.On("Complete", mock.Anything, mock.Anything).Return(nil, ai.ErrCircuitOpen)

	got := NewAnswerGenerator(m, 0.1).Generate(context.Background(), "q", "ctx")

	assert.Contains(t, got, "An error occurred with the AI model: ")
	assert.Contains(t, got, ai.ErrCircuitOpen.Error())
}
