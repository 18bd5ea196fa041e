package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripJSONFences(tt.input))
	}
}

func TestGenerateContentRejectsUnknownPhase(t *testing.T) {
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		t.Fatal("provider must not be called for an unknown phase")
		return "", nil
	}}
	tutor := NewTutorService(fake)

	_, err := tutor.GenerateContent(context.Background(), "feedbackLoop", "anything")
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestGenerateContentStripsFences(t *testing.T) {
	fake := &fakeProvider{generate: func(call int, prompt string) (string, error) {
		return "```json\n{\"overview\":\"intro\"}\n```", nil
	}}
	tutor := NewTutorService(fake)

	content, err := tutor.GenerateContent(context.Background(), PhaseCurriculum, "Generate a curriculum")
	require.NoError(t, err)
	assert.JSONEq(t, `{"overview":"intro"}`, content)
}
