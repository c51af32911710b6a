package chat

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func newTopKUsecase(llm *fakeLLM) *Usecase {
	factory := newTestFactory(&fakeIndex{exists: true}, nil)
	return NewUsecase(factory, llm, testRetrievalConfig(), zap.NewNop())
}

func TestDetermineTopK(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
		want int
	}{
		{
			name: "simple query",
			llm:  &fakeLLM{jsonAnswer: `{"topk": 3}`},
			want: 3,
		},
		{
			name: "complex query",
			llm:  &fakeLLM{jsonAnswer: `{"topk": 30}`},
			want: 30,
		},
		{
			name: "malformed json falls back to default",
			llm:  &fakeLLM{jsonAnswer: `thirty sounds right`},
			want: 3,
		},
		{
			name: "out of range value falls back to default",
			llm:  &fakeLLM{jsonAnswer: `{"topk": 7}`},
			want: 3,
		},
		{
			name: "advisor call failure falls back to default",
			llm:  &fakeLLM{jsonErr: errors.New("rate limited")},
			want: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTopKUsecase(tt.llm)
			got := uc.determineTopK(context.Background(), "some query")
			if got != tt.want {
				t.Errorf("determineTopK() = %d, want %d", got, tt.want)
			}
		})
	}
}
