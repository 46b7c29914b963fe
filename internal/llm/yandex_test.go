package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/Morwran/yagpt"
)

func TestYandexClient_Generate(t *testing.T) {
	var seen []yagpt.Message
	c := &YandexClient{
		model: yagpt.YaModelLite,
		complete: func(ctx context.Context, msgs []yagpt.Message) (yandexResult, error) {
			seen = msgs
			return yandexResult{
				alternatives: []string{"Foam roll your quads.", "ignored"},
				inputTokens:  12,
				outputTokens: 5,
				all:          17,
			}, nil
		},
	}

	resp, err := c.Generate(context.Background(), []Message{
		{Role: RoleSystem, Content: "You are a helpful fitness assistant."},
		{Role: RoleUser, Content: "Sore legs"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "Foam roll your quads." || resp.Model != yagpt.YaModelLite {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.PromptTokens != 12 || resp.CompletionTokens != 5 || resp.TotalTokens != 17 {
		t.Fatalf("unexpected usage: %+v", resp)
	}
	if len(seen) != 2 || seen[0].Role != RoleSystem || seen[1].Role != RoleUser || seen[1].Content != "Sore legs" {
		t.Fatalf("unexpected messages sent: %+v", seen)
	}
}

func TestYandexClient_NoAlternatives(t *testing.T) {
	c := &YandexClient{complete: func(ctx context.Context, msgs []yagpt.Message) (yandexResult, error) {
		return yandexResult{}, nil
	}}
	if _, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}); !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("want ErrEmptyCompletion, got %v", err)
	}
}

func TestYandexClient_CompletionError(t *testing.T) {
	boom := errors.New("quota exceeded")
	c := &YandexClient{complete: func(ctx context.Context, msgs []yagpt.Message) (yandexResult, error) {
		return yandexResult{}, boom
	}}
	if _, err := c.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}); !errors.Is(err, boom) {
		t.Fatalf("want wrapped provider error, got %v", err)
	}
}
