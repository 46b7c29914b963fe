package llm

import (
	"context"
	"fmt"

	"github.com/Morwran/yagpt"
)

// yandexResult is the part of a YandexGPT reply the client uses.
type yandexResult struct {
	alternatives []string
	inputTokens  int
	outputTokens int
	all          int
}

type yandexCompleteFunc func(ctx context.Context, msgs []yagpt.Message) (yandexResult, error)

// YandexClient talks to YandexGPT Lite with an IAM token minted at startup.
type YandexClient struct {
	complete yandexCompleteFunc
	model    string
}

func NewYandex(oauthToken, folderID string) (*YandexClient, error) {
	token, err := exchangeIAMToken(oauthToken)
	if err != nil {
		return nil, err
	}
	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("yandex folder %q: %w", folderID, err)
	}
	return &YandexClient{complete: yagptCompleter(ya, token), model: yagpt.YaModelLite}, nil
}

// exchangeIAMToken trades the long-lived OAuth token for an IAM token.
func exchangeIAMToken(oauthToken string) (string, error) {
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return "", fmt.Errorf("yandex iam client: %w", err)
	}
	resp, err := iam.Create()
	if err != nil {
		return "", fmt.Errorf("yandex iam token: %w", err)
	}
	return resp.IamToken, nil
}

func yagptCompleter(ya yagpt.YaGPTFace, iamToken string) yandexCompleteFunc {
	return func(ctx context.Context, msgs []yagpt.Message) (yandexResult, error) {
		resp, err := ya.CompletionWithCtx(ctx, iamToken, msgs)
		if err != nil || resp == nil {
			return yandexResult{}, err
		}
		res := yandexResult{
			inputTokens:  int(resp.Usage.InputTextTokens),
			outputTokens: int(resp.Usage.CompletionTokens),
			all:          int(resp.Usage.TotalTokens),
		}
		for _, alt := range resp.Alternatives {
			res.alternatives = append(res.alternatives, alt.Message.Content)
		}
		return res, nil
	}
}

func (c *YandexClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	msgs := make([]yagpt.Message, len(messages))
	for i, m := range messages {
		msgs[i] = yagpt.Message{Role: m.Role, Content: m.Content}
	}

	res, err := c.complete(ctx, msgs)
	if err != nil {
		return Response{}, fmt.Errorf("yandex completion: %w", err)
	}
	if len(res.alternatives) == 0 {
		return Response{}, ErrEmptyCompletion
	}
	return Response{
		Content:          res.alternatives[0],
		Model:            c.model,
		PromptTokens:     res.inputTokens,
		CompletionTokens: res.outputTokens,
		TotalTokens:      res.all,
	}, nil
}
