package ai

import "context"

// DefaultMaxTokens caps the length of a single generated completion.
// Both providers send it as the max_tokens field of the request.
const DefaultMaxTokens = 500

// TextGenerator generates text from a system prompt and user prompt.
// Both LLM providers (OpenAI, Anthropic) implement this interface.
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
