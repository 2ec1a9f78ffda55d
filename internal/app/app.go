package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"promptbatch/internal/promptcsv"
	"promptbatch/internal/storage"
	"promptbatch/pkg/ai"
)

// Provider names accepted by the service routes.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
)

// systemInstruction is sent as the system message of every generation
// request, for both providers. It is fixed for the process lifetime and
// not exposed to callers.
const systemInstruction = "You are a helpful assistant. Answer the user's prompt clearly and concisely."

// Config holds runtime configuration for the core application.
type Config struct {
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicModel   string
	DataDir          string

	// Generators replaces the real provider clients when set; used in tests.
	Generators map[string]ai.TextGenerator
}

// App wires the provider clients and artifact storage together.
type App struct {
	generators map[string]ai.TextGenerator
	artifacts  *storage.ArtifactStore
}

// New constructs the application with one client per provider and a
// disk-backed artifact store.
func New(cfg Config) (*App, error) {
	generators := cfg.Generators
	if generators == nil {
		generators = map[string]ai.TextGenerator{
			ProviderOpenAI: ai.NewOpenAIClient(ai.OpenAIConfig{
				APIKey:  cfg.OpenAIAPIKey,
				BaseURL: cfg.OpenAIBaseURL,
				Model:   cfg.OpenAIModel,
			}),
			ProviderClaude: ai.NewAnthropicClient(ai.AnthropicConfig{
				APIKey:  cfg.AnthropicAPIKey,
				BaseURL: cfg.AnthropicBaseURL,
				Model:   cfg.AnthropicModel,
			}),
		}
	}
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	artifacts, err := storage.NewArtifactStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("init artifact store: %w", err)
	}
	return &App{
		generators: generators,
		artifacts:  artifacts,
	}, nil
}

// HasProvider reports whether name maps to a configured provider.
func (a *App) HasProvider(name string) bool {
	_, ok := a.generators[name]
	return ok
}

// Generate produces a completion for a single prompt.
func (a *App) Generate(ctx context.Context, provider, prompt string) (string, error) {
	gen, ok := a.generators[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	text, err := gen.GenerateText(ctx, systemInstruction, prompt)
	if err != nil {
		return "", fmt.Errorf("generate response: %w", err)
	}
	return text, nil
}

// ProcessBatch generates a response for each prompt, strictly in order.
// Failures are isolated per prompt: a failed generation is recorded as an
// error placeholder in that row's response cell and processing continues
// with the next prompt. The batch runs on its own context, so a
// disconnected caller cannot abort it partway through.
func (a *App) ProcessBatch(provider string, prompts []string) ([]promptcsv.Row, error) {
	gen, ok := a.generators[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}
	ctx := context.Background()
	rows := make([]promptcsv.Row, 0, len(prompts))
	for i, prompt := range prompts {
		response, err := gen.GenerateText(ctx, systemInstruction, prompt)
		if err != nil {
			slog.Error("generation failed", "provider", provider, "row", i, "error", err)
			response = fmt.Sprintf("Error generating response: %v", err)
		} else {
			slog.Info("generated response", "provider", provider, "row", i)
		}
		rows = append(rows, promptcsv.Row{Prompt: prompt, Response: response})
	}
	return rows, nil
}

// SaveArtifact renders rows to CSV and writes them to the provider's
// fixed artifact file, replacing the previous batch's output. It returns
// the path of the written file.
func (a *App) SaveArtifact(provider string, rows []promptcsv.Row) (string, error) {
	var buf bytes.Buffer
	if err := promptcsv.Render(&buf, rows); err != nil {
		return "", fmt.Errorf("render output: %w", err)
	}
	path, err := a.artifacts.Save(ArtifactName(provider), buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("save artifact: %w", err)
	}
	return path, nil
}

// ArtifactName returns the fixed artifact filename for a provider. Every
// batch for that provider writes to the same name.
func ArtifactName(provider string) string {
	return "processed_prompts_" + provider + ".csv"
}
