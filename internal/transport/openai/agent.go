// Package openai is the voice agent: a tool-calling loop against an
// OpenAI-compatible chat API (e.g. Groq), plus speech-to-text and
// text-to-speech for full voice turns.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/atricence/voxdata/internal/domain"
	queryuc "github.com/atricence/voxdata/internal/usecase/query"
	"github.com/atricence/voxdata/internal/usecase/tools"
	"github.com/atricence/voxdata/internal/usecase/voice"
)

const systemPrompt = "You are a voice assistant over business datasets. " +
	"Use the provided tools to look data up; never invent values. " +
	"Each tool result includes a voice_summary field written for speech. " +
	"Prefer it when answering, and keep answers short and speakable."

// Agent answers questions by calling the query pipeline through
// model-driven tool calls.
type Agent struct {
	client        *openai.Client
	model         string
	sttModel      string
	ttsModel      string
	ttsVoice      string
	maxToolRounds int
	queries       *queryuc.Service
	logger        *zap.Logger
}

// Config holds the language-model provider settings.
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	STTModel      string
	TTSModel      string
	TTSVoice      string
	MaxToolRounds int
	Logger        *zap.Logger
}

// NewAgent creates a voice agent against an OpenAI-compatible provider.
func NewAgent(cfg *Config, queries *queryuc.Service) *Agent {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	rounds := cfg.MaxToolRounds
	if rounds <= 0 {
		rounds = 4
	}

	return &Agent{
		client:        openai.NewClientWithConfig(clientCfg),
		model:         cfg.Model,
		sttModel:      cfg.STTModel,
		ttsModel:      cfg.TTSModel,
		ttsVoice:      cfg.TTSVoice,
		maxToolRounds: rounds,
		queries:       queries,
		logger:        cfg.Logger,
	}
}

// Ask runs the tool-calling loop for one question and returns the final
// spoken-style answer. The loop is bounded; if the model is still asking
// for tools after the last round, the round's summary is the answer.
func (a *Agent) Ask(ctx context.Context, question string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: question},
	}
	toolDefs := agentTools(a.queries)

	var lastSummary string
	for round := 0; round < a.maxToolRounds; round++ {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    a.model,
			Messages: messages,
			Tools:    toolDefs,
		})
		if err != nil {
			return "", parseAPIError(err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("empty completion response: %w", domain.ErrSourceUnavailable)
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			result, summary := a.executeTool(ctx, call.Function.Name, call.Function.Arguments)
			if summary != "" {
				lastSummary = summary
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	if lastSummary != "" {
		return lastSummary, nil
	}
	return voice.Apology(), nil
}

// Transcribe converts spoken audio to text.
func (a *Agent) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    a.sttModel,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		return "", parseAPIError(err)
	}
	return resp.Text, nil
}

// Speak synthesizes the answer as audio.
func (a *Agent) Speak(ctx context.Context, text string) ([]byte, error) {
	resp, err := a.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(a.ttsModel),
		Input: text,
		Voice: openai.SpeechVoice(a.ttsVoice),
	})
	if err != nil {
		return nil, parseAPIError(err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	return audio, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (a *Agent) HealthCheck(ctx context.Context) error {
	if _, err := a.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// executeTool runs one tool call against the pipeline. It always returns
// a JSON result for the model; on failure the result carries the spoken
// apology so the model has something sayable. The second return is the
// envelope's voice summary when the call produced one.
func (a *Agent) executeTool(ctx context.Context, name, rawArgs string) (string, string) {
	var args map[string]any
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return toolFailure(fmt.Errorf("parse arguments: %w", err))
		}
	}

	out, summary, err := a.dispatch(ctx, name, args)
	if err != nil {
		a.logger.Warn("tool call failed", zap.String("tool", name), zap.Error(err))
		return toolFailure(err)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return toolFailure(err)
	}
	return string(data), summary
}

func (a *Agent) dispatch(ctx context.Context, name string, args map[string]any) (any, string, error) {
	for _, desc := range a.queries.Descriptors() {
		ds := desc.Dataset()
		switch name {
		case "query_" + ds:
			spec, err := tools.SpecFromArgs(desc, args)
			if err != nil {
				return nil, "", err
			}
			env, err := a.queries.Query(ctx, spec)
			if err != nil {
				return nil, "", err
			}
			return env, env.VoiceSummary, nil

		case "search_" + ds:
			spec, err := tools.SpecFromArgs(desc, args)
			if err != nil {
				return nil, "", err
			}
			env, err := a.queries.Query(ctx, spec)
			if err != nil {
				return nil, "", err
			}
			return env, env.VoiceSummary, nil

		case "get_" + ds + "_record":
			id, _ := args["id"].(string)
			rec, err := a.queries.GetByID(ctx, ds, id)
			if err != nil {
				return nil, "", err
			}
			return rec, "", nil

		case "get_" + ds + "_summary":
			metric, _ := args["metric"].(string)
			days := 0
			if d, ok := args["days"].(float64); ok {
				days = int(d)
			}
			env, err := a.queries.Summary(ctx, ds, metric, days)
			if err != nil {
				return nil, "", err
			}
			return env, env.VoiceSummary, nil
		}
	}
	return nil, "", fmt.Errorf("%w: unknown tool %q", domain.ErrInvalidQuery, name)
}

// toolFailure renders an error as a tool result the model can speak.
func toolFailure(err error) (string, string) {
	apology := voice.Apology()
	data, _ := json.Marshal(map[string]string{
		"error":         err.Error(),
		"voice_summary": apology,
	})
	return string(data), apology
}

// agentTools converts the dataset tool definitions into the chat API's
// tool format.
func agentTools(queries *queryuc.Service) []openai.Tool {
	defs := tools.Definitions(queries.Descriptors(), queries.SupportsSummary)
	out := make([]openai.Tool, len(defs))
	for i, d := range defs {
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		}
	}
	return out
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrSourceUnavailable for correct 503 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrSourceUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := strings.TrimSpace(string(reqErr.Body))
		return fmt.Errorf("model API error %d: %s: %w", reqErr.HTTPStatusCode, body, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("model API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("model request failed: %w", wrap)
}
