package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/internal/customHttpClient"
	"github.com/proview/proview-api/internal/domain/coachModel"
	"github.com/proview/proview-api/internal/rag/llm"
	"github.com/proview/proview-api/pkg/logger_i"
)

// Groq serves llama models behind the OpenAI chat-completions protocol, so
// the stock client pointed at their base URL is all this takes.
type llmClient struct {
	client    openai.Client
	modelName string
}

var logger *logger_i.Logger
var groqClient *llmClient
var once sync.Once

func GetGroqClient(apikey string, modelName string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_groq")
		if apikey == "" {
			logger.Error("Missing Groq API key")
			return
		}
		groqClient = &llmClient{
			client: openai.NewClient(
				option.WithAPIKey(apikey),
				option.WithBaseURL(config.GroqBaseURL),
				option.WithHTTPClient(customHttpClient.Pooled()),
			),
			modelName: modelName,
		}
		logger.Info("Groq client created", "model", modelName)
	})

	if groqClient == nil {
		return nil
	}
	return groqClient
}

const systemPrompt = `You are ProView AI Coach, an expert interview preparation assistant.

Analyze the user's inputs to determine the job role, seniority level, and interview type. Simulate realistic interviews using the context provided (resume, job description) to personalize questions. When the user answers a question, evaluate it: set is_correct, provide a score in "X/10" format, give constructive feedback in refined_explanation, and suggest 2-3 improved responses. Start easier and increase difficulty with performance. If no context is available, ask general questions for the stated role. Be professional but encouraging.

Context Available:
%s

Respond with a single JSON object with the fields:
- interviewer_chat: your main conversational response (REQUIRED, never empty)
- is_correct: true/false, only when evaluating an answer, otherwise null
- score: "X/10" with X between 0 and 10, only when evaluating, otherwise null
- refined_explanation: detailed feedback, only when evaluating, otherwise null
- suggested_replies: 2-3 helpful suggestions for the user (may be empty)

IMPORTANT: interviewer_chat must ALWAYS contain a meaningful response.`

func (c *llmClient) Generate(ctx context.Context, userInput string, contextBlock string, history []coachModel.Turn) (string, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(fmt.Sprintf(systemPrompt, contextBlock)))

	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		switch turn.Role {
		case coachModel.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(content))
		case coachModel.RoleUser:
			messages = append(messages, openai.UserMessage(content))
		default:
			log.Warn("skipping turn with unknown role", "role", turn.Role)
		}
	}
	messages = append(messages, openai.UserMessage(userInput))

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    messages,
		Temperature: openai.Float(config.ModelTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		log.Error("Groq completion failed", "error", err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return completion.Choices[0].Message.Content, nil
}
