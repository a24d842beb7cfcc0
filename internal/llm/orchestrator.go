package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/glrv/reviewd/internal/logger"
)

// ErrTurnLimitExceeded is returned when the model keeps requesting tool calls
// past the configured turn cap.
var ErrTurnLimitExceeded = errors.New("tool-calling turn limit exceeded")

// ChatCompleter is the narrow slice of the OpenAI client the orchestrator
// depends on.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Orchestrator runs the bounded multi-turn tool-calling loop against the
// review model.
type Orchestrator struct {
	client   ChatCompleter
	model    string
	maxTurns int
	toolbox  *Toolbox
}

// NewOrchestrator creates an orchestrator. maxTurns bounds the number of
// model round trips; values below 1 fall back to a single turn.
func NewOrchestrator(client ChatCompleter, model string, maxTurns int, toolbox *Toolbox) *Orchestrator {
	if maxTurns < 1 {
		maxTurns = 1
	}
	return &Orchestrator{
		client:   client,
		model:    model,
		maxTurns: maxTurns,
		toolbox:  toolbox,
	}
}

// Run drives the conversation until the model answers without requesting a
// tool call, then returns the answer text. Each requested call is dispatched
// through the toolbox and its result appended to the transcript tagged with
// the originating call id. A tool failure is reported back to the model as
// the call result rather than aborting the loop, so the model can route
// around a missing file or a bad argument.
func (o *Orchestrator) Run(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	for turn := 0; turn < o.maxTurns; turn++ {
		resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:      o.model,
			Messages:   messages,
			Tools:      o.toolbox.Definitions(),
			ToolChoice: "auto",
		})
		if err != nil {
			return "", fmt.Errorf("chat completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("chat completion returned no choices")
		}

		msg := resp.Choices[0].Message
		messages = append(messages, msg)

		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		for _, call := range msg.ToolCalls {
			logger.Debugf("dispatching tool call %s (%s)", call.Function.Name, call.ID)
			content, err := o.toolbox.Dispatch(ctx, call.Function.Name, []byte(call.Function.Arguments))
			if err != nil {
				logger.Warnf("tool call %s failed: %v", call.Function.Name, err)
				content = fmt.Sprintf(`{"error":%q}`, err.Error())
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    content,
			})
		}
	}

	return "", ErrTurnLimitExceeded
}
