package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// ToolFunc executes one registered tool. It receives only the model-supplied
// arguments; any credential the implementation needs is closed over when the
// toolbox is built, so the model can never name or override it.
type ToolFunc func(ctx context.Context, args json.RawMessage) (interface{}, error)

type tool struct {
	definition openai.Tool
	call       ToolFunc
}

// Toolbox is the fixed registry of functions the model may call. It is
// assembled once at startup and never extended at runtime.
type Toolbox struct {
	tools map[string]tool
	defs  []openai.Tool
}

// NewToolbox creates an empty toolbox
func NewToolbox() *Toolbox {
	return &Toolbox{tools: make(map[string]tool)}
}

// Register adds a tool definition and its implementation to the registry
func (b *Toolbox) Register(def openai.Tool, fn ToolFunc) {
	b.tools[def.Function.Name] = tool{definition: def, call: fn}
	b.defs = append(b.defs, def)
}

// Definitions returns the tool definitions sent with every model turn
func (b *Toolbox) Definitions() []openai.Tool {
	return b.defs
}

// Dispatch resolves a tool by name, invokes it and returns the serialized
// result to feed back into the transcript.
func (b *Toolbox) Dispatch(ctx context.Context, name string, args json.RawMessage) (string, error) {
	t, ok := b.tools[name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	result, err := t.call(ctx, args)
	if err != nil {
		return "", fmt.Errorf("tool %s failed: %w", name, err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to serialize %s result: %w", name, err)
	}
	return string(payload), nil
}
