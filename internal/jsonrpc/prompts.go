package jsonrpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/brbranch/mcp-demo-server/internal/service"
)

// promptFunc は引数からプロンプトのメッセージ本文を生成する
type promptFunc func(ctx context.Context, args map[string]string) (string, error)

// promptCatalog は prompts/list で返す定義（表示順）
var promptCatalog = []model.Prompt{
	{
		Name:        "helpful_assistant",
		Description: "A helpful and friendly assistant persona",
		Arguments: []model.PromptArgument{
			{Name: "task", Description: "The task to help with", Required: true},
		},
	},
	{
		Name:        "code_reviewer",
		Description: "Review code and provide constructive feedback",
		Arguments: []model.PromptArgument{
			{Name: "language", Description: "Programming language", Required: true},
			{Name: "code", Description: "Code to review", Required: true},
		},
	},
	{
		Name:        "summarize_notes",
		Description: "Summarize all notes in the system",
		Arguments:   []model.PromptArgument{},
	},
}

func (h *Handler) buildPrompts() map[string]promptFunc {
	return map[string]promptFunc{
		"helpful_assistant": h.promptHelpfulAssistant,
		"code_reviewer":     h.promptCodeReviewer,
		"summarize_notes":   h.promptSummarizeNotes,
	}
}

// argOr は引数が未指定または空文字の場合にdefを返す
func argOr(args map[string]string, name, def string) string {
	if v := args[name]; v != "" {
		return v
	}
	return def
}

// handlePromptsList は prompts/list メソッドを処理
func (h *Handler) handlePromptsList(ctx context.Context, params any) (any, error) {
	return &model.PromptsListResult{Prompts: promptCatalog}, nil
}

// handlePromptsGet は prompts/get メソッドを処理
func (h *Handler) handlePromptsGet(ctx context.Context, params any) (any, error) {
	var p model.PromptsGetParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	fn, ok := h.prompts[p.Name]
	if !ok {
		return nil, service.NewError(service.ErrUnknownPrompt, "unknown prompt: %s", p.Name)
	}

	text, err := fn(ctx, p.Arguments)
	if err != nil {
		return nil, err
	}

	return &model.PromptsGetResult{
		Messages: []model.PromptMessage{
			{Role: "user", Content: model.NewTextContent(text)},
		},
	}, nil
}

func (h *Handler) promptHelpfulAssistant(ctx context.Context, args map[string]string) (string, error) {
	task := argOr(args, "task", "general assistance")
	return "You are a helpful, friendly, and knowledgeable assistant. Please help me with the following task:\n\n" +
		task + "\n\nProvide clear, accurate, and actionable guidance.", nil
}

func (h *Handler) promptCodeReviewer(ctx context.Context, args map[string]string) (string, error) {
	language := argOr(args, "language", "unknown")
	code := argOr(args, "code", "")
	return fmt.Sprintf("Please review the following %s code and provide constructive feedback:\n\n```%s\n%s\n```\n\n"+
		"Consider:\n- Code quality and readability\n- Potential bugs or issues\n- Performance concerns\n- Best practices\n- Suggestions for improvement",
		language, language, code), nil
}

func (h *Handler) promptSummarizeNotes(ctx context.Context, _ map[string]string) (string, error) {
	notes, err := h.noteService.List(ctx)
	if err != nil {
		return "", err
	}
	if len(notes) == 0 {
		return "There are no notes to summarize. Please create some notes first using the create_note tool.", nil
	}

	blocks := make([]string, 0, len(notes))
	for _, n := range notes {
		blocks = append(blocks, fmt.Sprintf("**%s** (ID: %d)\n%s", n.Title, n.ID, n.Content))
	}
	return "Please provide a concise summary of the following notes:\n\n" + strings.Join(blocks, "\n\n---\n\n"), nil
}
