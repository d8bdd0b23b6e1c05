package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/brbranch/mcp-demo-server/internal/service"
	"github.com/invopop/jsonschema"
)

// toolFunc はデコード前の引数を受け取りテキスト結果を返す
type toolFunc func(ctx context.Context, args json.RawMessage) (string, error)

// tool はツール定義と実装の組
type tool struct {
	def model.Tool
	run toolFunc
}

// toolRegistry は登録順を保持したツール一覧
type toolRegistry struct {
	ordered []model.Tool
	byName  map[string]toolFunc
}

func newToolRegistry(tools ...tool) *toolRegistry {
	r := &toolRegistry{byName: make(map[string]toolFunc, len(tools))}
	for _, t := range tools {
		r.ordered = append(r.ordered, t.def)
		r.byName[t.def.Name] = t.run
	}
	return r
}

// newTool は引数構造体Aからスキーマを生成してツールを作る
// 必須引数の有無を確認してからAにデコードし、fnを呼び出す
func newTool[A any](name, description string, fn func(ctx context.Context, args A) (string, error)) tool {
	schema := reflectInputSchema[A]()
	return tool{
		def: model.Tool{
			Name:        name,
			Description: description,
			InputSchema: schema,
		},
		run: func(ctx context.Context, raw json.RawMessage) (string, error) {
			if err := checkRequired(raw, schema.Required); err != nil {
				return "", err
			}
			var args A
			if len(raw) > 0 && string(raw) != "null" {
				if err := json.Unmarshal(raw, &args); err != nil {
					return "", service.NewError(service.ErrInvalidArguments, "invalid arguments for %s: %v", name, err)
				}
			}
			return fn(ctx, args)
		},
	}
}

// reflectInputSchema はinvopop/jsonschemaで構造体からinputSchemaを生成する
// omitemptyのないフィールドが必須になる
func reflectInputSchema[A any]() model.InputSchema {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
		Anonymous:                 true,
	}
	s := r.Reflect(new(A))

	props := make(map[string]model.JSONSchema)
	if s.Properties != nil {
		for el := s.Properties.Oldest(); el != nil; el = el.Next() {
			p := model.JSONSchema{
				Type:        el.Value.Type,
				Description: el.Value.Description,
			}
			for _, e := range el.Value.Enum {
				if str, ok := e.(string); ok {
					p.Enum = append(p.Enum, str)
				}
			}
			props[el.Key] = p
		}
	}

	return model.InputSchema{
		Type:       "object",
		Properties: props,
		Required:   s.Required,
	}
}

// checkRequired は必須引数が存在しnullでないことを確認する
func checkRequired(raw json.RawMessage, required []string) error {
	fields := map[string]json.RawMessage{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return service.NewError(service.ErrInvalidArguments, "arguments must be an object")
		}
	}
	for _, name := range required {
		v, ok := fields[name]
		if !ok || string(v) == "null" {
			return service.NewError(service.ErrInvalidArguments, "missing required argument: %s", name)
		}
	}
	return nil
}

// === ツール引数 ===

type calculateArgs struct {
	Operation string  `json:"operation" jsonschema:"description=The arithmetic operation to perform,enum=add,enum=subtract,enum=multiply,enum=divide"`
	A         float64 `json:"a" jsonschema:"description=First number"`
	B         float64 `json:"b" jsonschema:"description=Second number"`
}

type createNoteArgs struct {
	Title   string `json:"title" jsonschema:"description=The title of the note"`
	Content string `json:"content" jsonschema:"description=The content of the note"`
}

type listNotesArgs struct{}

type getWeatherArgs struct {
	City string `json:"city" jsonschema:"description=The city name"`
}

type readFileArgs struct {
	FilePath string `json:"file_path" jsonschema:"description=The path to the file to read"`
}

type writeFileArgs struct {
	FilePath string `json:"file_path" jsonschema:"description=The path to the file to write"`
	Content  string `json:"content" jsonschema:"description=The content to write to the file"`
}

type listDirectoryArgs struct {
	DirectoryPath string `json:"directory_path,omitempty" jsonschema:"description=The directory path to list (defaults to current directory)"`
	Pattern       string `json:"pattern,omitempty" jsonschema:"description=Optional glob pattern such as **/*.md"`
}

// buildTools はツール一覧を組み立てる
func (h *Handler) buildTools() *toolRegistry {
	tools := []tool{
		newTool("calculate", "Perform basic arithmetic calculations (add, subtract, multiply, divide)", h.toolCalculate),
		newTool("create_note", "Create a new note with a title and content", h.toolCreateNote),
		newTool("list_notes", "List all notes with their IDs and titles", h.toolListNotes),
		newTool("get_weather", "Get simulated weather information for a city", h.toolGetWeather),
	}
	if h.fileService != nil {
		tools = append(tools,
			newTool("read_file", "Read the contents of a text file", h.toolReadFile),
			newTool("write_file", "Write content to a text file (creates or overwrites)", h.toolWriteFile),
			newTool("list_directory", "List files and directories in a folder", h.toolListDirectory),
		)
	}
	return newToolRegistry(tools...)
}

// handleToolsList は tools/list メソッドを処理
func (h *Handler) handleToolsList(ctx context.Context, params any) (any, error) {
	return &model.ToolsListResult{
		Tools: h.tools.ordered,
	}, nil
}

// handleToolsCall は tools/call メソッドを処理
// 未知のツールはJSON-RPCエラー、ツール実行時のエラーはisError付きの結果として返す
func (h *Handler) handleToolsCall(ctx context.Context, params any) (any, error) {
	var p model.ToolsCallParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}

	if p.Name == "" {
		return nil, fmt.Errorf("%w: tool name is required", errInvalidParams)
	}

	run, ok := h.tools.byName[p.Name]
	if !ok {
		return nil, service.NewError(service.ErrUnknownTool, "unknown tool: %s", p.Name)
	}

	text, err := run(ctx, p.Arguments)
	if err != nil {
		h.logger.WarnContext(ctx, "tool failed", "tool", p.Name, "error", err)
		return model.NewToolError("Error: " + err.Error()), nil
	}
	return model.NewToolResult(text), nil
}

// === ツール実装 ===

func (h *Handler) toolCalculate(ctx context.Context, args calculateArgs) (string, error) {
	c, err := h.calculatorService.Calculate(args.Operation, args.A, args.B)
	if err != nil {
		return "", err
	}
	return c.Format(), nil
}

func (h *Handler) toolCreateNote(ctx context.Context, args createNoteArgs) (string, error) {
	note, err := h.noteService.Create(ctx, args.Title, args.Content)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Note created successfully!\nID: %d\nTitle: %s", note.ID, note.Title), nil
}

func (h *Handler) toolListNotes(ctx context.Context, _ listNotesArgs) (string, error) {
	notes, err := h.noteService.List(ctx)
	if err != nil {
		return "", err
	}
	if len(notes) == 0 {
		return "No notes found. Create one using the create_note tool!", nil
	}

	lines := make([]string, 0, len(notes))
	for _, n := range notes {
		lines = append(lines, fmt.Sprintf("ID %d: %s", n.ID, n.Title))
	}
	return fmt.Sprintf("Available notes (%d):\n%s", len(notes), strings.Join(lines, "\n")), nil
}

func (h *Handler) toolGetWeather(ctx context.Context, args getWeatherArgs) (string, error) {
	report, err := h.weatherProvider.Current(ctx, args.City)
	if err != nil {
		return "", err
	}
	return report.Format(), nil
}

func (h *Handler) toolReadFile(ctx context.Context, args readFileArgs) (string, error) {
	content, err := h.fileService.Read(ctx, args.FilePath)
	if err != nil {
		return "", err
	}
	return "File contents of " + args.FilePath + ":\n\n" + content, nil
}

func (h *Handler) toolWriteFile(ctx context.Context, args writeFileArgs) (string, error) {
	if err := h.fileService.Write(ctx, args.FilePath, args.Content); err != nil {
		return "", err
	}
	return "File written successfully: " + args.FilePath, nil
}

func (h *Handler) toolListDirectory(ctx context.Context, args listDirectoryArgs) (string, error) {
	dir := args.DirectoryPath
	if dir == "" {
		dir = "."
	}

	entries, err := h.fileService.List(ctx, dir, args.Pattern)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Contents of " + dir + ":\n\n")
	for _, e := range entries {
		if e.IsDir {
			b.WriteString("[DIR]  " + e.Name + "\n")
		} else {
			fmt.Fprintf(&b, "[FILE] %s (%d bytes)\n", e.Name, e.Size)
		}
	}
	return b.String(), nil
}
