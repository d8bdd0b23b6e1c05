package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/brbranch/mcp-demo-server/internal/service"
)

const (
	infoURI         = "demo://info"
	capabilitiesURI = "demo://capabilities"
	noteURIPrefix   = "note://"

	mimeText = "text/plain"
	mimeJSON = "application/json"
)

// serverInfoText は demo://info の本文
const serverInfoText = `MCP Demo Server v1.0.0

This server demonstrates the core capabilities of the Model Context Protocol:

🛠️  TOOLS: Interactive functions that can be called
   - calculate: Perform arithmetic operations
   - create_note: Create and store notes
   - list_notes: View all saved notes
   - get_weather: Get simulated weather data

📄 RESOURCES: Exposed data that can be read
   - Server information (this document)
   - Capabilities overview
   - Dynamic note resources

💬 PROMPTS: Pre-configured prompt templates
   - Helpful assistant persona
   - Code review assistant
   - Note summarizer

The MCP allows AI models to interact with external tools and data sources in a standardized way.`

// capabilitiesDoc は demo://capabilities の内容（フィールド順を固定するため構造体）
type capabilitiesDoc struct {
	Protocol      string              `json:"protocol"`
	Version       string              `json:"version"`
	Features      capabilitiesFeature `json:"features"`
	Transport     string              `json:"transport"`
	Documentation string              `json:"documentation"`
}

type capabilitiesFeature struct {
	Tools     string `json:"tools"`
	Resources string `json:"resources"`
	Prompts   string `json:"prompts"`
}

var demoCapabilities = capabilitiesDoc{
	Protocol: "Model Context Protocol (MCP)",
	Version:  "1.0.0",
	Features: capabilitiesFeature{
		Tools:     "Execute functions with structured input/output",
		Resources: "Access and read external data sources",
		Prompts:   "Use pre-configured prompt templates",
	},
	Transport:     "stdio",
	Documentation: "https://modelcontextprotocol.io",
}

// handleResourcesList は resources/list メソッドを処理
// ノートのリソースは呼び出しごとに再生成する
func (h *Handler) handleResourcesList(ctx context.Context, params any) (any, error) {
	resources := []model.Resource{
		{
			URI:         infoURI,
			Name:        "Server Information",
			Description: "Information about this MCP demo server",
			MimeType:    mimeText,
		},
		{
			URI:         capabilitiesURI,
			Name:        "MCP Capabilities",
			Description: "Overview of MCP protocol capabilities",
			MimeType:    mimeJSON,
		},
	}

	notes, err := h.noteService.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		resources = append(resources, model.Resource{
			URI:         noteURIPrefix + strconv.FormatInt(n.ID, 10),
			Name:        "Note: " + n.Title,
			Description: "Note created on " + n.CreatedString(),
			MimeType:    mimeText,
		})
	}

	return &model.ResourcesListResult{Resources: resources}, nil
}

// handleResourceTemplatesList は resources/templates/list メソッドを処理
func (h *Handler) handleResourceTemplatesList(ctx context.Context, params any) (any, error) {
	return &model.ResourceTemplatesListResult{
		ResourceTemplates: []model.ResourceTemplate{
			{
				URITemplate: noteURIPrefix + "{id}",
				Name:        "Note",
				Description: "A note created with the create_note tool",
				MimeType:    mimeText,
			},
		},
	}, nil
}

// handleResourcesRead は resources/read メソッドを処理
func (h *Handler) handleResourcesRead(ctx context.Context, params any) (any, error) {
	var p model.ResourcesReadParams
	if err := mapParams(params, &p); err != nil {
		return nil, err
	}
	if p.URI == "" {
		return nil, fmt.Errorf("%w: uri is required", errInvalidParams)
	}

	contents, err := h.readResource(ctx, p.URI)
	if errors.Is(err, service.ErrNoteNotFound) || errors.Is(err, service.ErrUnknownResource) {
		return nil, &resourceError{uri: p.URI, err: err}
	}
	if err != nil {
		return nil, err
	}
	return &model.ResourcesReadResult{
		Contents: []model.ResourceContents{*contents},
	}, nil
}

// readResource はURIに対応するリソース本文を返す
func (h *Handler) readResource(ctx context.Context, uri string) (*model.ResourceContents, error) {
	switch {
	case uri == infoURI:
		return &model.ResourceContents{URI: uri, MimeType: mimeText, Text: serverInfoText}, nil

	case uri == capabilitiesURI:
		b, err := json.MarshalIndent(demoCapabilities, "", "  ")
		if err != nil {
			return nil, err
		}
		return &model.ResourceContents{URI: uri, MimeType: mimeJSON, Text: string(b)}, nil

	case strings.HasPrefix(uri, noteURIPrefix):
		rawID := strings.TrimPrefix(uri, noteURIPrefix)
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return nil, service.NewError(service.ErrNoteNotFound, "note not found: %s", rawID)
		}
		note, err := h.noteService.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		text := fmt.Sprintf("Title: %s\nCreated: %s\n\n%s", note.Title, note.CreatedString(), note.Content)
		return &model.ResourceContents{URI: uri, MimeType: mimeText, Text: text}, nil

	default:
		return nil, service.NewError(service.ErrUnknownResource, "unknown resource: %s", uri)
	}
}
