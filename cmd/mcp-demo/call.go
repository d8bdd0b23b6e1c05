package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/brbranch/mcp-demo-server/internal/bootstrap"
	"github.com/brbranch/mcp-demo-server/internal/config"
	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/brbranch/mcp-demo-server/internal/transport/stdio"
	"github.com/spf13/cobra"
)

var (
	callFormat   string
	callArgsJSON string
)

var callCmd = &cobra.Command{
	Use:   "call <tool> [key=value...]",
	Short: "Call a tool once and print its result",
	Long: `Call a tool without starting a server. Arguments are given as key=value pairs;
values that parse as JSON (numbers, booleans, quoted strings) are passed as JSON,
anything else is passed as a string. The note store lives only for this call.`,
	Example: `  mcp-demo call calculate operation=add a=5 b=3
  mcp-demo call get_weather city=Tokyo
  mcp-demo call create_note --args '{"title":"Todo","content":"write tests"}'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringVarP(&callFormat, "format", "f", "text", "Output format: text, json")
	callCmd.Flags().StringVar(&callArgsJSON, "args", "", "Tool arguments as a JSON object (merged before key=value pairs)")
	rootCmd.AddCommand(callCmd)
}

// runCall はcallコマンドを実行
func runCall(cmd *cobra.Command, args []string) error {
	if callFormat != "text" && callFormat != "json" {
		return fmt.Errorf("invalid format: %s (must be text or json)", callFormat)
	}

	arguments, err := parseToolArgs(args[1:], callArgsJSON)
	if err != nil {
		return err
	}

	cfg, err := bootstrap.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	logger, err := configureLogger(os.Stderr, cfg)
	if err != nil {
		return err
	}

	services, cleanup, err := bootstrap.Build(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()

	return callTool(cmd.Context(), services.Handler, args[0], arguments, callFormat, cmd.OutOrStdout())
}

// parseToolArgs はkey=value形式の引数をツール引数に変換する
func parseToolArgs(pairs []string, rawJSON string) (map[string]any, error) {
	arguments := map[string]any{}
	if rawJSON != "" {
		if err := json.Unmarshal([]byte(rawJSON), &arguments); err != nil {
			return nil, fmt.Errorf("--args must be a JSON object: %w", err)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q (expected key=value)", pair)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			arguments[key] = decoded
		} else {
			arguments[key] = value
		}
	}
	return arguments, nil
}

// callResponse は tools/call のレスポンス
type callResponse struct {
	Result *model.ToolsCallResult `json:"result"`
	Error  *model.RPCError        `json:"error"`
}

// callTool はHandler経由でツールを1回呼び出し、結果をwに出力する
// ツールがisErrorを返した場合も本文を出力したうえでエラーを返す
func callTool(ctx context.Context, handler stdio.Handler, name string, arguments map[string]any, format string, w io.Writer) error {
	req, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": arguments},
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	var resp callResponse
	if err := json.Unmarshal(handler.Handle(ctx, req), &resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Error != nil {
		return resp.Error
	}

	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(resp.Result); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
	default:
		for _, c := range resp.Result.Content {
			fmt.Fprintln(w, c.Text)
		}
	}

	if resp.Result.IsError {
		return fmt.Errorf("tool %s failed", name)
	}
	return nil
}
