package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/brbranch/mcp-demo-server/internal/config"
	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logFormat  string
)

// rootCmd は引数なしで serve と同じ動作をする
var rootCmd = &cobra.Command{
	Use:   "mcp-demo",
	Short: "MCP demo server exposing tools, resources and prompts",
	Long: `mcp-demo is a Model Context Protocol server that demonstrates tools
(calculator, notes, weather, optional file access), resources and prompt templates.
Without a subcommand it behaves like "mcp-demo serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// stdoutはプロトコル用のため、ログは常にstderrへ
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(newLogger(os.Stderr, level, logFormat))
	},
	RunE: runServe,
}

// Execute はrootCmdを実行し、失敗時は終了コード1で終了する
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default ~/.mcp-demo/config.json)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json (default from config)")
	addServeFlags(rootCmd)
}

// newLogger はstderr向けのslogロガーを作成する
func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == model.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// configureLogger は設定ファイルのログ設定をフラグで上書きしてロガーを作り直す
func configureLogger(w io.Writer, cfg *model.Config) (*slog.Logger, error) {
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	level, err := config.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := newLogger(w, level, cfg.Log.Format)
	slog.SetDefault(logger)
	return logger, nil
}
