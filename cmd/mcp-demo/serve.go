package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/brbranch/mcp-demo-server/internal/bootstrap"
	"github.com/brbranch/mcp-demo-server/internal/config"
	"github.com/brbranch/mcp-demo-server/internal/model"
	"github.com/brbranch/mcp-demo-server/internal/transport/http"
	"github.com/brbranch/mcp-demo-server/internal/transport/stdio"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// serveFlags はserveコマンドのフラグ
type serveFlags struct {
	Transport string
	Host      string
	Port      int
}

var serveOpts serveFlags

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio, http or both)",
	Example: `  mcp-demo serve
  mcp-demo serve -t http -p 8080
  mcp-demo serve -t both -c ~/.mcp-demo/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	addServeFlags(serveCmd)
	rootCmd.AddCommand(serveCmd)
}

// addServeFlags はserveのフラグを登録する（rootCmdにも同じフラグを登録する）
func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&serveOpts.Transport, "transport", "t", model.TransportStdio, "Transport type: stdio, http, both")
	cmd.Flags().StringVar(&serveOpts.Host, "host", config.DefaultHTTPHost, "HTTP host")
	cmd.Flags().IntVarP(&serveOpts.Port, "port", "p", config.DefaultHTTPPort, "HTTP port")
}

// applyServeFlags は明示的に指定されたフラグだけを設定に反映する
func applyServeFlags(cmd *cobra.Command, cfg *model.Config, opts serveFlags) {
	if cmd.Flags().Changed("transport") {
		cfg.TransportDefaults.DefaultTransport = opts.Transport
	}
	if cmd.Flags().Changed("host") {
		cfg.HTTP.Host = opts.Host
	}
	if cmd.Flags().Changed("port") {
		cfg.HTTP.Port = opts.Port
	}
}

// runServe はserveコマンドを実行
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap.LoadConfig(configPath)
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg, serveOpts)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger, err := configureLogger(os.Stderr, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, cleanup, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return serveTransports(ctx, cfg, services.Handler, os.Stdin, os.Stdout, logger)
}

// serveTransports は設定されたtransportでHandlerを公開する
// both の場合はstdioとHTTPを同時に動かし、stdioの終了（EOF）で全体を停止する
func serveTransports(ctx context.Context, cfg *model.Config, handler stdio.Handler, in io.Reader, out io.Writer, logger *slog.Logger) error {
	newStdio := func() *stdio.Server {
		return stdio.New(handler, stdio.WithReader(in), stdio.WithWriter(out), stdio.WithLogger(logger))
	}
	newHTTP := func() *http.Server {
		return http.New(handler, http.Config{
			Addr:        net.JoinHostPort(cfg.HTTP.Host, strconv.Itoa(cfg.HTTP.Port)),
			CORSOrigins: cfg.HTTP.CORSOrigins,
			Logger:      logger,
		})
	}

	transport := cfg.TransportDefaults.DefaultTransport
	ready := func() {
		logger.Info("MCP Demo Server running on " + transport)
	}

	switch transport {
	case model.TransportStdio:
		ready()
		return ignoreCanceled(newStdio().Run(ctx))
	case model.TransportHTTP, model.TransportBoth:
	default:
		return fmt.Errorf("unknown transport: %s", transport)
	}

	// 起動ログはlistenに成功してから出す
	httpServer := newHTTP()
	ln, err := httpServer.Listen()
	if err != nil {
		return err
	}
	ready()

	if transport == model.TransportHTTP {
		return httpServer.Serve(ctx, ln)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return newStdio().Run(gctx)
	})
	g.Go(func() error {
		return httpServer.Serve(gctx, ln)
	})

	return ignoreCanceled(g.Wait())
}

// ignoreCanceled はシグナルによる停止を正常終了として扱う
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
