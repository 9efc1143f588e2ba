package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/xiaoyuanzhu-com/debug-viewer/api"
	"github.com/xiaoyuanzhu-com/debug-viewer/config"
	"github.com/xiaoyuanzhu-com/debug-viewer/log"
	"github.com/xiaoyuanzhu-com/debug-viewer/server"
	"github.com/xiaoyuanzhu-com/debug-viewer/viewer"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	serve := serveCmd()
	var logLevelFlag string

	cmd := &cobra.Command{
		Use:           "debug-viewer",
		Short:         "Live preview of a directory of debug images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevelFlag != "" {
				log.Configure(config.Get().Env, logLevelFlag, os.Stdout)
			}
		},
		RunE: serve.RunE,
	}
	cmd.Flags().AddFlagSet(serve.Flags())
	cmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "debug, info, warn, error or off (default: $LOG_LEVEL or info)")

	cmd.AddCommand(serve, tailCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	var (
		dirFlag  string
		hostFlag string
		portFlag int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the image directory and push new images to browsers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()

			serverCfg := &server.Config{
				Port:           cfg.Port,
				Host:           cfg.Host,
				Env:            cfg.Env,
				ImagesDir:      cfg.ImagesDir,
				PageSize:       cfg.PageSize,
				DisplayLimit:   cfg.DisplayLimit,
				ReconnectDelay: cfg.ReconnectDelay,
				WatchEnabled:   true,
				WatchRecursive: cfg.WatchRecursive,
				IgnoreGlobs:    cfg.IgnoreGlobs,
			}
			if dirFlag != "" {
				serverCfg.ImagesDir = dirFlag
			}
			if hostFlag != "" {
				serverCfg.Host = hostFlag
			}
			if portFlag > 0 {
				serverCfg.Port = portFlag
			}

			return runServer(serverCfg)
		},
	}
	cmd.Flags().StringVar(&dirFlag, "dir", "", "image directory (default: $IMAGES_DIR or ~/debug_images)")
	cmd.Flags().StringVar(&hostFlag, "host", "", "listen host (default: $HOST or 0.0.0.0)")
	cmd.Flags().IntVar(&portFlag, "port", 0, "listen port (default: $PORT or 8002)")
	return cmd
}

func runServer(cfg *server.Config) error {
	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	api.SetupRoutes(srv.Router(), api.NewHandlers(srv))

	errCh := make(chan error, 1)
	go func() {
		printNetworkAddresses(cfg.Port)
		errCh <- srv.Start()
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server error")
			shutdown(srv)
			return err
		}
		return nil
	case <-quit:
	}

	shutdown(srv)
	log.Info().Msg("server stopped")
	return nil
}

func shutdown(srv *server.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
}

func tailCmd() *cobra.Command {
	var (
		urlFlag   string
		infoFlag  bool
		delayFlag time.Duration
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print new images from a running viewer server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if urlFlag == "" {
				urlFlag = fmt.Sprintf("http://localhost:%d", config.Get().Port)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			t := &viewer.Tail{
				Client:         viewer.NewClient(urlFlag),
				Out:            cmd.OutOrStdout(),
				ShowInfo:       infoFlag,
				ReconnectDelay: delayFlag,
			}
			if err := t.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&urlFlag, "url", "", "server base URL (default: http://localhost:$PORT)")
	cmd.Flags().BoolVar(&infoFlag, "info", false, "print dimensions of each new image")
	cmd.Flags().DurationVar(&delayFlag, "reconnect-delay", 0, "delay between reconnect attempts (default: server setting)")
	return cmd
}

// printNetworkAddresses logs the LAN URLs the viewer is reachable on
func printNetworkAddresses(port int) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok {
				if ip4 := ipnet.IP.To4(); ip4 != nil {
					log.Info().Str("url", fmt.Sprintf("http://%s:%d", ip4.String(), port)).Msg("network")
				}
			}
		}
	}
}
