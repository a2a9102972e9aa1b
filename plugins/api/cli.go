package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	tmos "github.com/tendermint/tendermint/libs/os"
	"golang.org/x/net/netutil"

	"github.com/picassol/pixeld/app/config"
	"github.com/picassol/pixeld/app/pub"
	"github.com/picassol/pixeld/common/ledger"
	"github.com/picassol/pixeld/plugins/pixel"
)

const metricsNamespace = "pixeld"

// ServeCommand will generate a long-running action server
func ServeCommand(ctx *config.PixeldContext) *cobra.Command {
	flagListenAddr := "laddr"
	flagMaxOpenConnections := "max-open"
	flagEndpoint := "endpoint"

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the pixel action server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.PixeldConfig
			logger := ctx.Logger.With("module", "apiserv")

			client, err := ledger.NewRPCClient(cfg.LedgerConfig, ledger.PrometheusMetrics(metricsNamespace), ctx.Logger)
			if err != nil {
				return err
			}

			var publication *pub.Publication
			publisher, err := pub.NewActionPublisher(ctx.HomeDir, cfg.PublicationConfig, ctx.Logger.With("module", "pub"))
			if err != nil {
				return err
			}
			if publisher != nil {
				publication = pub.NewPublication(publisher, pub.PrometheusMetrics(metricsNamespace), ctx.Logger.With("module", "pub"), cfg.PublicationConfig)
				publication.Start()
			}

			s, err := newServer(cfg, client, publication, pixel.NewLockedRand(time.Now().UnixNano()), pixel.PrometheusMetrics(metricsNamespace), logger)
			if err != nil {
				return err
			}
			s.bindRoutes()

			listener, err := net.Listen("tcp", cfg.ServerConfig.ListenAddr)
			if err != nil {
				return err
			}
			if maxOpen := cfg.ServerConfig.MaxOpenConnections; maxOpen > 0 {
				listener = netutil.LimitListener(listener, maxOpen)
			}
			httpServer := &http.Server{
				Handler:           s.router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
					logger.Error("action server stopped", "err", err)
				}
			}()

			logger.Info("action server started", "laddr", listener.Addr().String(), "program", s.resolver.ProgramID().String(), "blockchain", s.blockchainID)

			// wait forever and cleanup
			tmos.TrapSignal(logger, func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					logger.Error("error closing listener", "err", err)
				}
				if publication != nil {
					publication.Stop()
				}
			})
			select {}
		},
	}

	cmd.Flags().String(flagListenAddr, ctx.ServerConfig.ListenAddr, "The address for the server to listen on")
	cmd.Flags().Int(flagMaxOpenConnections, ctx.ServerConfig.MaxOpenConnections, "The number of maximum open connections")
	cmd.Flags().String(flagEndpoint, ctx.LedgerConfig.Endpoint, "JSON-RPC endpoint of the cluster")
	viper.BindPFlag("server.laddr", cmd.Flags().Lookup(flagListenAddr))
	viper.BindPFlag("server.maxOpenConnections", cmd.Flags().Lookup(flagMaxOpenConnections))
	viper.BindPFlag("ledger.endpoint", cmd.Flags().Lookup(flagEndpoint))

	return cmd
}
