package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"fabula/pkg/server"
)

var (
	serveAddr  string
	serveDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, done := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer done()

		srv := server.NewServer(newInferencer())
		if serveDebug {
			srv.Echo.Logger.SetLevel(log.DEBUG)
		}

		finishedShutDown := make(chan struct{})
		go func() {
			<-ctx.Done()
			if err := srv.Shutdown(context.Background()); err != nil {
				log.Error(err)
			}
			close(finishedShutDown)
		}()

		if err := srv.Start(serveAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		<-finishedShutDown
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "verbose request logging")
	rootCmd.AddCommand(serveCmd)
}
