package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/ccview/internal/config"
	"github.com/danmuck/ccview/internal/msglist"
	"github.com/danmuck/ccview/internal/plugins"
	"github.com/danmuck/ccview/internal/protocol/message"
	"github.com/danmuck/ccview/internal/server"
	"github.com/danmuck/ccview/internal/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(reg *plugins.Registry) *cobra.Command {
	var (
		cfgPath string
		addr    string
		save    string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a live session behind the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			sess, err := config.BuildSession(cfg, reg, logHandler{})
			if err != nil {
				return err
			}
			srv := server.New(server.Options{
				Name:        cfg.Name,
				Addr:        cfg.HTTP.Addr,
				CorsOrigins: cfg.HTTP.CorsOrigins,
				Registry:    reg,
				Protocol:    cfg.Protocol,
				Session:     sess,
				Token:       cfg.HTTP.Token,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			log.Info().
				Str("session", sess.ID()).
				Str("protocol", cfg.Protocol).
				Str("socket", cfg.Socket.Type).
				Int("filters", len(cfg.Filters)).
				Str("addr", cfg.HTTP.Addr).
				Msg("ccview_start")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return sess.Run(gctx) })
			g.Go(func() error { return srv.Serve(gctx) })
			err = g.Wait()
			if errors.Is(err, context.Canceled) {
				err = nil
			}

			if save != "" {
				recs := msglist.FromLog(sess.Log().List())
				if serr := msglist.SaveFile(save, sess.Protocol(), recs); serr != nil {
					log.Error().Err(serr).Str("path", save).Msg("message_list_save_failed")
				} else {
					log.Info().Str("path", save).Int("messages", len(recs)).Msg("message_list_saved")
				}
			}
			log.Info().Str("session", sess.ID()).Msg("ccview_stop")
			return err
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "session config file (toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "override the HTTP listen address")
	cmd.Flags().StringVar(&save, "save", "", "save the message log to this file on exit")
	return cmd
}

type logHandler struct{}

func (logHandler) MessageReceived(m *message.Message) {
	log.Info().Str("id", m.IDString()).Str("name", m.Name()).Int("length", len(m.Raw)).Msg("message_received")
}

func (logHandler) MessageSent(m *message.Message) {
	log.Info().Str("id", m.IDString()).Str("name", m.Name()).Int("length", len(m.Raw)).Msg("message_sent")
}

func (logHandler) ErrorReported(err error) {
	log.Warn().Err(err).Msg("session_error")
}

func (logHandler) ConnectionStatus(connected bool) {
	log.Info().Bool("connected", connected).Msg("connection_status")
}

var _ session.Handler = logHandler{}
