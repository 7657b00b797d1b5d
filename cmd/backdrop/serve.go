package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-backdrop/internal/app"
	"github.com/coreman2200/funtimes-backdrop/internal/config"
)

var serveFlags struct {
	addr    string
	fps     int
	driver  string
	saveCfg bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the page and stream it to the browser preview",
	Long: `Mounts every configured section, drives their frame loop and serves:

  /ws/frames  PNG frames per section
  /ws/input   resize, pointer and hover events from the browser
  /ws/diag    diagnostics
  /health     status
  /theme      GET current theme, POST to toggle`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		cfg.Addr = firstNonZero(serveFlags.addr, cfg.Addr)
		cfg.FPS = firstNonZero(serveFlags.fps, cfg.FPS)
		cfg.LED.Driver = firstNonZero(serveFlags.driver, cfg.LED.Driver)
		if serveFlags.saveCfg {
			if err := config.Save(configPath, cfg); err != nil {
				log.Warn().Err(err).Str("path", configPath).Msg("config save failed")
			}
		}

		core, err := app.InitCore(cfg, app.Options{}, log.Logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := core.Close(); err != nil {
				log.Warn().Err(err).Msg("shutdown incomplete")
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = core.Run(ctx, cfg.Addr)
		log.Info().Msg("shutting down")
		return err
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.addr, "addr", "", "HTTP listen address (default from config)")
	f.IntVar(&serveFlags.fps, "fps", 0, "target frames per second (default from config)")
	f.StringVar(&serveFlags.driver, "led", "", "LED mirror driver: spi | console | off")
	f.BoolVar(&serveFlags.saveCfg, "save-config", false, "write the effective config back to --config")
}
