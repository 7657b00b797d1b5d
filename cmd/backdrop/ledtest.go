package main

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-backdrop/internal/layout"
	"github.com/coreman2200/funtimes-backdrop/internal/led"
)

var ledFlags struct {
	pattern  string
	interval time.Duration
	driver   string
}

var ledtestCmd = &cobra.Command{
	Use:   "ledtest",
	Short: "Run a wiring pattern on the LED mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		cfg.LED.Driver = firstNonZero(ledFlags.driver, cfg.LED.Driver)
		l := layout.FromConfig(cfg.LED)
		drv, err := led.Open(cfg.LED, l.Count(), log.Logger)
		if err != nil {
			return err
		}
		if drv == nil {
			return errors.New("led driver is off; pass --led spi or --led console")
		}
		defer drv.Close()

		cal, err := led.NewCalibration(led.Pattern(ledFlags.pattern), l)
		if err != nil {
			return err
		}
		rgb := make([]byte, l.Count()*3)
		tick := time.NewTicker(ledFlags.interval)
		defer tick.Stop()
		for cal.Step(rgb) {
			if err := drv.Write(rgb); err != nil {
				return err
			}
			select {
			case <-cmd.Context().Done():
				return nil
			case <-tick.C:
			}
		}
		log.Info().Str("pattern", ledFlags.pattern).Int("frames", cal.Len()).Msg("pattern complete")
		return nil
	},
}

func init() {
	f := ledtestCmd.Flags()
	f.StringVar(&ledFlags.pattern, "pattern", string(led.IndexSweep), "index_sweep | rgb_channels | plane_z")
	f.DurationVar(&ledFlags.interval, "interval", 100*time.Millisecond, "time per frame")
	f.StringVar(&ledFlags.driver, "led", "", "LED driver: spi | console (default from config)")
}
