package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-backdrop/internal/dom"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/scene"
	"github.com/coreman2200/funtimes-backdrop/internal/section"
)

var snapFlags struct {
	section string
	frames  int
	out     string
	theme   string
	width   float64
	height  float64
	pointer []float64
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render one section headlessly to a PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := section.FromConfig(loadConfig())
		if err != nil {
			return err
		}
		var p *section.Preset
		for i := range presets {
			if presets[i].Name == snapFlags.section {
				p = &presets[i]
			}
		}
		if p == nil {
			return fmt.Errorf("no section %q", snapFlags.section)
		}
		th, err := render.ParseTheme(snapFlags.theme)
		if err != nil {
			return err
		}

		w := firstNonZero(snapFlags.width, firstNonZero(p.Size.W, 1280))
		h := firstNonZero(snapFlags.height, firstNonZero(p.Size.H, 720))
		node := dom.NewNode(p.Name, dom.Rect{W: w, H: h})
		c, err := scene.New(node, p.Config, th, scene.WithName(p.Name), scene.WithLogger(log.Logger))
		if err != nil {
			return err
		}
		defer func() { _ = c.Destroy() }()

		if len(snapFlags.pointer) == 2 {
			c.OnHoverChange(true)
			c.OnPointerMove(snapFlags.pointer[0], snapFlags.pointer[1])
		}
		for i := 0; i < max(1, snapFlags.frames); i++ {
			if err := c.Step(); err != nil {
				return err
			}
		}
		img, err := c.Snapshot()
		if err != nil {
			return err
		}

		f, err := os.Create(snapFlags.out)
		if err != nil {
			return err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return err
		}
		log.Info().
			Str("section", p.Name).
			Int("frames", snapFlags.frames).
			Float64("t", c.AnimationState().T).
			Str("out", snapFlags.out).
			Msg("snapshot written")
		return f.Close()
	},
}

func init() {
	f := snapshotCmd.Flags()
	f.StringVarP(&snapFlags.section, "section", "s", "hero", "section to render")
	f.IntVarP(&snapFlags.frames, "frames", "n", 60, "frames to advance before capturing")
	f.StringVarP(&snapFlags.out, "out", "o", "snapshot.png", "output PNG")
	f.StringVar(&snapFlags.theme, "theme", "dark", "light | dark")
	f.Float64Var(&snapFlags.width, "width", 0, "surface width (default from section)")
	f.Float64Var(&snapFlags.height, "height", 0, "surface height (default from section)")
	f.Float64SliceVar(&snapFlags.pointer, "pointer", nil, "hover the scene with the pointer at x,y in NDC")
}
