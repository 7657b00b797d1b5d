package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type PowerCfg struct {
	LimitAmps float64 `yaml:"limit_amps"`
	WhiteCap  float64 `yaml:"white_cap"`
	LEDChanmA float64 `yaml:"led_chan_ma"`
}

type Dim struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, empty for the first port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2400000
}

// LED configures the optional strip that mirrors one section's scene.
type LED struct {
	Driver          string  `yaml:"driver"` // "spi" | "console" | "off"
	Section         string  `yaml:"section"`
	Brightness      float64 `yaml:"brightness"`
	Gamma           float64 `yaml:"gamma"` // 1 passes pixels through
	Dim             Dim     `yaml:"dim"`
	XFlipEveryRow   bool    `yaml:"x_flip_every_row"`
	YFlipEveryPanel bool    `yaml:"y_flip_every_panel"`

	Power PowerCfg `yaml:"power"`
	SPI   SPI      `yaml:"spi,omitempty"`
}

type Window struct {
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

type Palette struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// Section is one decorative background on the page.
type Section struct {
	Name          string  `yaml:"name"`
	Geometry      string  `yaml:"geometry"`
	ParticleCount int     `yaml:"particle_count,omitempty"`
	Interactive   bool    `yaml:"interactive,omitempty"`
	Opacity       float64 `yaml:"opacity"`
	FillWindow    bool    `yaml:"fill_window,omitempty"`
	Seed          int64   `yaml:"seed,omitempty"`
	VertexColors  bool    `yaml:"vertex_colors,omitempty"`
	Extent        float64 `yaml:"extent,omitempty"`
	// Width and Height size a fixed container; zero means the window.
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

type Config struct {
	Addr      string    `yaml:"addr"`
	FPS       int       `yaml:"fps"`
	PrefsPath string    `yaml:"prefs_path"`
	Window    Window    `yaml:"window"`
	Palette   Palette   `yaml:"palette"`
	Sections  []Section `yaml:"sections"`
	LED       LED       `yaml:"led"`
}

// Default is the portfolio page: five backgrounds, dark indigo palette.
func Default() *Config {
	return &Config{
		Addr:      ":8080",
		FPS:       60,
		PrefsPath: "backdrop-prefs.yaml",
		Window:    Window{W: 1280, H: 720},
		Palette:   Palette{Light: "#4338ca", Dark: "#6366f1"},
		Sections: []Section{
			{Name: "hero", Geometry: "sphere", Interactive: true, Opacity: 0.7, Width: 400, Height: 400},
			{Name: "skills", Geometry: "particles", ParticleCount: 1000, Opacity: 0.6, FillWindow: true, Extent: 100, Seed: 1},
			{Name: "projects", Geometry: "cubes", ParticleCount: 0, Opacity: 0.3, FillWindow: true, Seed: 2},
			{Name: "resume", Geometry: "particles", ParticleCount: 1500, Opacity: 0.6, FillWindow: true, VertexColors: true, Seed: 3},
			{Name: "contact", Geometry: "waves", Opacity: 0.3, FillWindow: true},
		},
		LED: LED{
			Driver:     "off",
			Section:    "hero",
			Brightness: 0.5,
			Gamma:      2.2,
			Dim:        Dim{X: 16, Y: 16, Z: 1},
			Power:      PowerCfg{LimitAmps: 4, WhiteCap: 0.85, LEDChanmA: 20},
			SPI:        SPI{SpeedHz: 2400000},
		},
	}
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
