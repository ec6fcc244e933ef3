package config

import "github.com/san-kum/pastryfall/internal/scene"

var Presets = map[string]*Config{
	"classic": DefaultConfig(),
	"moon": func() *Config {
		c := DefaultConfig()
		c.Physics.Gravity = -0.000165
		c.Physics.RestThreshold = 0.004
		return c
	}(),
	"bouncy": func() *Config {
		c := DefaultConfig()
		c.Physics.BounceFactor = 0.9
		c.Physics.RestThreshold = 0.005
		return c
	}(),
	"dense": func() *Config {
		c := DefaultConfig()
		for i := range c.Pastries {
			c.Pastries[i].Count = 20
		}
		c.Physics.Spawn.SpreadX = 30
		c.Physics.Spawn.SpreadZ = 20
		return c
	}(),
	"cookies": func() *Config {
		c := DefaultConfig()
		c.Pastries = []scene.Kind{
			{Name: "Cookie", Scale: 0.2, Count: 12},
			{Name: "bearCookie", Scale: 0.4, Count: 12},
		}
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
