package main

import (
	"fmt"
	"os"

	"github.com/atlasmaps/atlas/mods/logging"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      logging.Config `yaml:"log"`
	Http     HttpConfig     `yaml:"http"`
	Map      MapConfig      `yaml:"map"`
	Entities EntityConfig   `yaml:"entities"`
}

type HttpConfig struct {
	Listeners          []string `yaml:"listeners"`
	Debug              bool     `yaml:"debug"`
	DebugLatencyFilter string   `yaml:"debugLatencyFilter"`
}

type MapConfig struct {
	Width  string `yaml:"width"`
	Height string `yaml:"height"`
	Tiles  string `yaml:"tiles"`
}

type EntityConfig struct {
	// GeoJSON files imported at startup
	GeoJSON []string `yaml:"geojson"`
}

var DefaultConfigYAML = []byte(`
log:
  console: false
  filename: "-"
  append: true
  rotateSchedule: "@midnight"
  maxSize: 10
  maxBackups: 1
  maxAge: 7
  compress: false
  levels:
    - pattern: "*"
      level: INFO
  defaultPrefixWidth: 16
  defaultLevel: INFO
http:
  listeners:
    - tcp://127.0.0.1:8082
  debug: false
  debugLatencyFilter: "0s"
map:
  width: "600px"
  height: "600px"
  tiles: ""
entities:
  geojson: []
`)

// LoadConfig starts from the default configuration and overlays the given
// file when path is not empty.
func LoadConfig(path string) (*Config, error) {
	conf := &Config{}
	if err := yaml.Unmarshal(DefaultConfigYAML, conf); err != nil {
		return nil, fmt.Errorf("default config, %s", err.Error())
	}
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config %s, %s", path, err.Error())
		}
		if err := yaml.Unmarshal(content, conf); err != nil {
			return nil, fmt.Errorf("config %s, %s", path, err.Error())
		}
	}
	return conf, nil
}
