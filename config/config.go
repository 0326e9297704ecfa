package config

import (
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Engine kinds.
const (
	KindUCT        = "uct"
	KindAggroUCT   = "aggro-uct"
	KindExpectimax = "expectimax"
	KindBlunder    = "blunder"
	KindGreedy     = "greedy"
	KindPlayer     = "player"
	KindUCI        = "uci"
)

var kinds = map[string]bool{
	KindUCT: true, KindAggroUCT: true, KindExpectimax: true, KindBlunder: true,
	KindGreedy: true, KindPlayer: true, KindUCI: true,
}

type Config struct {
	Seed    int64             `yaml:"seed"`
	Log     Log               `yaml:"log"`
	Server  Server            `yaml:"server"`
	Strong  Evaluator         `yaml:"strong"`
	Weak    Evaluator         `yaml:"weak"`
	UCI     UCI               `yaml:"uci"`
	Game    Game              `yaml:"game"`
	Trial   Trial             `yaml:"trial"`
	Engines map[string]Engine `yaml:"engines"`
}

type Log struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

type Server struct {
	Addr   string `yaml:"addr"`
	Engine string `yaml:"engine"`
}

// Evaluator locates an HTTP evaluator backend.
type Evaluator struct {
	URL      string        `yaml:"url"`
	MaxBatch int           `yaml:"max_batch"`
	Timeout  time.Duration `yaml:"timeout"`
}

type UCI struct {
	Path  string `yaml:"path"`
	Depth int    `yaml:"depth"`
}

// Game configures a local game between two named engines.
type Game struct {
	White    string `yaml:"white"`
	Black    string `yaml:"black"`
	MaxMoves int    `yaml:"max_moves"`
}

// Trial configures repeated games of one engine against an opponent.
type Trial struct {
	Engine   string `yaml:"engine"`
	Opponent string `yaml:"opponent"`
	Games    int    `yaml:"games"`
	Output   string `yaml:"output"`
}

// Engine holds the parameters of one searcher. Fields a kind does not use
// are ignored.
type Engine struct {
	Kind           string  `yaml:"kind"`
	Nodes          int     `yaml:"nodes"`
	Depth          int     `yaml:"depth"`
	OwnCutoff      float64 `yaml:"own_cutoff"`
	OpponentCutoff float64 `yaml:"opponent_cutoff"`
	PositionCutoff float64 `yaml:"position_cutoff"`
	Confidence     float64 `yaml:"confidence"`
	Opening        string  `yaml:"opening"`
}

// Default returns the standard player presets.
func Default() Config {
	return Config{
		Log:    Log{Level: "info", Console: true},
		Server: Server{Addr: ":8080", Engine: "aggro-uct"},
		Strong: Evaluator{URL: "http://localhost:9001", MaxBatch: 256, Timeout: 30 * time.Second},
		Weak:   Evaluator{URL: "http://localhost:9002", MaxBatch: 256, Timeout: 30 * time.Second},
		UCI:    UCI{Path: "stockfish", Depth: 12},
		Game:   Game{White: "aggro-uct", Black: "player", MaxMoves: 300},
		Trial:  Trial{Engine: "aggro-uct", Opponent: "stockfish", Games: 10, Output: "results"},
		Engines: map[string]Engine{
			"uct":        {Kind: KindUCT, Nodes: 2000, OwnCutoff: 0.01, OpponentCutoff: 0.02},
			"aggro-uct":  {Kind: KindAggroUCT, Nodes: 8000, OwnCutoff: 0.01, OpponentCutoff: 0.02},
			"expectimax": {Kind: KindExpectimax, Depth: 4, PositionCutoff: 0.01, OwnCutoff: 0.01, OpponentCutoff: 0.02},
			"blunder":    {Kind: KindBlunder, OwnCutoff: 0.02, OpponentCutoff: 0.02, Confidence: 0.9, Opening: "e2e4"},
			"greedy":     {Kind: KindGreedy},
			"player":     {Kind: KindPlayer},
			"stockfish":  {Kind: KindUCI},
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "open config")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "decode config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	names := make([]string, 0, len(c.Engines))
	for name := range c.Engines {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := c.Engines[name].validate(); err != nil {
			return errors.WithMessagef(err, "engine %q", name)
		}
	}

	for _, ref := range []string{c.Server.Engine, c.Game.White, c.Game.Black, c.Trial.Engine, c.Trial.Opponent} {
		if _, ok := c.Engines[ref]; ref != "" && !ok {
			return errors.Errorf("unknown engine %q", ref)
		}
	}
	if c.Game.MaxMoves < 0 {
		return errors.Errorf("max_moves must not be negative, got %d", c.Game.MaxMoves)
	}
	if c.Trial.Games < 0 {
		return errors.Errorf("trial games must not be negative, got %d", c.Trial.Games)
	}
	if c.Strong.URL == "" || c.Weak.URL == "" {
		return errors.New("strong and weak evaluator urls are required")
	}
	return nil
}

func (e Engine) validate() error {
	if !kinds[e.Kind] {
		return errors.Errorf("unknown kind %q", e.Kind)
	}
	if e.Nodes < 0 {
		return errors.Errorf("nodes must not be negative, got %d", e.Nodes)
	}
	if e.Depth < 0 {
		return errors.Errorf("depth must not be negative, got %d", e.Depth)
	}
	for field, cutoff := range map[string]float64{
		"own_cutoff":      e.OwnCutoff,
		"opponent_cutoff": e.OpponentCutoff,
		"position_cutoff": e.PositionCutoff,
		"confidence":      e.Confidence,
	} {
		if cutoff < 0 || cutoff > 1 {
			return errors.Errorf("%s must be in [0, 1], got %g", field, cutoff)
		}
	}
	return nil
}
