package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"polecat/agent"
	"polecat/config"
	"polecat/engine"
	"polecat/experiments"
	"polecat/experiments/metrics"
	"polecat/game"
	"polecat/searcher"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	mode := flag.String("mode", "selfplay", "serve, selfplay, trial or move")
	moves := flag.String("moves", "", "Space separated moves for -mode move")
	dotPath := flag.String("dot", "", "Write the search tree of -mode move to this file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch *mode {
	case "serve":
		err = serve(cfg)
	case "selfplay":
		err = selfplay(ctx, cfg)
	case "trial":
		err = trial(ctx, cfg)
	case "move":
		err = findMove(ctx, cfg, game.NewPosition(strings.Fields(*moves)...), *dotPath)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("polecat failed")
	}
}

func setupLogging(cfg config.Log) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func connect(cfg config.Config, names ...string) (agent.Backends, func(), error) {
	b, err := agent.Connect(cfg, agent.NeedsUCI(cfg, names...))
	if err != nil {
		return agent.Backends{}, nil, err
	}
	closeFn := func() {
		if c, ok := b.UCI.(io.Closer); ok {
			c.Close()
		}
	}
	return b, closeFn, nil
}

func serve(cfg config.Config) error {
	b, closeFn, err := connect(cfg, cfg.Server.Engine)
	if err != nil {
		return err
	}
	defer closeFn()

	s, err := agent.New(cfg, cfg.Server.Engine, b)
	if err != nil {
		return err
	}

	log.Info().Msgf("serving %s on %s", cfg.Server.Engine, cfg.Server.Addr)
	return http.ListenAndServe(cfg.Server.Addr, agent.NewHandler(s))
}

func selfplay(ctx context.Context, cfg config.Config) error {
	b, closeFn, err := connect(cfg, cfg.Game.White, cfg.Game.Black)
	if err != nil {
		return err
	}
	defer closeFn()

	white, err := agent.New(cfg, cfg.Game.White, b)
	if err != nil {
		return err
	}
	black, err := agent.New(cfg, cfg.Game.Black, b)
	if err != nil {
		return err
	}

	record, err := engine.NewLocal(white, black, b.Oracle, engine.WithMaxMoves(cfg.Game.MaxMoves)).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", record.Moves.Key(), record.Outcome)
	return nil
}

func trial(ctx context.Context, cfg config.Config) error {
	b, closeFn, err := connect(cfg, cfg.Trial.Engine, cfg.Trial.Opponent)
	if err != nil {
		return err
	}
	defer closeFn()

	name := cfg.Trial.Engine + "-vs-" + cfg.Trial.Opponent
	w, err := metrics.NewWriter(cfg.Trial.Output, name)
	if err != nil {
		return err
	}

	newPlayer := func(engineName string) (searcher.Searcher, error) {
		return agent.New(cfg, engineName, b)
	}
	summary, err := experiments.Run(ctx, experiments.Trial{
		Name:     name,
		Engine:   cfg.Trial.Engine,
		Opponent: cfg.Trial.Opponent,
		Games:    cfg.Trial.Games,
		MaxMoves: cfg.Game.MaxMoves,
	}, newPlayer, b.Oracle, w)
	if err != nil {
		return err
	}
	fmt.Printf("%d games: %d won, %d drawn, %d lost, %d unfinished, %.1f average half-moves\n",
		summary.Games, summary.Wins, summary.Draws, summary.Losses, summary.Unfinished, summary.AverageHalfMoves)
	return nil
}

func findMove(ctx context.Context, cfg config.Config, pos game.Position, dotPath string) error {
	name := cfg.Server.Engine
	b, closeFn, err := connect(cfg, name)
	if err != nil {
		return err
	}
	defer closeFn()

	options := []searcher.Option{searcher.WithMetrics(nil)}
	if dotPath != "" {
		f, err := os.Create(dotPath)
		if err != nil {
			return err
		}
		defer f.Close()
		options = append(options, searcher.WithTreeDump(f))
	}

	s, err := agent.New(cfg, name, b, options...)
	if err != nil {
		return err
	}
	move, err := s.FindMove(ctx, pos)
	if err != nil {
		return err
	}
	fmt.Println(move)
	return nil
}
