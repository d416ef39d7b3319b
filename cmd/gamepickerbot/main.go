package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/EgorLis/gamepickerbot/internal/bot"
	"github.com/EgorLis/gamepickerbot/internal/config"
	"github.com/EgorLis/gamepickerbot/internal/gateway"
	"github.com/EgorLis/gamepickerbot/internal/metrics"
	"github.com/EgorLis/gamepickerbot/internal/state"
)

// три таймаута чтения без кадров и pong — шлюз считаем мёртвым
const maxGatewayIdle = 90 * time.Second

func main() {
	app := &cli.App{
		Name:  "gamepickerbot",
		Usage: "chat bot that keeps the group's game list and picks what to play",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"GAMEPICKER_CONFIG"},
			},
		},
		Action: runBot,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "connect to the gateway and serve commands",
				Action: runBot,
			},
			{
				Name:      "validate",
				Usage:     "check that a save file hydrates cleanly",
				ArgsUsage: "<file>",
				Action:    validateFile,
			},
			{
				Name:   "games",
				Usage:  "print the game list from the save (or starter) file",
				Action: printGames,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	lvl, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	return cfg, logger, nil
}

func runBot(c *cli.Context) error {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	store := state.NewStore(cfg.State.SavePath, cfg.State.StarterPath)
	st, path, err := store.Load()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	logger.Info("state loaded", "path", path, "games", len(st.Games))

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := gateway.New(gateway.Config{
		URL:   cfg.Gateway.URL,
		Token: cfg.Gateway.Token,
		Guild: cfg.Bot.Guild,
	})

	var m *metrics.Metrics
	if cfg.Metrics.Address != "" {
		m = metrics.New()
		m.SetHealthCheck(func() error { return gw.Health(maxGatewayIdle) })
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.Address, m.Handler(), logger); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	b := bot.New(gw, store, st, bot.Options{
		Name:           cfg.Bot.Name,
		Prefix:         cfg.Bot.Prefix,
		GeneralChannel: cfg.Bot.GeneralChannel,
		Location:       loc,
		HistoryLimit:   cfg.Bot.HistoryLimit,
		AutosaveEvery:  cfg.State.AutosaveEach,
		Logger:         logger.With("component", "bot"),
		Metrics:        m,
	})
	b.Bind(gw)

	if err := b.Start(ctx); err != nil {
		return err
	}
	defer b.Stop()

	if err := gw.Connect(ctx); err != nil {
		return fmt.Errorf("connect to gateway: %w", err)
	}
	defer gw.Disconnect()

	logger.Info("running… press Ctrl+C to stop")

	select {
	case <-ctx.Done():
		logger.Info("signal received, shutting down")
	case <-b.Done():
		logger.Info("asked to leave, shutting down")
	}
	return nil
}

func validateFile(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("usage: gamepickerbot validate <file>")
	}
	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}
	st, err := state.DecodeState(data)
	if err != nil {
		return err
	}
	fmt.Printf("ok: %d games, %d suggestions, %d greetings, %d farewells\n",
		len(st.Games), len(st.Suggestions), len(st.Greetings), len(st.Farewells))
	return nil
}

func printGames(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	st, path, err := state.NewStore(cfg.State.SavePath, cfg.State.StarterPath).Load()
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n", path)
	for _, g := range st.Games {
		fmt.Printf("%s\t+%d/-%d\thost:%s\n", g.Name, g.UpVotes, g.DownVotes, g.HostVote)
	}
	return nil
}
