// The solver binary is the manager bot: it runs the oil economy, the
// shop, role synchronization, and the drone spawner over one Discord
// gateway connection.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Uzidoorman9/Absolute-Solver/internal/children"
	"github.com/Uzidoorman9/Absolute-Solver/internal/config"
	"github.com/Uzidoorman9/Absolute-Solver/internal/economy"
	"github.com/Uzidoorman9/Absolute-Solver/internal/gateway"
	"github.com/Uzidoorman9/Absolute-Solver/internal/logging"
	"github.com/Uzidoorman9/Absolute-Solver/internal/roles"
)

const version = "1.2.0"

var (
	// Global flags
	configPath string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "solver",
	Short: "Absolute Solver - Discord economy manager bot",
	Long: `Absolute Solver runs a guild economy on Discord: members earn oil,
level up through chatter and purchases, trade at the company store, and
the bot keeps the guild's tier roles and the Oil Baron crown in sync
with the ledger. Admins can fork child "drone" chatbots backed by
Gemini, each with its own token and persona.

All economy state is in memory and resets on restart.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runSolver,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the solver version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("solver %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "solver.yaml", "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSolver(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Discord.Token == "" {
		return fmt.Errorf("no discord token: set discord.token in %s or DISCORD_TOKEN in the environment", configPath)
	}

	if err := logging.Initialize(filepath.Join(cfg.StateDir, "logs"), cfg.Logging.Enabled, cfg.Logging.Level); err != nil {
		return err
	}
	defer logging.CloseAll()
	logging.Boot("solver %s starting", version)

	// Economy core.
	journal := economy.NewJournal(cfg.Economy.JournalLimit)
	ledger := economy.NewLedger(cfg.Economy.StartBalance, journal)
	catalog, err := economy.NewCatalog(cfg.Economy.Shop)
	if err != nil {
		return err
	}
	exchange := economy.NewExchange(ledger, catalog)

	// Drone spawner.
	supervisor := children.NewSupervisor(children.Config{
		Binary:       cfg.Drones.Binary,
		GeminiAPIKey: cfg.Drones.GeminiAPIKey,
		Model:        cfg.Drones.Model,
		MaxActive:    cfg.Drones.MaxActive,
	}, nil)
	defer supervisor.StopAll()

	// Gateway. The role synchronizer hangs off the bot's session, so it
	// attaches after construction.
	router := gateway.NewRouter()
	bot, err := gateway.NewBot(gateway.BotConfig{
		Token:           cfg.Discord.Token,
		GuildID:         cfg.Discord.GuildID,
		MessageXP:       cfg.Economy.MessageXP,
		MessageCooldown: cfg.Economy.MessageCooldownDuration(),
	}, router, ledger)
	if err != nil {
		return err
	}

	dir := roles.NewDiscordDirectory(bot.Session())
	sync := roles.NewSynchronizer(dir, cfg.Economy.Tiers, cfg.Economy.TopRole)
	bot.SetSynchronizer(sync)

	cmds := gateway.NewCommands(ledger, exchange, journal, sync, cfg.Economy.Tiers, supervisor, nil)
	cmds.Register(router)

	// Hot-reload the shop catalog on config edits. Tier and connection
	// changes still need a restart.
	watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) {
		newCatalog, err := economy.NewCatalog(newCfg.Economy.Shop)
		if err != nil {
			logger.Warn("Reloaded config has a bad catalog", zap.Error(err))
			return
		}
		exchange.SwapCatalog(newCatalog)
		logger.Info("Shop catalog reloaded", zap.Int("items", len(newCfg.Economy.Shop)))
	})
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("Config watcher failed to start", zap.Error(err))
	} else {
		defer watcher.Stop()
	}

	logger.Info("Connecting to Discord",
		zap.String("guild", cfg.Discord.GuildID),
		zap.Int("shop_items", len(cfg.Economy.Shop)))
	return bot.Run(ctx)
}
