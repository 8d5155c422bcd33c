// The drone binary is a single child chatbot: one Discord token, one
// Gemini persona. The solver spawns drones as subprocesses, passing the
// persona on the command line and the secrets in the environment.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Uzidoorman9/Absolute-Solver/internal/chat"
)

var persona string

var rootCmd = &cobra.Command{
	Use:   "drone",
	Short: "A single Gemini-backed Discord chatbot",
	Long: `drone connects one bot token to one Gemini persona and replies to
every non-bot message it can see.

Secrets come from the environment, never from flags:
  DRONE_DISCORD_TOKEN  Discord bot token (required)
  GEMINI_API_KEY       Gemini API key (required)
  DRONE_MODEL          Model name (default gemini-2.5-flash)`,
	RunE: runDrone,
}

func init() {
	rootCmd.Flags().StringVar(&persona, "persona", "", "Persona prompt shaping every reply")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDrone(cmd *cobra.Command, args []string) error {
	token := os.Getenv("DRONE_DISCORD_TOKEN")
	if token == "" {
		return fmt.Errorf("DRONE_DISCORD_TOKEN is not set")
	}
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	replier, err := chat.NewGemini(ctx, apiKey, os.Getenv("DRONE_MODEL"), persona)
	if err != nil {
		return err
	}
	bot, err := chat.NewBot(token, replier)
	if err != nil {
		return err
	}
	return bot.Run(ctx)
}
