// Command sahayak is the CLI host for the grounded farming assistant:
// a chat REPL over the orchestrator and a seed command that loads the
// advisory/scheme corpus into the configured vector store.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/krishidhan/sahayak/config"
	"github.com/krishidhan/sahayak/corpus"
	"github.com/krishidhan/sahayak/logging"
)

var (
	configFlag  string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "sahayak",
	Short: "sahayak - grounded assistant for Indian farmers",
	Long: `sahayak answers farming questions from verified data sources only:
weather providers, place search, the FPO directory, and a seeded corpus
of crop advisories and government schemes. It refuses to invent facts.`,
	SilenceUsage: true,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant",
	RunE:  runChat,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the advisory and scheme corpus into the vector store",
	RunE:  runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(chatCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the root logger shared by both
// commands.
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if verboseFlag {
		cfg.Logging.Level = "debug"
	}
	return cfg, logging.New(cfg.Logging), nil
}

const chatHelp = `Commands:
  /context   show what the assistant remembers
  /clear     forget location and history
  /help      this message
  /exit      leave (also /quit)

Anything else is a question. Tell me where you farm first, for example:
  set my location to Patna, Bihar`

func runChat(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	fmt.Println("sahayak - weather, schemes, FPOs, shops and crop advisories (/help for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "/exit", "/quit", "exit", "quit":
			return nil
		case "/help":
			fmt.Println(chatHelp)
			continue
		case "/context":
			fmt.Println(orch.Session().Snapshot().Describe())
			continue
		case "/clear":
			orch.Session().Reset()
			fmt.Println("Context cleared.")
			continue
		}

		reply, err := orch.Respond(ctx, input)
		if err != nil {
			// Only context cancellation escapes Respond.
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		fmt.Println("\n" + reply.Text)
	}
	return scanner.Err()
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	emb, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return err
	}
	if emb == nil {
		return fmt.Errorf("seeding needs an embedder: set embedder.provider (openai or gemini) and its API key")
	}
	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}

	files, err := corpus.LoadDir(cfg.Corpus.Dir)
	if err != nil {
		return err
	}

	seeder := corpus.NewSeeder(emb, engine,
		corpus.WithLogger(logger.With().Str("component", "seeder").Logger()))
	report, err := seeder.Seed(ctx, files...)
	if err != nil {
		return err
	}

	for collection, chunks := range report.PerCollection {
		fmt.Printf("  %s: %d chunks\n", collection, chunks)
	}
	fmt.Printf("Seeded %d documents (%d chunks) from %s into the %s engine.\n",
		report.Documents, report.Chunks, cfg.Corpus.Dir, cfg.Vector.Engine)
	return nil
}
