package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Rrens/datachat/internal/config"
	"github.com/Rrens/datachat/internal/insight"
	"github.com/Rrens/datachat/internal/llm"
	"github.com/Rrens/datachat/internal/llm/anthropic"
	"github.com/Rrens/datachat/internal/llm/gemini"
	"github.com/Rrens/datachat/internal/llm/ollama"
	"github.com/Rrens/datachat/internal/llm/openai"
	"github.com/Rrens/datachat/internal/session"
	"github.com/Rrens/datachat/internal/visualization"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var plotsDir string

var rootCmd = &cobra.Command{
	Use:   "datachat [file]",
	Short: "AI-powered analysis and chat over a tabular dataset",
	Long: `datachat loads a CSV dataset, produces descriptive statistics and chart
images, and answers questions about the data through a hosted chat model.

With a file argument it loads the dataset, runs a full analysis, generates
all visualizations and enters an interactive chat loop. Without arguments it
starts an interactive command loop.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&plotsDir, "plots", "", "directory for generated plot images (default from config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Keep the interactive loop readable; only plot-skip warnings and
	// errors go to stderr.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if plotsDir == "" {
		plotsDir = cfg.Plots.OutputDir
	}

	router := llm.NewRouter(cfg.LLM.DefaultProvider)
	if cfg.LLM.Gemini.APIKey != "" {
		router.RegisterProvider(gemini.NewProvider(cfg.LLM.Gemini.APIKey, cfg.LLM.Gemini.Model))
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		router.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
	}
	if cfg.LLM.Anthropic.APIKey != "" {
		router.RegisterProvider(anthropic.NewProvider(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model))
	}
	if cfg.LLM.Ollama.Host != "" {
		router.RegisterProvider(ollama.NewProvider(cfg.LLM.Ollama.Host, cfg.LLM.Ollama.DefaultModel))
	}

	insightClient := insight.NewClient(router, cfg.LLM.DefaultProvider, "", cfg.LLM.RequestTimeout, log.Logger)
	generator := visualization.NewGenerator(log.Logger)
	sess := session.New(insightClient, generator, log.Logger)

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("datachat - AI-powered dataset analysis")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()

	if len(args) == 1 {
		return runWithFile(cmd, sess, args[0])
	}
	return runInteractive(cmd, sess)
}

// runWithFile loads the dataset, runs a full analysis, generates all
// visualizations and drops into the chat loop
func runWithFile(cmd *cobra.Command, sess *session.Session, path string) error {
	fmt.Printf("Loading dataset: %s\n", path)
	profile, err := sess.Load(path)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded dataset: %d rows, %d columns\n", profile.Rows, profile.Cols)

	fmt.Println("\nGenerating analysis...")
	fmt.Println()
	fmt.Println(sess.Analyze(cmd.Context(), ""))

	fmt.Println("\nGenerating visualizations...")
	paths, err := sess.Visualize(plotsDir, nil)
	if err != nil {
		fmt.Printf("Error generating visualizations: %v\n", err)
	} else {
		fmt.Printf("Generated %d visualizations in %q\n", len(paths), plotsDir)
		for _, p := range paths {
			fmt.Printf("  - %s\n", p)
		}
	}

	fmt.Println("\nAsk questions about your data! Type 'exit' to quit.")
	fmt.Println()
	return chatLoop(cmd, sess)
}

// runInteractive starts the command loop with no dataset loaded
func runInteractive(cmd *cobra.Command, sess *session.Session) error {
	fmt.Println("Commands:")
	fmt.Println("  load <file_path>  - Load a CSV file")
	fmt.Println("  analyze           - Get automatic analysis")
	fmt.Println("  plots             - Generate visualizations")
	fmt.Println("  exit              - Quit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if isExit(input) {
			fmt.Println("Goodbye!")
			return nil
		}

		switch {
		case strings.HasPrefix(input, "load "):
			path := strings.TrimSpace(strings.TrimPrefix(input, "load "))
			profile, err := sess.Load(path)
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Dataset loaded: %d rows, %d columns\n", profile.Rows, profile.Cols)

		case strings.EqualFold(input, "analyze"):
			fmt.Println("\nAnalyzing...")
			fmt.Println()
			fmt.Println(sess.Analyze(cmd.Context(), ""))
			fmt.Println()

		case strings.EqualFold(input, "plots"):
			paths, err := sess.Visualize(plotsDir, nil)
			if err != nil {
				fmt.Println("Please load a dataset first using 'load <file_path>'")
				continue
			}
			fmt.Printf("Generated %d visualizations\n", len(paths))
			for _, p := range paths {
				fmt.Printf("  - %s\n", p)
			}
			fmt.Println()

		default:
			fmt.Printf("\nAssistant: %s\n\n", sess.Chat(cmd.Context(), input))
		}
	}
	return scanner.Err()
}

func chatLoop(cmd *cobra.Command, sess *session.Session) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if isExit(input) {
			fmt.Println("Goodbye!")
			return nil
		}
		fmt.Printf("\nAssistant: %s\n\n", sess.Chat(cmd.Context(), input))
	}
	return scanner.Err()
}

func isExit(input string) bool {
	switch strings.ToLower(input) {
	case "exit", "quit", "q":
		return true
	}
	return false
}
