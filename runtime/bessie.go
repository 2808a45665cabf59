package main

import (
	"bufio"
	gocontext "context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/requiem-ai/bessie/backend"
	"github.com/requiem-ai/bessie/context"
	"github.com/requiem-ai/bessie/prompt"
	"github.com/requiem-ai/bessie/services"
	"github.com/requiem-ai/bessie/transcript"
	"github.com/requiem-ai/bessie/wrapper"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
	zerolog.TimeFieldFormat = time.RFC3339
	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))
	switch logLevel {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		fallthrough
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	model := flag.String("model", "gpt-4", "Chat model to use (dummy, gpt-*, claude-*)")
	system := flag.String("system", "You are a helpful programming assistant.", "System message")
	transcriptPath := flag.String("transcript", "bessie.md", "Transcript file path")
	templatePath := flag.String("template", "", "Custom prompt template file")
	maxTokens := flag.Int("max-tokens", 2000, "Response token budget")
	bot := flag.Bool("bot", false, "Run as a Telegram bot instead of the CLI")
	flag.Parse()

	if *bot {
		runBot()
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: bessie [flags] <request> [glob ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	request := flag.Arg(0)
	patterns := flag.Args()[1:]

	files, err := readFiles(patterns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read input files")
	}

	var opening string
	if *templatePath != "" {
		opening, err = prompt.RenderFile(*templatePath, request, files)
	} else {
		opening, err = prompt.Render(request, files)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to render prompt")
	}

	b, err := backend.FromModel(*model, 0, *maxTokens)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to select backend")
	}

	w := wrapper.NewChatWrapper(*system)
	out := transcript.New(*transcriptPath)
	if err := out.WriteArgs(*model, request, patterns); err != nil {
		log.Fatal().Err(err).Msg("failed to write transcript")
	}

	fmt.Printf("Prompt:\n%s\n\n", opening)
	runTurn(w, b, out, opening)

	// Further turns come from stdin until EOF.
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := out.WriteYou(line); err != nil {
			log.Fatal().Err(err).Msg("failed to write transcript")
		}
		runTurn(w, b, out, line)
	}
	fmt.Println()
}

func runTurn(w *wrapper.ChatWrapper, b backend.ChatBackend, out *transcript.Writer, observation string) {
	response, err := w.Run(gocontext.Background(), b, observation)
	if err != nil {
		log.Fatal().Err(err).Msg("backend request failed")
	}
	fmt.Printf("Bessie:\n%s\n\n", response)
	if err := out.WriteBessie(response); err != nil {
		log.Fatal().Err(err).Msg("failed to write transcript")
	}
}

// readFiles expands the glob patterns and returns file contents keyed
// by path. A pattern matching nothing is not an error; the model just
// sees fewer files.
func readFiles(patterns []string) (map[string]string, error) {
	files := make(map[string]string)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, err
			}
			if info.IsDir() {
				continue
			}
			content, err := os.ReadFile(match)
			if err != nil {
				return nil, err
			}
			files[match] = string(content)
		}
	}
	return files, nil
}

func runBot() {
	log.Info().Msg("Starting Bessie bot")

	ctx, err := context.NewCtx(
		&services.ChatService{},
		&services.TelegramService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build service context")
		return
	}

	if err := ctx.Run(); err != nil {
		log.Fatal().Err(err).Msg("service context exited")
	}
}
