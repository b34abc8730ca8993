// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/faqbot"
	"github.com/poiesic/faqbot/cascade"
	"github.com/poiesic/faqbot/config"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/server"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "faqbot",
		Usage: "Answer FAQ questions from an intent bank and a document set",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to faqbot.yaml (defaults are used when empty)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a dotenv file with API credentials",
				Value: ".env",
			},
			&cli.IntFlag{
				Name:  "top-k",
				Usage: "Number of intent candidates considered per query",
			},
			&cli.Float64Flag{
				Name:  "threshold",
				Usage: "Minimum cosine similarity for an intent match",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (overrides server.addr)",
					},
					rebuildFlag(),
				},
			},
			{
				Name:      "ask",
				Usage:     "Resolve one question and print the result",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "Print each pipeline stage to stderr",
					},
				},
			},
			{
				Name:      "explain",
				Usage:     "Show the ranked intent candidates for a question",
				ArgsUsage: "<question>",
				Action:    explainCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "k",
						Aliases: []string{"n"},
						Usage:   "Number of candidates to show",
						Value:   server.DefaultExplainTopK,
					},
					&cli.Float64Flag{
						Name:  "cutoff",
						Usage: "Threshold used to mark candidates as accepted (negative uses the configured one)",
						Value: -1,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print JSON instead of a table",
					},
				},
			},
			{
				Name:   "intents",
				Usage:  "Summarize the intent bank and report intents without responses",
				Action: intentsCommand,
			},
			{
				Name:   "index",
				Usage:  "Embed the intent bank into the cache",
				Action: indexCommand,
				Flags:  []cli.Flag{rebuildFlag()},
			},
		},
	}
}

func rebuildFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "rebuild",
		Usage: "Discard cached embeddings for the configured model first",
	}
}

// loadSettings merges the config file, the environment and global flags.
func loadSettings(c *cli.Context) (*config.Config, *config.Env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	env, err := config.LoadEnv(c.String("env-file"))
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, nil, err
	}
	if c.IsSet("top-k") {
		cfg.Match.TopK = c.Int("top-k")
	}
	if c.IsSet("threshold") {
		cfg.Match.Threshold = c.Float64("threshold")
	}
	return cfg, env, cfg.Validate()
}

func openBot(ctx context.Context, c *cli.Context, opts ...faqbot.Option) (*faqbot.Bot, *config.Config, error) {
	cfg, env, err := loadSettings(c)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]faqbot.Option{
		faqbot.WithEnv(env),
		faqbot.WithRebuild(c.Bool("rebuild")),
	}, opts...)
	bot, err := faqbot.Open(ctx, cfg, opts...)
	return bot, cfg, err
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, cfg, err := openBot(ctx, c)
	if err != nil {
		return err
	}
	defer bot.Close()

	addr := cfg.Server.Addr
	if v := c.String("addr"); v != "" {
		addr = v
	}

	srv, err := bot.NewServer()
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx, addr)
}

func question(c *cli.Context) (string, error) {
	q := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if q == "" {
		return "", errors.New("a question is required")
	}
	return q, nil
}

func askCommand(c *cli.Context) error {
	q, err := question(c)
	if err != nil {
		return err
	}
	ctx := context.Background()

	bot, _, err := openBot(ctx, c)
	if err != nil {
		return err
	}
	defer bot.Close()

	var result core.Result
	if c.Bool("trace") {
		result = bot.ResolveWithMonitor(ctx, q, &printMonitor{w: c.App.ErrWriter})
	} else {
		result = bot.Resolve(ctx, q)
	}
	return printJSON(c.App.Writer, result)
}

func explainCommand(c *cli.Context) error {
	q, err := question(c)
	if err != nil {
		return err
	}
	ctx := context.Background()

	bot, _, err := openBot(ctx, c)
	if err != nil {
		return err
	}
	defer bot.Close()

	exp, err := bot.Explain(ctx, q, c.Int("k"), c.Float64("cutoff"))
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return printJSON(c.App.Writer, exp)
	}
	return printExplanation(c.App.Writer, exp)
}

func printExplanation(w io.Writer, exp *core.Explanation) error {
	fmt.Fprintf(w, "query: %s\nnormalized: %s\nthreshold: %.2f\n\n", exp.Query, exp.Normalized, exp.Threshold)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tINTENT\tRESPONSE\tACCEPTED\tEXAMPLE")
	for _, cand := range exp.Tried {
		fmt.Fprintf(tw, "%d\t%.4f\t%s\t%t\t%t\t%s\n",
			cand.Rank, cand.Score, cand.IntentID, cand.ResponseExists, cand.Accepted, cand.Example)
	}
	return tw.Flush()
}

func intentsCommand(c *cli.Context) error {
	cfg, _, err := loadSettings(c)
	if err != nil {
		return err
	}
	corpus, err := faqbot.LoadCorpus(cfg.Paths, slog.Default())
	if err != nil {
		return err
	}

	w := c.App.Writer
	var missing []string
	examples := 0
	for _, src := range corpus.Sources {
		srcExamples := 0
		for _, it := range src.Intents {
			srcExamples += len(it.Examples)
			if !corpus.Responses.Has(core.ResponseKey(it.ID)) {
				missing = append(missing, it.ID)
			}
		}
		examples += srcExamples
		fmt.Fprintf(w, "%s: %d intents, %d examples\n", src.Name, len(src.Intents), srcExamples)
	}
	fmt.Fprintf(w, "total: %d examples, %d responses, %d documents\n",
		examples, len(corpus.Responses), len(corpus.Documents))

	if len(missing) > 0 {
		sort.Strings(missing)
		fmt.Fprintf(w, "intents without a response: %s\n", strings.Join(missing, ", "))
	}
	return nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()
	bot, _, err := openBot(ctx, c, faqbot.WithProgress(c.App.ErrWriter))
	if err != nil {
		return err
	}
	defer bot.Close()

	cached, err := bot.CachedEmbeddings(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "indexed %d examples with %s (%d cached)\n",
		bot.Index().Len(), bot.Index().ModelID(), cached)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMonitor writes pipeline stages as they happen.
type printMonitor struct {
	w io.Writer
}

func (m *printMonitor) Start(query string) {
	fmt.Fprintf(m.w, "resolving %q\n", query)
}

func (m *printMonitor) IntentMatched(result core.Result) {
	fmt.Fprintln(m.w, "intent matched")
}

func (m *printMonitor) IntentMissed() {
	fmt.Fprintln(m.w, "no intent above threshold")
}

func (m *printMonitor) IntentUnavailable(err error) {
	fmt.Fprintf(m.w, "intent stage unavailable: %v\n", err)
}

func (m *printMonitor) DocumentScanned(doc core.DocumentDescriptor, outcome cascade.ScanOutcome) {
	fmt.Fprintf(m.w, "  %s: %s\n", doc.Filename, outcome)
}

func (m *printMonitor) SecondaryStarted(reason string, documents int) {
	fmt.Fprintf(m.w, "full-text fallback over %d documents (%s)\n", documents, reason)
}

func (m *printMonitor) Finish(result core.Result) {
	fmt.Fprintf(m.w, "done: %s\n", result.Kind)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
