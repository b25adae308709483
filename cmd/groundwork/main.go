// Copyright 2025 Attune Works
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/attuneworks/groundwork"
	"github.com/attuneworks/groundwork/ai"
	"github.com/attuneworks/groundwork/core"
	"github.com/attuneworks/groundwork/domaincfg"
	"github.com/attuneworks/groundwork/reindex"
)

func main() {
	app := &cli.App{
		Name:  "groundwork",
		Usage: "Domain-aware knowledge retrieval for coaching agents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Ingest knowledge documents into a domain",
				ArgsUsage: "FILE [FILE...]",
				Action:    indexCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "domain",
						Usage:    "Domain to ingest into (e.g. life_coaching)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Document category",
						Value: "general",
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Document author",
					},
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "Document metadata as key=value (repeatable)",
					},
					&cli.DurationFlag{
						Name:  "embed-timeout",
						Usage: "How long to wait for async embedding to finish",
						Value: 2 * time.Minute,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Run the retrieval pipeline for a query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "domain",
						Usage:    "Domain to search (e.g. life_coaching)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "methodology",
						Usage: "Preferred methodology for personalization",
					},
					&cli.StringFlag{
						Name:  "life-area",
						Usage: "Life area hint for personalization",
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed stored chunks after an embedding model change",
				Action: reindexCommand,
				Flags: append(storeFlags(),
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-embed every chunk, not just stale ones",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
			{
				Name:  "domains",
				Usage: "Domain configuration tools",
				Subcommands: []*cli.Command{
					{
						Name:   "validate",
						Usage:  "Validate every domain config in a directory",
						Action: domainsValidateCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "configs",
								Aliases:  []string{"c"},
								Usage:    "Path to domain config directory",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "environment",
								Usage: "Environment override to apply (e.g. production)",
							},
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// storeFlags are the flags shared by every command that opens the store.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "configs",
			Aliases:  []string{"c"},
			Usage:    "Path to domain config directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "environment",
			Usage: "Environment override to apply (e.g. production)",
		},
	}
}

func openService(c *cli.Context) (*groundwork.Service, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []groundwork.ServiceOption{
		groundwork.WithAIConfig(aiConfig),
	}
	if env := c.String("environment"); env != "" {
		opts = append(opts, groundwork.WithEnvironment(env))
	}

	svc, err := groundwork.NewService(c.String("db"), c.String("configs"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open service: %w", err)
	}
	return svc, nil
}

func indexCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	metadata := make(map[string]string)
	for _, pair := range c.StringSlice("meta") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		metadata[key] = value
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	pipeline, err := svc.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	ctx := context.Background()
	domain := c.String("domain")

	docs := make([]*core.KnowledgeDocument, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		docs = append(docs, &core.KnowledgeDocument{
			SourceKey: filepath.Base(path),
			Domain:    domain,
			Title:     title,
			Body:      string(body),
			Category:  c.String("category"),
			Author:    c.String("author"),
			Metadata:  metadata,
		})
	}

	if err := pipeline.Ingest(ctx, docs...); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Stored %d documents, embedding chunks...\n", len(docs))

	if err := waitForEmbedding(ctx, svc, docs, c.Duration("embed-timeout")); err != nil {
		return err
	}

	chunks, err := svc.ChunkRepository().CountChunks(ctx, domain)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Done. Domain %s now has %d chunks.\n", domain, chunks)
	return nil
}

// waitForEmbedding polls until every ingested document has an embedded
// chunk set. Embedding runs on the pipeline's worker pool.
func waitForEmbedding(ctx context.Context, svc *groundwork.Service, docs []*core.KnowledgeDocument, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		embedded := 0
		for _, doc := range docs {
			chunks, err := svc.ChunkRepository().GetChunksByDocument(ctx, doc.Id)
			if err != nil {
				return err
			}
			if len(chunks) > 0 && len(chunks[0].Vector) > 0 {
				embedded++
			}
		}
		if embedded == len(docs) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("embedding did not finish within %v (%d/%d documents)", timeout, embedded, len(docs))
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	dctx := &core.DomainContext{
		PreferredMethodology: c.String("methodology"),
		LifeArea:             c.String("life-area"),
	}

	results, err := svc.Retrieve(context.Background(), c.String("domain"), query, dctx)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' [%0.3f -> %0.3f]\n", i, hit.DocumentTitle, hit.OriginalScore, hit.BoostedScore)
		fmt.Printf("   %s\n", snippet(hit.Content, 120))
	}
	return nil
}

// snippet truncates content for terminal display.
func snippet(content string, limit int) string {
	content = strings.Join(strings.Fields(content), " ")
	if len(content) <= limit {
		return content
	}
	return content[:limit] + "..."
}

func reindexCommand(c *cli.Context) error {
	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	reindexer := svc.NewReindexer(config, os.Stderr)
	if err := reindexer.Run(context.Background(), c.Bool("force")); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
}

func domainsValidateCommand(c *cli.Context) error {
	var opts []domaincfg.Option
	if env := c.String("environment"); env != "" {
		opts = append(opts, domaincfg.WithEnvironment(env))
	}

	loader, err := domaincfg.NewLoader(c.String("configs"), opts...)
	if err != nil {
		return err
	}
	defer loader.Close()

	results, err := loader.LoadAll(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load configs: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no domain configs found in %s", c.String("configs"))
	}

	failed := 0
	for domain, result := range results {
		if result.Config == nil {
			failed++
			fmt.Printf("%s: INVALID\n", domain)
			for _, msg := range result.Errors {
				fmt.Printf("  error: %s\n", msg)
			}
			continue
		}

		validation := domaincfg.Validate(result.Config)
		fmt.Printf("%s: OK (completeness %.0f%%, source %s)\n",
			domain, validation.Completeness*100, result.Source)
		for _, msg := range validation.Warnings {
			fmt.Printf("  warning: %s\n", msg)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d domain configs failed validation", failed, len(results))
	}
	return nil
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
