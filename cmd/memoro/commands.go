package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/memoro/memoro/config"
	"github.com/memoro/memoro/internal/backfill"
	"github.com/memoro/memoro/internal/crm"
	"github.com/memoro/memoro/internal/embeddings"
	"github.com/memoro/memoro/internal/search"
	"github.com/memoro/memoro/internal/store"
)

// searchCommand runs a one-shot unified search and prints ranked results
func searchCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	queryText := strings.Join(c.Args().Slice(), " ")
	userID, err := uuid.Parse(c.String("user"))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	mode, err := search.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}
	limit := c.Int("limit")
	if limit == 0 {
		limit = cfg.Search.DefaultLimit
	}

	db, err := store.New(cfg.Database.ConnectionString)
	if err != nil {
		return err
	}
	defer db.Close()

	embedder := embeddings.NewTextEmbedder(cfg.Ollama.BaseURL, cfg.Ollama.EmbeddingModel)
	svc, err := search.NewService(db, db, embedder,
		search.WithFuzzyThreshold(cfg.Search.FuzzyThreshold),
		search.WithEmbedTimeout(cfg.Search.EmbedTimeout.Std()),
	)
	if err != nil {
		return err
	}

	results, err := svc.Search(c.Context, userID, queryText, mode, limit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. [%.3f] %s\n", i+1, r.Score, formatResult(r))
	}
	return nil
}

func formatResult(r search.Result) string {
	switch r.Type {
	case search.EntityContact:
		c := r.Contact
		line := fmt.Sprintf("contact  %s %s", c.FirstName, c.LastName)
		if c.LatestNews != nil && *c.LatestNews != "" {
			line += fmt.Sprintf(" — %s", *c.LatestNews)
		}
		return line
	case search.EntityInteraction:
		in := r.Interaction
		line := fmt.Sprintf("interaction  %s with %s %s: %s",
			in.InteractionDate.Format("2006-01-02"),
			in.ContactFirstName, in.ContactLastName, in.Notes)
		if in.Location != nil && *in.Location != "" {
			line += fmt.Sprintf(" (%s)", *in.Location)
		}
		return line
	}
	return string(r.Type)
}

// recordCommand persists one interaction for a contact, creating the
// contact and any mentioned relatives on first reference
func recordCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(c.String("user"))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	if c.String("date") != "" {
		day, err = time.Parse("2006-01-02", c.String("date"))
		if err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}
	}

	var family []crm.FamilyMention
	for _, raw := range c.StringSlice("family") {
		mention, err := parseFamilyMention(raw)
		if err != nil {
			return err
		}
		family = append(family, mention)
	}

	var location *string
	if loc := c.String("location"); loc != "" {
		location = &loc
	}

	db, err := store.New(cfg.Database.ConnectionString)
	if err != nil {
		return err
	}
	defer db.Close()

	recorder, err := crm.NewRecorder(db, nil)
	if err != nil {
		return err
	}

	result, err := recorder.Record(c.Context, userID, crm.InteractionRecord{
		FirstName: c.String("first-name"),
		LastName:  c.String("last-name"),
		Date:      day,
		Notes:     c.String("notes"),
		Location:  location,
		Family:    family,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Recorded interaction %s for contact %s (%d family members linked)\n",
		result.InteractionID, result.ContactID, result.FamilyLinked)
	return nil
}

// parseFamilyMention parses "First[ Last]:relationship"
func parseFamilyMention(raw string) (crm.FamilyMention, error) {
	name, relationship, ok := strings.Cut(raw, ":")
	if !ok || name == "" || relationship == "" {
		return crm.FamilyMention{}, fmt.Errorf("invalid family mention %q, expected 'First[ Last]:relationship'", raw)
	}
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	return crm.FamilyMention{
		FirstName:    first,
		LastName:     strings.TrimSpace(last),
		Relationship: strings.TrimSpace(relationship),
	}, nil
}

// backfillCommand embeds interactions created without an embedding
func backfillCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	batchSize := c.Int("batch-size")
	if batchSize == 0 {
		batchSize = cfg.Backfill.BatchSize
	}
	workers := c.Int("workers")
	if workers == 0 {
		workers = cfg.Backfill.Workers
	}

	db, err := store.New(cfg.Database.ConnectionString)
	if err != nil {
		return err
	}
	defer db.Close()

	embedder := embeddings.NewTextEmbedder(cfg.Ollama.BaseURL, cfg.Ollama.EmbeddingModel)
	filler, err := backfill.New(db, embedder,
		backfill.WithBatchSize(batchSize),
		backfill.WithWorkers(workers),
		backfill.WithRetry(cfg.Backfill.MaxRetries, cfg.Backfill.RetryDelay.Std()),
	)
	if err != nil {
		return err
	}

	embedded, err := filler.Run(c.Context)
	if err != nil {
		return err
	}
	fmt.Printf("Embedded %d interactions\n", embedded)
	return nil
}

// initConfigCommand writes the default configuration, refusing to
// overwrite an existing file
func initConfigCommand(c *cli.Context) error {
	path := c.String("config")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".memoro", "config.yaml")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := config.Default().Save(path); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", path)
	return nil
}

// migrateCommand applies *.up.sql files from the migrations directory in
// lexical order
func migrateCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	db, err := store.New(cfg.Database.ConnectionString)
	if err != nil {
		return err
	}
	defer db.Close()

	pattern := filepath.Join(cfg.Paths.MigrationsDir, "*.up.sql")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no migration files found in %s", cfg.Paths.MigrationsDir)
	}
	sort.Strings(files)

	for _, file := range files {
		sql, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if _, err := db.Pool().Exec(c.Context, string(sql)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
		fmt.Printf("Applied %s\n", filepath.Base(file))
	}
	return nil
}
