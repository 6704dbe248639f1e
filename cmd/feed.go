package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/spotibuds/internal/formatter"
	"github.com/desertthunder/spotibuds/internal/models"
	"github.com/desertthunder/spotibuds/internal/shared"
	"github.com/desertthunder/spotibuds/internal/tasks"
	"github.com/urfave/cli/v3"
)

// loadPages fetches up to pages assembled feed pages, stopping early at
// end of feed.
func (r *Runner) loadPages(ctx context.Context, engine *tasks.FeedEngine, pages int, reset bool) ([]models.Slide, error) {
	if reset {
		engine.Reset()
		r.logger.Info("feed session reset")
	}

	var all []models.Slide
	for page := 0; page < pages; page++ {
		slides, err := engine.LoadPage(ctx)
		if errors.Is(err, shared.ErrEndOfFeed) {
			r.logger.Info("reached end of feed", "pages", page)
			break
		}
		if err != nil {
			return nil, err
		}
		all = append(all, slides...)
	}

	return all, nil
}

// FeedShow fetches ordered feed pages and prints them.
func (r *Runner) FeedShow(ctx context.Context, cmd *cli.Command) error {
	pages := int(cmd.Int("pages"))
	reset := cmd.Bool("reset")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	output := cmd.String("output")
	format := cmd.String("format")

	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return err
	}

	slides, err := r.loadPages(ctx, engine, pages, reset)
	if err != nil {
		return err
	}

	if len(slides) == 0 {
		return r.writePlain("Feed is empty.\n")
	}

	if output != "" {
		path, err := formatter.WriteSlidesExport(slides, format, output)
		if err != nil {
			return fmt.Errorf("failed to write feed export: %w", err)
		}
		return r.writePlain("✓ %d slides written to %s\n", len(slides), path)
	}

	if useJSON {
		return r.writeJSON(slides, pretty)
	}

	r.writePlainHeader("SpotiBuds Feed")
	for i, slide := range slides {
		r.writePlain("%2d. %s\n", i+1, slide.Title())
	}
	return nil
}

// FeedExport fetches feed pages and exports the reaction lists for
// every slide through the concurrent bulk exporter.
func (r *Runner) FeedExport(ctx context.Context, cmd *cli.Command) error {
	pages := int(cmd.Int("pages"))
	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("out-dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	engine, err := r.ensureEngine(ctx)
	if err != nil {
		return err
	}

	slides, err := r.loadPages(ctx, engine, pages, false)
	if err != nil {
		return err
	}
	if len(slides) == 0 {
		return r.writePlain("Feed is empty, nothing to export.\n")
	}

	r.writePlain("Exporting reactions for %d slides...\n\n", len(slides))

	prog := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, exportErr := engine.BulkExport(ctx, prog, slides, opts)
	close(prog)
	<-done

	if exportErr != nil {
		return exportErr
	}

	r.writePlainln("✓ Export complete")
	r.writePlain("Slides:    %d\n", result.TotalSlides)
	r.writePlain("Succeeded: %d\n", result.SuccessfulExports)
	r.writePlain("Failed:    %d\n", result.FailedExports)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Manifest:  %s\n", result.ManifestPath)
	return nil
}
