package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/spotibuds/internal/formatter"
	"github.com/desertthunder/spotibuds/internal/models"
	"github.com/desertthunder/spotibuds/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk reaction exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: buds_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Requests per second (default: 5)
}

// SlideExportResult is the outcome of exporting one slide's reactions.
type SlideExportResult struct {
	Fingerprint string   `json:"fingerprint"`
	Title       string   `json:"title"`
	Success     bool     `json:"success"`
	Files       []string `json:"files,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk reaction export.
type BulkExportResult struct {
	TotalSlides       int                 `json:"total_slides"`
	SuccessfulExports int                 `json:"successful_exports"`
	FailedExports     int                 `json:"failed_exports"`
	OutputDirectory   string              `json:"output_directory"`
	ManifestPath      string              `json:"manifest_path,omitempty"`
	Results           []SlideExportResult `json:"results"`
}

// BulkExport fetches and writes the reaction lists for multiple slides
// concurrently, with rate limiting and progress tracking.
//
// A worker pool fetches reactions per slide, respecting the shared rate
// limiter, and writes each list through the formatter. Partial failures
// are collected rather than aborting, and a manifest file summarizing
// the run is written last.
func (e *FeedEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	slides []models.Slide,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: backend client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("buds_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalSlides:     len(slides),
		OutputDirectory: opts.OutputDir,
		Results:         make([]SlideExportResult, 0, len(slides)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan models.Slide, len(slides))
	results := make(chan SlideExportResult, len(slides))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	for _, slide := range slides {
		jobs <- slide
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(slides), res.Title, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(slides), res.Title, fmt.Errorf("%s", res.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteExportManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))

	return result, nil
}

// exportWorker drains the jobs channel, fetching and writing one
// slide's reactions per job.
func (e *FeedEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan models.Slide,
	results chan<- SlideExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for slide := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportSingleSlide(ctx, limiter, slide, opts)
	}
}

func (e *FeedEngine) exportSingleSlide(
	ctx context.Context,
	limiter *rate.Limiter,
	slide models.Slide,
	opts BulkExportOpts,
) SlideExportResult {
	result := SlideExportResult{
		Fingerprint: slide.Fingerprint(),
		Title:       slide.Title(),
	}

	if err := limiter.Wait(ctx); err != nil {
		result.Error = fmt.Sprintf("rate limiter: %v", err)
		return result
	}

	reactionList, err := e.client.Reactions(ctx, result.Fingerprint)
	if err != nil {
		result.Error = fmt.Sprintf("failed to fetch reactions: %v", err)
		return result
	}

	files, err := formatter.WriteReactionsExport(slide, reactionList, opts.Format, opts.OutputDir)
	if err != nil {
		result.Error = fmt.Sprintf("failed to write export: %v", err)
		return result
	}

	result.Files = files
	result.Success = true
	return result
}
