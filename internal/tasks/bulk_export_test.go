package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotibuds/internal/models"
	internaltesting "github.com/desertthunder/spotibuds/internal/testing"
)

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	client := &internaltesting.MockClient{
		ReactionsFunc: func(ctx context.Context, contentID string) ([]models.Reaction, error) {
			if strings.Contains(contentID, "flaky") {
				return nil, errors.New("backend timeout")
			}
			return []models.Reaction{{Emoji: "🔥", FromUserID: "u2", FromUserName: "Grace"}}, nil
		},
	}
	engine := newEngine(client, newFakeSeen(), nil)

	slides := []models.Slide{
		songSlide("u1", "s1"),
		songSlide("flaky", "s2"),
		songSlide("u3", "s3"),
	}

	t.Run("collects partial failures and writes a manifest", func(t *testing.T) {
		dir := t.TempDir()
		prog := make(chan ProgressUpdate, 16)

		result, err := engine.BulkExport(ctx, prog, slides, BulkExportOpts{
			Format:     "csv",
			OutputDir:  dir,
			NumWorkers: 2,
			RateLimit:  1000,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.TotalSlides != 3 || result.SuccessfulExports != 2 || result.FailedExports != 1 {
			t.Errorf("counts: total=%d ok=%d failed=%d",
				result.TotalSlides, result.SuccessfulExports, result.FailedExports)
		}

		internaltesting.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		if result.ManifestPath == "" {
			t.Error("manifest path not recorded")
		}

		for _, res := range result.Results {
			if res.Success {
				for _, f := range res.Files {
					internaltesting.AssertFileExists(t, f)
				}
			} else if res.Error == "" {
				t.Errorf("failed result missing error: %+v", res)
			}
		}

		if len(prog) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("defaults the output directory", func(t *testing.T) {
		wd := internaltesting.MustGetwd(t)
		tmp := t.TempDir()
		if err := os.Chdir(tmp); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer os.Chdir(wd)

		result, err := engine.BulkExport(ctx, nil, slides[:1], BulkExportOpts{RateLimit: 1000})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(filepath.Base(result.OutputDirectory), "buds_export_") {
			t.Errorf("unexpected output dir: %s", result.OutputDirectory)
		}
	})
}
