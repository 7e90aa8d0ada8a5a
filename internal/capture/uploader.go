// ABOUTME: Submits a batch as one report and resets it on success
// ABOUTME: Empty batches are rejected locally without a backend call

package capture

import (
	"context"
	"log/slog"
	"sync"

	"github.com/markalston/fieldreport/internal/models"
)

// Reporter sends a report; satisfied by *client.Client
type Reporter interface {
	SubmitReport(ctx context.Context, images []string) (*models.Receipt, error)
}

// Uploader submits the contents of Batch through Reporter
type Uploader struct {
	Reporter   Reporter
	Batch      *Batch
	OnComplete func(*models.Receipt)

	mu sync.Mutex
}

// Submit sends the batch. On success the batch is cleared and OnComplete
// runs once; on failure the batch is left intact for a retry. Concurrent
// calls are serialized so a batch is never sent twice.
func (u *Uploader) Submit(ctx context.Context) (*models.Receipt, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	images := u.Batch.DataURIs()
	if len(images) == 0 {
		return nil, &ValidationError{Message: "Please select or capture at least one image."}
	}

	slog.Debug("Submitting report", "images", len(images))
	receipt, err := u.Reporter.SubmitReport(ctx, images)
	if err != nil {
		slog.Info("Report submission failed", "images", len(images), "error", err)
		return nil, err
	}

	u.Batch.Clear()
	if u.OnComplete != nil {
		u.OnComplete(receipt)
	}
	return receipt, nil
}
