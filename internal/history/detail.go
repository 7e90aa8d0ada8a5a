// ABOUTME: Fetches a single report log entry by its identifier
// ABOUTME: Malformed identifiers are rejected before any request is made

package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/markalston/fieldreport/internal/models"
)

// ErrInvalidID means a log identifier is not a UUID
var ErrInvalidID = errors.New("invalid log id")

// Getter fetches one log entry; satisfied by *client.Client
type Getter interface {
	GetLogDetail(ctx context.Context, id string) (*models.LogEntry, error)
}

// Detail validates id and fetches the entry
func Detail(ctx context.Context, getter Getter, id string) (*models.LogEntry, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return getter.GetLogDetail(ctx, parsed.String())
}
