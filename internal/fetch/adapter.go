package fetch

import (
	"context"

	"github.com/venewatch/venezuela-monitor/internal/models"
)

// Adapter produces raw candidate items from one platform. Implementations
// own their platform specifics (queries, credentials, failure handling);
// the monitoring cycle only sees this one operation. Fetch may return
// partial results together with an error; the caller logs the error and
// keeps whatever was collected.
type Adapter interface {
	Platform() models.Platform
	Fetch(ctx context.Context) ([]models.CandidateItem, error)
}
