package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBatchSize bounds the rows sent per CopyFrom call.
const DefaultBatchSize = 5000

// LoadBatches copies rows into table in batches of batchSize and returns the
// total reported by the backend. It stops at the first error or when ctx is
// done. Progress is logged at debug level after every batch.
func LoadBatches(
	ctx context.Context,
	repo Repository,
	table string,
	columns []string,
	rows [][]any,
	batchSize int,
	log logrus.FieldLogger,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("storage: batchSize must be > 0")
	}

	var total int64
	start := time.Now()
	for lo, batch := 0, 0; lo < len(rows); lo, batch = lo+batchSize, batch+1 {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))
		n, err := repo.CopyFrom(ctx, table, columns, rows[lo:hi])
		total += n
		if err != nil {
			return total, fmt.Errorf("storage: %s batch #%d: %w", table, batch+1, err)
		}
		log.WithFields(logrus.Fields{
			"table":   table,
			"batch":   batch + 1,
			"total":   total,
			"elapsed": time.Since(start).Round(time.Millisecond),
		}).Debug("Copied batch")
	}
	return total, nil
}
