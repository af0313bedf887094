package etl

import (
	"context"

	"github.com/BartekS5/tmmigrate/pkg/logger"
	"go.uber.org/zap"
)

// DryRunLoader counts what would be written and touches nothing.
type DryRunLoader struct{}

func (DryRunLoader) Insert(_ context.Context, collection string, docs []interface{}) (int, error) {
	logger.L().Debug("[DRY RUN] would insert",
		zap.String("collection", collection),
		zap.Int("documents", len(docs)))
	return len(docs), nil
}

func (DryRunLoader) EnsureCollection(_ context.Context, collection string) error {
	logger.L().Debug("[DRY RUN] would create collection", zap.String("collection", collection))
	return nil
}
