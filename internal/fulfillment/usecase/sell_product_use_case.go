package usecase

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	apperrors "warehouse/internal/errors"
)

type FulfillmentService interface {
	SellProduct(ctx context.Context, productID int64) error
	SellArticles(ctx context.Context, articleID int64, quantity int) error
}

type SellProductUseCase struct {
	fulfillmentSvc   FulfillmentService
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewSellProductUseCase(
	fulfillmentSvc FulfillmentService,
	logger *zap.Logger,
	maxRetryAttempts int,
) *SellProductUseCase {
	return &SellProductUseCase{
		fulfillmentSvc:   fulfillmentSvc,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *SellProductUseCase) SellProduct(ctx context.Context, productID int64) error {
	uc.logger.Info("sell product started", zap.Int64("productId", productID))

	return uc.withDeadlockRetry(ctx, func() error {
		return uc.fulfillmentSvc.SellProduct(ctx, productID)
	})
}

func (uc *SellProductUseCase) SellArticles(ctx context.Context, articleID int64, quantity int) error {
	uc.logger.Info("sell articles started", zap.Int64("articleId", articleID), zap.Int("quantity", quantity))

	return uc.withDeadlockRetry(ctx, func() error {
		return uc.fulfillmentSvc.SellArticles(ctx, articleID, quantity)
	})
}

func (uc *SellProductUseCase) withDeadlockRetry(ctx context.Context, op func() error) error {
	maxAttempts := uc.maxRetryAttempts
	// Backoff intervals: attempt 1 (0ms), attempt 2 (100ms), attempt 3 (200ms), etc.
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		if isDeadlockError(err) {
			if attempt < maxAttempts {
				backoff := backoffs[len(backoffs)-1]
				if attempt-1 < len(backoffs) {
					backoff = backoffs[attempt-1]
				}
				// Jitter: ±20% of the backoff base.
				jitter := backoff * time.Duration(0.8+rand.Float64()*0.4)
				time.Sleep(backoff + jitter)
				uc.logger.Warn("deadlock detected, retrying",
					zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts))
				continue
			}
			break
		}

		return err
	}

	return apperrors.NewDeadlockError("max retries exceeded")
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
