package contract

import (
	"context"

	"finops-copilot-be/internal/entity"
	"finops-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AnalysisRepository interface {
	// Create inserts and backfills the store-assigned id on the entity.
	Create(ctx context.Context, analysis *entity.Analysis) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Analysis, error)
	DeleteByThreadId(ctx context.Context, threadId uuid.UUID) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
