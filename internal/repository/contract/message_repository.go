package contract

import (
	"context"

	"finops-copilot-be/internal/entity"
	"finops-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	DeleteByThreadId(ctx context.Context, threadId uuid.UUID) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
