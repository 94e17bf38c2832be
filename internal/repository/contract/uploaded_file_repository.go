package contract

import (
	"context"

	"finops-copilot-be/internal/entity"
	"finops-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UploadedFileRepository interface {
	Create(ctx context.Context, file *entity.UploadedFile) error
	Update(ctx context.Context, file *entity.UploadedFile) error
	Delete(ctx context.Context, ownerId string, id int64) error
	DeleteByThreadId(ctx context.Context, threadId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UploadedFile, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UploadedFile, error)
	FindByIds(ctx context.Context, ownerId string, ids []int64) ([]*entity.UploadedFile, error)
}
