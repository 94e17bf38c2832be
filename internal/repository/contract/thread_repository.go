package contract

import (
	"context"

	"finops-copilot-be/internal/entity"
	"finops-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ThreadRepository interface {
	Create(ctx context.Context, thread *entity.Thread) error
	Update(ctx context.Context, thread *entity.Thread) error
	// Delete removes the thread row for the given owner; deleting a thread
	// the owner does not hold matches zero rows and is not an error.
	Delete(ctx context.Context, ownerId string, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Thread, error)
	// FindAllWithCounts returns threads annotated with their derived message count.
	FindAllWithCounts(ctx context.Context, specs ...specification.Specification) ([]*entity.Thread, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
