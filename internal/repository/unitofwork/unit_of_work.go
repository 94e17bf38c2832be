package unitofwork

import (
	"context"

	"finops-copilot-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ThreadRepository() contract.ThreadRepository
	MessageRepository() contract.MessageRepository
	AnalysisRepository() contract.AnalysisRepository
	UploadedFileRepository() contract.UploadedFileRepository
}
