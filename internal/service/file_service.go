package service

import (
	"context"
	"fmt"
	"time"

	"finops-copilot-be/internal/constant"
	"finops-copilot-be/internal/dto"
	"finops-copilot-be/internal/entity"
	"finops-copilot-be/internal/pkg/logger"
	"finops-copilot-be/internal/repository/memory"
	"finops-copilot-be/internal/repository/specification"
	"finops-copilot-be/internal/repository/unitofwork"
	"finops-copilot-be/pkg/storage"

	"github.com/google/uuid"
)

// UploadFileInput carries one multipart upload through the service.
type UploadFileInput struct {
	SessionId    string
	FileType     string
	ThreadId     *string
	OriginalName string
	Data         []byte
}

type IFileService interface {
	Upload(ctx context.Context, ownerId string, input *UploadFileInput) (*dto.UploadFileResponse, error)
	Delete(ctx context.Context, ownerId string, fileId int64) error
	Progress(ctx context.Context, sessionId string) (*dto.UploadProgressResponse, error)
}

type fileService struct {
	uowFactory unitofwork.RepositoryFactory
	blobs      storage.BlobStore
	tracker    *memory.UploadTracker
	logger     logger.ILogger
}

func NewFileService(
	uowFactory unitofwork.RepositoryFactory,
	blobs storage.BlobStore,
	tracker *memory.UploadTracker,
	log logger.ILogger,
) IFileService {
	return &fileService{
		uowFactory: uowFactory,
		blobs:      blobs,
		tracker:    tracker,
		logger:     log,
	}
}

// Upload stores the blob, materializes a thread if none exists yet, and
// records the file row. Tracker state follows the upload through its
// uploading / completed / error transitions.
func (fs *fileService) Upload(ctx context.Context, ownerId string, input *UploadFileInput) (*dto.UploadFileResponse, error) {
	if input.FileType != constant.FileTypePlan && input.FileType != constant.FileTypeMetrics {
		return nil, fmt.Errorf("unsupported file type: %s", input.FileType)
	}

	fs.tracker.Begin(input.SessionId, input.FileType, input.OriginalName)

	uow := fs.uowFactory.NewUnitOfWork(ctx)

	thread, err := fs.resolveThread(ctx, uow, ownerId, input.ThreadId)
	if err != nil {
		fs.tracker.Fail(input.SessionId, input.FileType)
		return nil, err
	}

	key, err := fs.blobs.Save(input.OriginalName, input.Data)
	if err != nil {
		fs.tracker.Fail(input.SessionId, input.FileType)
		return nil, err
	}
	fs.tracker.Progress(input.SessionId, input.FileType, 50)

	file := entity.UploadedFile{
		OwnerId:      ownerId,
		SessionId:    input.SessionId,
		ThreadId:     &thread.Id,
		StorageKey:   key,
		OriginalName: input.OriginalName,
		FileType:     input.FileType,
		Status:       constant.UploadStatusCompleted,
		CreatedAt:    time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		fs.tracker.Fail(input.SessionId, input.FileType)
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UploadedFileRepository().Create(ctx, &file); err != nil {
		fs.tracker.Fail(input.SessionId, input.FileType)
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		fs.tracker.Fail(input.SessionId, input.FileType)
		return nil, err
	}

	fs.tracker.Complete(input.SessionId, input.FileType, file.Id)

	threadIdStr := thread.Id.String()
	return &dto.UploadFileResponse{
		File: dto.UploadedFileDTO{
			Id:           file.Id,
			OriginalName: file.OriginalName,
			FileType:     file.FileType,
			Status:       file.Status,
			ThreadId:     &threadIdStr,
			DownloadUrl:  fs.blobs.DownloadURL(file.StorageKey),
			CreatedAt:    file.CreatedAt,
		},
	}, nil
}

// resolveThread finds the caller's thread or materializes one so the upload
// never floats session-only.
func (fs *fileService) resolveThread(ctx context.Context, uow unitofwork.UnitOfWork, ownerId string, threadId *string) (*entity.Thread, error) {
	if threadId != nil && *threadId != "" {
		id, err := uuid.Parse(*threadId)
		if err != nil {
			return nil, fmt.Errorf("invalid thread id: %w", err)
		}
		thread, err := uow.ThreadRepository().FindOne(ctx,
			specification.ByID{ID: id},
			specification.OwnedBy{OwnerID: ownerId},
		)
		if err != nil {
			return nil, err
		}
		if thread != nil {
			return thread, nil
		}
	}

	thread, err := uow.ThreadRepository().FindOne(ctx,
		specification.OwnedBy{OwnerID: ownerId},
		specification.LatestFirst{},
	)
	if err != nil {
		return nil, err
	}
	if thread != nil {
		return thread, nil
	}

	thread = &entity.Thread{
		Id:        uuid.New(),
		OwnerId:   ownerId,
		Title:     constant.DefaultThreadTitle,
		CreatedAt: time.Now(),
	}
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()
	if err := uow.ThreadRepository().Create(ctx, thread); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return thread, nil
}

// Delete removes a file row and its blob. Blob deletion is best-effort; the
// tracker entry is cleared regardless of the outcome.
func (fs *fileService) Delete(ctx context.Context, ownerId string, fileId int64) error {
	uow := fs.uowFactory.NewUnitOfWork(ctx)

	file, err := uow.UploadedFileRepository().FindOne(ctx,
		specification.ByNumericID{ID: fileId},
		specification.OwnedBy{OwnerID: ownerId},
	)
	if err != nil {
		return err
	}
	if file == nil {
		// Unknown or foreign id: nothing to do from the caller's view.
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UploadedFileRepository().Delete(ctx, ownerId, fileId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	if err := fs.blobs.Delete(file.StorageKey); err != nil {
		fs.logger.Warn("FileService", "Failed to delete blob", map[string]interface{}{
			"storage_key": file.StorageKey, "error": err.Error(),
		})
	}

	fs.tracker.Remove(file.SessionId, file.FileType)

	return nil
}

// Progress surfaces the tracker state for one upload session.
func (fs *fileService) Progress(ctx context.Context, sessionId string) (*dto.UploadProgressResponse, error) {
	entries := fs.tracker.List(sessionId)

	files := make([]dto.UploadProgressDTO, 0, len(entries))
	for _, e := range entries {
		files = append(files, dto.UploadProgressDTO{
			FileType:     e.FileType,
			OriginalName: e.OriginalName,
			Progress:     e.Progress,
			Status:       e.Status,
			FileId:       e.FileId,
		})
	}

	return &dto.UploadProgressResponse{Files: files}, nil
}
