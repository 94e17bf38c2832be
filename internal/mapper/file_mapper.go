package mapper

import (
	"finops-copilot-be/internal/entity"
	"finops-copilot-be/internal/model"
)

type FileMapper struct{}

func NewFileMapper() *FileMapper {
	return &FileMapper{}
}

func (m *FileMapper) UploadedFileToEntity(f *model.UploadedFile) *entity.UploadedFile {
	if f == nil {
		return nil
	}

	return &entity.UploadedFile{
		Id:           f.Id,
		OwnerId:      f.OwnerId,
		SessionId:    f.SessionId,
		ThreadId:     f.ThreadId,
		MessageId:    f.MessageId,
		StorageKey:   f.StorageKey,
		OriginalName: f.OriginalName,
		FileType:     f.FileType,
		Status:       f.Status,
		CreatedAt:    f.CreatedAt,
	}
}

func (m *FileMapper) UploadedFileToModel(f *entity.UploadedFile) *model.UploadedFile {
	if f == nil {
		return nil
	}

	return &model.UploadedFile{
		Id:           f.Id,
		OwnerId:      f.OwnerId,
		SessionId:    f.SessionId,
		ThreadId:     f.ThreadId,
		MessageId:    f.MessageId,
		StorageKey:   f.StorageKey,
		OriginalName: f.OriginalName,
		FileType:     f.FileType,
		Status:       f.Status,
		CreatedAt:    f.CreatedAt,
	}
}
