package implementation

import (
	"context"
	"errors"

	"finops-copilot-be/internal/entity"
	"finops-copilot-be/internal/mapper"
	"finops-copilot-be/internal/model"
	"finops-copilot-be/internal/repository/contract"
	"finops-copilot-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadedFileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FileMapper
}

func NewUploadedFileRepository(db *gorm.DB) contract.UploadedFileRepository {
	return &UploadedFileRepositoryImpl{
		db:     db,
		mapper: mapper.NewFileMapper(),
	}
}

func (r *UploadedFileRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UploadedFileRepositoryImpl) Create(ctx context.Context, file *entity.UploadedFile) error {
	m := r.mapper.UploadedFileToModel(file)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.UploadedFileToEntity(m)
	return nil
}

func (r *UploadedFileRepositoryImpl) Update(ctx context.Context, file *entity.UploadedFile) error {
	m := r.mapper.UploadedFileToModel(file)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*file = *r.mapper.UploadedFileToEntity(m)
	return nil
}

func (r *UploadedFileRepositoryImpl) Delete(ctx context.Context, ownerId string, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerId).
		Delete(&model.UploadedFile{}).Error
}

func (r *UploadedFileRepositoryImpl) DeleteByThreadId(ctx context.Context, threadId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("thread_id = ?", threadId).Delete(&model.UploadedFile{}).Error
}

func (r *UploadedFileRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UploadedFile, error) {
	var m model.UploadedFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.UploadedFileToEntity(&m), nil
}

func (r *UploadedFileRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UploadedFile, error) {
	var models []*model.UploadedFile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.UploadedFile, len(models))
	for i, m := range models {
		entities[i] = r.mapper.UploadedFileToEntity(m)
	}
	return entities, nil
}

func (r *UploadedFileRepositoryImpl) FindByIds(ctx context.Context, ownerId string, ids []int64) ([]*entity.UploadedFile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []*model.UploadedFile
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND id IN ?", ownerId, ids).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	entities := make([]*entity.UploadedFile, len(models))
	for i, m := range models {
		entities[i] = r.mapper.UploadedFileToEntity(m)
	}
	return entities, nil
}
