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

type ThreadRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewThreadRepository(db *gorm.DB) contract.ThreadRepository {
	return &ThreadRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ThreadRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ThreadRepositoryImpl) Create(ctx context.Context, thread *entity.Thread) error {
	m := r.mapper.ThreadToModel(thread)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*thread = *r.mapper.ThreadToEntity(m)
	return nil
}

func (r *ThreadRepositoryImpl) Update(ctx context.Context, thread *entity.Thread) error {
	m := r.mapper.ThreadToModel(thread)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*thread = *r.mapper.ThreadToEntity(m)
	return nil
}

func (r *ThreadRepositoryImpl) Delete(ctx context.Context, ownerId string, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerId).
		Delete(&model.Thread{}).Error
}

func (r *ThreadRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Thread, error) {
	var m model.Thread
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ThreadToEntity(&m), nil
}

// threadWithCount carries the derived message count alongside the thread row.
type threadWithCount struct {
	model.Thread
	MsgCount int64
}

func (r *ThreadRepositoryImpl) FindAllWithCounts(ctx context.Context, specs ...specification.Specification) ([]*entity.Thread, error) {
	var rows []threadWithCount
	query := r.applySpecifications(
		r.db.WithContext(ctx).Model(&model.Thread{}).
			Select("threads.*, (SELECT COUNT(*) FROM messages m WHERE m.thread_id = threads.id) AS msg_count"),
		specs...,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.Thread, len(rows))
	for i, row := range rows {
		e := r.mapper.ThreadToEntity(&row.Thread)
		e.MsgCount = row.MsgCount
		entities[i] = e
	}
	return entities, nil
}

func (r *ThreadRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Thread{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
