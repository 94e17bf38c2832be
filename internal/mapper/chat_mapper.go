package mapper

import (
	"time"

	"finops-copilot-be/internal/entity"
	"finops-copilot-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Thread Mappers

func (m *ChatMapper) ThreadToEntity(t *model.Thread) *entity.Thread {
	if t == nil {
		return nil
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	return &entity.Thread{
		Id:        t.Id,
		OwnerId:   t.OwnerId,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ChatMapper) ThreadToModel(t *entity.Thread) *model.Thread {
	if t == nil {
		return nil
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.Thread{
		Id:        t.Id,
		OwnerId:   t.OwnerId,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.Message) *entity.Message {
	if msg == nil {
		return nil
	}

	return &entity.Message{
		Id:         msg.Id,
		OwnerId:    msg.OwnerId,
		ThreadId:   msg.ThreadId,
		Role:       msg.Role,
		Content:    msg.Content,
		Relevant:   msg.Relevant,
		AnalysisId: msg.AnalysisId,
		CreatedAt:  msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.Message) *model.Message {
	if msg == nil {
		return nil
	}

	return &model.Message{
		Id:         msg.Id,
		OwnerId:    msg.OwnerId,
		ThreadId:   msg.ThreadId,
		Role:       msg.Role,
		Content:    msg.Content,
		Relevant:   msg.Relevant,
		AnalysisId: msg.AnalysisId,
		CreatedAt:  msg.CreatedAt,
	}
}

// Analysis Mappers

func (m *ChatMapper) AnalysisToEntity(a *model.Analysis) *entity.Analysis {
	if a == nil {
		return nil
	}

	return &entity.Analysis{
		Id:        a.Id,
		OwnerId:   a.OwnerId,
		ThreadId:  a.ThreadId,
		Plan:      a.Plan,
		Metrics:   a.Metrics,
		Comment:   a.Comment,
		Result:    a.Result,
		CreatedAt: a.CreatedAt,
	}
}

func (m *ChatMapper) AnalysisToModel(a *entity.Analysis) *model.Analysis {
	if a == nil {
		return nil
	}

	return &model.Analysis{
		Id:        a.Id,
		OwnerId:   a.OwnerId,
		ThreadId:  a.ThreadId,
		Plan:      a.Plan,
		Metrics:   a.Metrics,
		Comment:   a.Comment,
		Result:    a.Result,
		CreatedAt: a.CreatedAt,
	}
}
