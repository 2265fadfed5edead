package mapper

import (
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"
)

type AttachmentMapper struct{}

func NewAttachmentMapper() *AttachmentMapper {
	return &AttachmentMapper{}
}

func (m *AttachmentMapper) ToEntity(a *model.Attachment) *entity.Attachment {
	if a == nil {
		return nil
	}

	return &entity.Attachment{
		Id:               a.Id,
		ChatMessageId:    a.ChatMessageId,
		AuthorId:         a.AuthorId,
		OriginalFilename: a.OriginalFilename,
		StoragePath:      a.StoragePath,
		SizeBytes:        a.SizeBytes,
		MimeType:         a.MimeType,
		UploadedAt:       a.UploadedAt,
	}
}

func (m *AttachmentMapper) ToModel(a *entity.Attachment) *model.Attachment {
	if a == nil {
		return nil
	}

	return &model.Attachment{
		Id:               a.Id,
		ChatMessageId:    a.ChatMessageId,
		AuthorId:         a.AuthorId,
		OriginalFilename: a.OriginalFilename,
		StoragePath:      a.StoragePath,
		SizeBytes:        a.SizeBytes,
		MimeType:         a.MimeType,
		UploadedAt:       a.UploadedAt,
	}
}

func (m *AttachmentMapper) ToEntities(models []*model.Attachment) []*entity.Attachment {
	entities := make([]*entity.Attachment, len(models))
	for i, a := range models {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
