package models

import (
	"github.com/alfred/backend/internal/domain/file"
	"github.com/google/uuid"
)

// FileModel is the persistence model for file.File
type FileModel struct {
	OwnedModel
	ConversationID *uuid.UUID `gorm:"type:uuid;index"`
	Name           string     `gorm:"type:varchar(255);not null"`
	ContentType    string     `gorm:"type:varchar(255)"`
	Size           int64      `gorm:"not null;default:0;check:size >= 0"`
	StorageKey     string     `gorm:"type:varchar(1024);not null"`
}

// TableName returns the table name for GORM
func (FileModel) TableName() string {
	return "files"
}

// ToDomain converts the model to a domain File
func (m *FileModel) ToDomain() *file.File {
	return &file.File{
		OwnedAggregateRoot: m.ToOwned(),
		ConversationID:     m.ConversationID,
		Name:               m.Name,
		ContentType:        m.ContentType,
		Size:               m.Size,
		StorageKey:         m.StorageKey,
	}
}

// FileModelFromDomain creates a model from a domain File
func FileModelFromDomain(f *file.File) *FileModel {
	m := &FileModel{
		ConversationID: f.ConversationID,
		Name:           f.Name,
		ContentType:    f.ContentType,
		Size:           f.Size,
		StorageKey:     f.StorageKey,
	}
	m.FromDomainOwned(f.OwnedAggregateRoot)
	return m
}
