package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/db"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/models"
)

const DefaultNoteTitle = "无标题笔记"

type Notes struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewNotes(db *gorm.DB, l *zap.SugaredLogger) *Notes {
	return &Notes{
		db:     db,
		logger: l,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns every note, most recently updated first.
func (s *Notes) List(ctx context.Context) ([]models.NoteResp, error) {
	tx := s.db.WithContext(ctx)

	notes := make([]db.Note, 0)
	res := withAssociations(tx).Order("updated_at DESC").Order("id DESC").Find(&notes)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "find notes")
	}

	counts, err := noteCounts(tx, categoryIDsOf(notes))
	if err != nil {
		return nil, err
	}

	resp := make([]models.NoteResp, len(notes))
	for i := range notes {
		resp[i] = toNoteResp(notes[i], counts)
	}
	return resp, nil
}

func (s *Notes) Get(ctx context.Context, id uint64) (*models.NoteResp, error) {
	return noteResp(ctx, s.db, id)
}

func (s *Notes) Create(ctx context.Context, title, content *string) (*models.NoteResp, error) {
	now := s.now()
	model := db.Note{
		GormForkedModel: db.GormForkedModel{
			CreatedAt: now,
			UpdatedAt: now,
		},
		Title:   DefaultNoteTitle,
		Content: "",
	}
	if title != nil {
		model.Title = *title
	}
	if content != nil {
		model.Content = *content
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&model).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "create note")
	}

	s.logger.Debugw("note created", "id", model.ID)
	resp := toNoteResp(model, nil)
	return &resp, nil
}

// Update changes only the supplied fields; updated_at is refreshed regardless.
func (s *Notes) Update(ctx context.Context, id uint64, title, content *string) (*models.NoteResp, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := db.Note{}
		if err := tx.First(&model, id).Error; err != nil {
			return notFound(err, ErrNoteNotFound)
		}

		updates := map[string]interface{}{"updated_at": s.now()}
		if title != nil {
			updates["title"] = *title
		}
		if content != nil {
			updates["content"] = *content
		}
		return tx.Model(&model).Updates(updates).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "update note")
	}

	return s.Get(ctx, id)
}

// Delete removes the note and its join rows; tags and categories stay.
func (s *Notes) Delete(ctx context.Context, id uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := db.Note{}
		if err := tx.First(&model, id).Error; err != nil {
			return notFound(err, ErrNoteNotFound)
		}
		if err := tx.Model(&model).Association("Tags").Clear(); err != nil {
			return errors.Wrap(err, "clear tags")
		}
		if err := tx.Model(&model).Association("Categories").Clear(); err != nil {
			return errors.Wrap(err, "clear categories")
		}
		return tx.Delete(&model).Error
	})
	if err != nil {
		return errors.Wrap(err, "delete note")
	}
	return nil
}
