package service

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/db"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/models"
)

type Tags struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewTags(db *gorm.DB, l *zap.SugaredLogger) *Tags {
	return &Tags{
		db:     db,
		logger: l,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Tags) List(ctx context.Context) ([]models.TagResp, error) {
	tags := make([]db.Tag, 0)

	res := s.db.WithContext(ctx).Order("name").Find(&tags)
	if res.Error != nil {
		return nil, res.Error
	}

	resp := make([]models.TagResp, len(tags))
	for i := range tags {
		resp[i] = models.TagResp{
			ID:   tags[i].ID,
			Name: tags[i].Name,
		}
	}
	return resp, nil
}

func (s *Tags) Create(ctx context.Context, name string) (*models.TagResp, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyTagName
	}
	model := db.Tag{
		Name: name,
	}

	res := s.db.WithContext(ctx).Create(&model)
	if res.Error != nil {
		return nil, errors.Wrap(conflict(res.Error, ErrTagNameTaken), "create tag")
	}

	return &models.TagResp{ID: model.ID, Name: model.Name}, nil
}

func (s *Tags) Update(ctx context.Context, id uint64, name string) (*models.TagResp, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyTagName
	}
	model := db.Tag{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, id).Error; err != nil {
			return notFound(err, ErrTagNotFound)
		}
		return conflict(tx.Model(&model).Update("name", name).Error, ErrTagNameTaken)
	})
	if err != nil {
		return nil, errors.Wrap(err, "update tag")
	}

	return &models.TagResp{ID: model.ID, Name: name}, nil
}

// Delete removes the tag and its join rows; notes stay.
func (s *Tags) Delete(ctx context.Context, id uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := db.Tag{}
		if err := tx.First(&model, id).Error; err != nil {
			return notFound(err, ErrTagNotFound)
		}

		sql, args, err := squirrel.Delete(db.NoteTagsTable).Where(squirrel.Eq{"tag_id": id}).ToSql()
		if err != nil {
			return errors.Wrap(err, "build sql")
		}
		if res := tx.Exec(sql, args...); res.Error != nil {
			return errors.Wrap(res.Error, "clear note links")
		}
		return tx.Delete(&model).Error
	})
	if err != nil {
		return errors.Wrap(err, "delete tag")
	}
	return nil
}

// SetForNote replaces the note's tags by name, creating tags that do not exist yet.
func (s *Tags) SetForNote(ctx context.Context, noteID uint64, names []string) (*models.NoteResp, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		note := db.Note{}
		if err := tx.First(&note, noteID).Error; err != nil {
			return notFound(err, ErrNoteNotFound)
		}

		ids := make([]uint64, 0, len(names))
		seen := make(map[string]struct{}, len(names))
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}

			tag := db.Tag{}
			if err := tx.Where(db.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
				return errors.Wrapf(err, "get or create tag %q", name)
			}
			ids = append(ids, tag.ID)
		}

		if err := replaceJoinRows(tx, db.NoteTagsTable, "tag_id", noteID, ids); err != nil {
			return err
		}
		return tx.Model(&note).Update("updated_at", s.now()).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "set note tags")
	}

	return noteResp(ctx, s.db, noteID)
}
