package service

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/db"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/models"
)

const (
	DefaultCategoryColor = "#667eea"
	DefaultCategoryIcon  = "📁"
)

type Categories struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewCategories(db *gorm.DB, l *zap.SugaredLogger) *Categories {
	return &Categories{
		db:     db,
		logger: l,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns all categories, newest first.
func (s *Categories) List(ctx context.Context) ([]models.CategoryResp, error) {
	tx := s.db.WithContext(ctx)

	categories := make([]db.Category, 0)
	if res := tx.Order("created_at DESC").Order("id DESC").Find(&categories); res.Error != nil {
		return nil, errors.Wrap(res.Error, "find categories")
	}

	ids := make([]uint64, len(categories))
	for i := range categories {
		ids[i] = categories[i].ID
	}
	counts, err := noteCounts(tx, ids)
	if err != nil {
		return nil, err
	}

	return categoryResps(categories, counts), nil
}

// Create inserts a category. The unique index on name decides duplicates.
func (s *Categories) Create(ctx context.Context, req models.CategoryCreateReq) (*models.CategoryResp, error) {
	now := s.now()
	model := db.Category{
		GormForkedModel: db.GormForkedModel{
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:  req.Name,
		Color: DefaultCategoryColor,
		Icon:  DefaultCategoryIcon,
	}
	if req.Description != nil {
		model.Description = *req.Description
	}
	if req.Color != nil {
		model.Color = *req.Color
	}
	if req.Icon != nil {
		model.Icon = *req.Icon
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return conflict(tx.Create(&model).Error, ErrCategoryNameTaken)
	})
	if err != nil {
		return nil, errors.Wrap(err, "create category")
	}

	resp := toCategoryResp(model, nil)
	return &resp, nil
}

// Update applies the supplied fields. Renaming to the current name is a no-op.
func (s *Categories) Update(ctx context.Context, id uint64, req models.CategoryUpdateReq) (*models.CategoryResp, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := db.Category{}
		if err := tx.First(&model, id).Error; err != nil {
			return notFound(err, ErrCategoryNotFound)
		}

		updates := map[string]interface{}{"updated_at": s.now()}
		if req.Name != nil && *req.Name != model.Name {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Color != nil {
			updates["color"] = *req.Color
		}
		if req.Icon != nil {
			updates["icon"] = *req.Icon
		}
		return conflict(tx.Model(&model).Updates(updates).Error, ErrCategoryNameTaken)
	})
	if err != nil {
		return nil, errors.Wrap(err, "update category")
	}

	return s.get(ctx, id)
}

// Delete removes the category and its join rows; notes stay.
func (s *Categories) Delete(ctx context.Context, id uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := db.Category{}
		if err := tx.First(&model, id).Error; err != nil {
			return notFound(err, ErrCategoryNotFound)
		}

		sql, args, err := squirrel.Delete(db.NoteCategoriesTable).Where(squirrel.Eq{"category_id": id}).ToSql()
		if err != nil {
			return errors.Wrap(err, "build sql")
		}
		if res := tx.Exec(sql, args...); res.Error != nil {
			return errors.Wrap(res.Error, "clear note links")
		}
		return tx.Delete(&model).Error
	})
	if err != nil {
		return errors.Wrap(err, "delete category")
	}
	return nil
}

// Notes lists summaries of the notes in a category, most recently updated first.
func (s *Categories) Notes(ctx context.Context, id uint64) ([]models.NoteSummaryResp, error) {
	tx := s.db.WithContext(ctx)

	category := db.Category{}
	if err := tx.First(&category, id).Error; err != nil {
		return nil, errors.Wrap(notFound(err, ErrCategoryNotFound), "get category")
	}

	sql, args, err := squirrel.
		Select("nc.note_id").From(db.NoteCategoriesTable + " nc").
		Where(squirrel.Eq{"nc.category_id": id}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}
	noteIDs := make([]uint64, 0)
	if res := tx.Raw(sql, args...).Scan(&noteIDs); res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan note ids")
	}

	notes := make([]db.Note, 0, len(noteIDs))
	if len(noteIDs) > 0 {
		res := withAssociations(tx).Where("id IN ?", noteIDs).Order("updated_at DESC").Order("id DESC").Find(&notes)
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "find notes")
		}
	}

	counts, err := noteCounts(tx, categoryIDsOf(notes))
	if err != nil {
		return nil, err
	}

	resp := make([]models.NoteSummaryResp, len(notes))
	for i := range notes {
		resp[i] = toNoteSummaryResp(notes[i], counts)
	}
	return resp, nil
}

// AssignToNote replaces the note's whole category set. Unknown ids are skipped.
func (s *Categories) AssignToNote(ctx context.Context, noteID uint64, categoryIDs []uint64) (*models.NoteResp, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		note := db.Note{}
		if err := tx.First(&note, noteID).Error; err != nil {
			return notFound(err, ErrNoteNotFound)
		}

		existing := make([]uint64, 0, len(categoryIDs))
		if len(categoryIDs) > 0 {
			res := tx.Model(&db.Category{}).Where("id IN ?", categoryIDs).Order("id").Pluck("id", &existing)
			if res.Error != nil {
				return errors.Wrap(res.Error, "find categories")
			}
		}

		if err := replaceJoinRows(tx, db.NoteCategoriesTable, "category_id", noteID, existing); err != nil {
			return err
		}
		return tx.Model(&note).Update("updated_at", s.now()).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "assign categories")
	}

	return noteResp(ctx, s.db, noteID)
}

func (s *Categories) get(ctx context.Context, id uint64) (*models.CategoryResp, error) {
	tx := s.db.WithContext(ctx)

	model := db.Category{}
	if err := tx.First(&model, id).Error; err != nil {
		return nil, notFound(err, ErrCategoryNotFound)
	}
	counts, err := noteCounts(tx, []uint64{id})
	if err != nil {
		return nil, err
	}
	resp := toCategoryResp(model, counts)
	return &resp, nil
}
