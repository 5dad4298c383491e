package service

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/db"
	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/models"
)

const (
	snippetLength = 100
	ellipsis      = "..."
)

// Snippet cuts content to the first 100 characters, marking the cut.
func Snippet(content string) string {
	runes := []rune(content)
	if len(runes) > snippetLength {
		return string(runes[:snippetLength]) + ellipsis
	}
	return content
}

func withAssociations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Tags", func(tx *gorm.DB) *gorm.DB { return tx.Order("tags.id") }).
		Preload("Categories", func(tx *gorm.DB) *gorm.DB { return tx.Order("categories.id") })
}

func loadNote(tx *gorm.DB, id uint64) (*db.Note, error) {
	note := db.Note{}
	if err := withAssociations(tx).First(&note, id).Error; err != nil {
		return nil, notFound(err, ErrNoteNotFound)
	}
	return &note, nil
}

type categoryCount struct {
	CategoryID uint64
	NoteCount  int64
}

// noteCounts returns the number of notes attached to each of the given categories.
func noteCounts(tx *gorm.DB, categoryIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return counts, nil
	}

	sql, args, err := squirrel.
		Select("category_id", "COUNT(*) AS note_count").From(db.NoteCategoriesTable).
		Where(squirrel.Eq{"category_id": categoryIDs}).
		GroupBy("category_id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	rows := make([]categoryCount, 0, len(categoryIDs))
	if res := tx.Raw(sql, args...).Scan(&rows); res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan note counts")
	}
	for _, r := range rows {
		counts[r.CategoryID] = r.NoteCount
	}
	return counts, nil
}

func categoryIDsOf(notes []db.Note) []uint64 {
	seen := make(map[uint64]struct{})
	ids := make([]uint64, 0)
	for i := range notes {
		for _, c := range notes[i].Categories {
			if _, ok := seen[c.ID]; !ok {
				seen[c.ID] = struct{}{}
				ids = append(ids, c.ID)
			}
		}
	}
	return ids
}

func toCategoryResp(c db.Category, counts map[uint64]int64) models.CategoryResp {
	return models.CategoryResp{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		NoteCount:   counts[c.ID],
	}
}

func tagNames(tags []db.Tag) []string {
	names := make([]string, len(tags))
	for i := range tags {
		names[i] = tags[i].Name
	}
	return names
}

func categoryResps(categories []db.Category, counts map[uint64]int64) []models.CategoryResp {
	resp := make([]models.CategoryResp, len(categories))
	for i := range categories {
		resp[i] = toCategoryResp(categories[i], counts)
	}
	return resp
}

func toNoteResp(n db.Note, counts map[uint64]int64) models.NoteResp {
	return models.NoteResp{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		Tags:       tagNames(n.Tags),
		Categories: categoryResps(n.Categories, counts),
	}
}

func toNoteSummaryResp(n db.Note, counts map[uint64]int64) models.NoteSummaryResp {
	return models.NoteSummaryResp{
		ID:         n.ID,
		Title:      n.Title,
		Snippet:    Snippet(n.Content),
		CreatedAt:  n.CreatedAt,
		Tags:       tagNames(n.Tags),
		Categories: categoryResps(n.Categories, counts),
	}
}

// noteResp reloads a note with its associations and projects it.
func noteResp(ctx context.Context, tx *gorm.DB, id uint64) (*models.NoteResp, error) {
	tx = tx.WithContext(ctx)
	note, err := loadNote(tx, id)
	if err != nil {
		return nil, err
	}
	counts, err := noteCounts(tx, categoryIDsOf([]db.Note{*note}))
	if err != nil {
		return nil, err
	}
	resp := toNoteResp(*note, counts)
	return &resp, nil
}

// replaceJoinRows swaps the rows of a join table owned by noteID for the given ids.
func replaceJoinRows(tx *gorm.DB, table, column string, noteID uint64, ids []uint64) error {
	sql, args, err := squirrel.Delete(table).Where(squirrel.Eq{"note_id": noteID}).ToSql()
	if err != nil {
		return errors.Wrap(err, "build sql")
	}
	if res := tx.Exec(sql, args...); res.Error != nil {
		return errors.Wrapf(res.Error, "clear %s", table)
	}
	if len(ids) == 0 {
		return nil
	}

	insert := squirrel.Insert(table).Columns("note_id", column)
	for _, id := range ids {
		insert = insert.Values(noteID, id)
	}
	sql, args, err = insert.ToSql()
	if err != nil {
		return errors.Wrap(err, "build sql")
	}
	if res := tx.Exec(sql, args...); res.Error != nil {
		return errors.Wrapf(res.Error, "fill %s", table)
	}
	return nil
}
