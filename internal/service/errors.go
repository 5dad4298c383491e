package service

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/db"
)

var (
	ErrNoteNotFound      = errors.New("note not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrTagNotFound       = errors.New("tag not found")
	ErrCategoryNameTaken = errors.New("category name already exists")
	ErrTagNameTaken      = errors.New("tag name already exists")
	ErrEmptyTagName      = errors.New("tag name is empty")
)

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func conflict(err, sentinel error) error {
	if db.IsUniqueViolation(err) {
		return sentinel
	}
	return err
}
