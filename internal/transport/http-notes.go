package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rogue-Bear-Innovations/notekeeper-back/internal/models"
)

func (s *HTTPServer) NoteList(c echo.Context) error {
	resp, err := s.notes.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) NoteGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	resp, err := s.notes.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) NoteCreate(c echo.Context) error {
	req := models.NoteReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := s.notes.Create(c.Request().Context(), req.Title, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *HTTPServer) NoteUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := models.NoteReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := s.notes.Update(c.Request().Context(), id, req.Title, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) NoteDelete(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.notes.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.MessageResp{Message: "笔记已删除"})
}

func (s *HTTPServer) NoteSetCategories(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := models.NoteCategoriesReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := s.categories.AssignToNote(c.Request().Context(), id, req.CategoryIDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) NoteSetTags(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	req := models.NoteTagsReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := s.tags.SetForNote(c.Request().Context(), id, req.Tags)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
