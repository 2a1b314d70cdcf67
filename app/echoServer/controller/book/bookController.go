package book

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bookshare/model"
	booksvc "bookshare/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/books
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	b, err := h.Svc.Create(c.Request().Context(), uid, booksvc.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		PickupLocation: req.PickupLocation,
		AuthorIDs:      req.AuthorIDs,
		GenreIDs:       req.GenreIDs,
	})
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrUnknownAuthor:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown author id"})
		case booksvc.ErrUnknownGenre:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown genre id"})
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("book create error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	f, err := parseFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	rows, total, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("book list error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.Book{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      rows,
		"page":      f.Page,
		"page_size": f.PageSize,
		"total":     total,
	})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	row, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("book detail error", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}

// PUT/PATCH /v1/books/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	uid, _ := c.Get("user_id").(int64)

	b, err := h.Svc.Update(c.Request().Context(), uid, id, booksvc.UpdateInput{
		Title:          req.Title,
		Description:    req.Description,
		PickupLocation: req.PickupLocation,
		AuthorIDs:      req.AuthorIDs,
		GenreIDs:       req.GenreIDs,
	})
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case booksvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "only the owner may modify this book"})
		case booksvc.ErrUnknownAuthor:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown author id"})
		case booksvc.ErrUnknownGenre:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown genre id"})
		default:
			h.Log.Error("book update error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case booksvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "only the owner may delete this book"})
		default:
			h.Log.Error("book delete error", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// parseFilter translates the query surface, including the
// ascending_/descending_ ordering convention, into a repo filter with a
// signed sort key ("-field" means descending).
func parseFilter(c echo.Context) (booksvc.Filter, error) {
	var f booksvc.Filter

	if v := c.QueryParam("status"); v != "" {
		switch v {
		case "available", "reserved", "lent":
			f.Status = v
		default:
			return f, errInvalidParam("status")
		}
	}
	if v := c.QueryParam("genres"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, errInvalidParam("genres")
		}
		f.GenreID = id
	}
	if v := c.QueryParam("authors"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, errInvalidParam("authors")
		}
		f.AuthorID = id
	}
	f.Search = c.QueryParam("search")

	if v := c.QueryParam("ordering"); v != "" {
		var field string
		desc := false
		switch {
		case strings.HasPrefix(v, "ascending_"):
			field = strings.TrimPrefix(v, "ascending_")
		case strings.HasPrefix(v, "descending_"):
			field = strings.TrimPrefix(v, "descending_")
			desc = true
		default:
			return f, errInvalidParam("ordering")
		}
		if field != "created_at" && field != "title" {
			return f, errInvalidParam("ordering")
		}
		if desc {
			field = "-" + field
		}
		f.Sort = field
	}

	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, errInvalidParam("page")
		}
		f.Page = n
	}
	if v := c.QueryParam("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, errInvalidParam("page_size")
		}
		f.PageSize = n
	}
	return f, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string { return "invalid " + string(e) + " parameter" }
