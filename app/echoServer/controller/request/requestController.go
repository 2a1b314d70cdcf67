package request

import (
	"log/slog"
	"net/http"
	"strconv"

	"bookshare/model"
	requestsvc "bookshare/service/request"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc requestsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/requests
func (h *Controller) Create(c echo.Context) error {
	var req CreateRequestReq
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

	out, err := h.Svc.Create(c.Request().Context(), uid, req.Book, req.Message)
	if err != nil {
		switch requestsvc.Code(err) {
		case requestsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case requestsvc.ErrOwnBook:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "cannot request your own book"})
		case requestsvc.ErrNotAvailable:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "book is not available for requests"})
		default:
			h.Log.Error("request create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, out)
}

// GET /v1/requests
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("request list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	if rows == nil {
		rows = []model.BookRequest{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/requests/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	row, err := h.Svc.Get(c.Request().Context(), uid, id)
	if err != nil {
		if requestsvc.Code(err) == requestsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		}
		h.Log.Error("request detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, row)
}

// PUT/PATCH /v1/requests/:id
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateRequestReq
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

	row, err := h.Svc.UpdateMessage(c.Request().Context(), uid, id, req.Message)
	if err != nil {
		switch requestsvc.Code(err) {
		case requestsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		case requestsvc.ErrNotRequester:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "only the requester can modify this request"})
		case requestsvc.ErrNotPending:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "request is no longer pending"})
		default:
			h.Log.Error("request update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, row)
}

// DELETE /v1/requests/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		switch requestsvc.Code(err) {
		case requestsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		case requestsvc.ErrNotRequester:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "only the requester can withdraw this request"})
		case requestsvc.ErrNotPending:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "request is no longer pending"})
		default:
			h.Log.Error("request delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// POST /v1/requests/:id/accept
func (h *Controller) Accept(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Accept(c.Request().Context(), uid, id); err != nil {
		switch requestsvc.Code(err) {
		case requestsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		case requestsvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "only the book owner can accept requests"})
		case requestsvc.ErrNotPending:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "can only accept pending requests"})
		default:
			h.Log.Error("request accept", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "request accepted",
		"message": "Book status updated to 'lent', other requests rejected",
	})
}

// POST /v1/requests/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.Reject(c.Request().Context(), uid, id); err != nil {
		switch requestsvc.Code(err) {
		case requestsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
		case requestsvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "only the book owner can reject requests"})
		case requestsvc.ErrNotPending:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "can only reject pending requests"})
		default:
			h.Log.Error("request reject", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "request rejected"})
}
