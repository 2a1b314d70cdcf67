package book

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"bookshare/model"
	booksvc "bookshare/service/book"
)

type svcMock struct {
	lastFilter booksvc.Filter
}

func (m *svcMock) Create(ctx context.Context, ownerID int64, in booksvc.CreateInput) (*model.Book, error) {
	return &model.Book{OwnerID: ownerID, Status: model.BookAvailable}, nil
}

func (m *svcMock) List(ctx context.Context, f booksvc.Filter) ([]model.Book, int64, error) {
	m.lastFilter = f
	return nil, 0, nil
}

func (m *svcMock) Get(ctx context.Context, id int64) (*model.Book, error) {
	return &model.Book{ID: id}, nil
}

func (m *svcMock) Update(ctx context.Context, userID, bookID int64, in booksvc.UpdateInput) (*model.Book, error) {
	return &model.Book{ID: bookID}, nil
}

func (m *svcMock) Delete(ctx context.Context, userID, bookID int64) error { return nil }

func listRequest(t *testing.T, h *Controller, query string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/books?"+query, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, h.List(c)
}

func TestList_OrderingTranslation(t *testing.T) {
	m := &svcMock{}
	h := &Controller{Svc: m, V: validator.New(), Log: slog.Default()}

	cases := map[string]string{
		"ordering=ascending_title":       "title",
		"ordering=descending_title":      "-title",
		"ordering=ascending_created_at":  "created_at",
		"ordering=descending_created_at": "-created_at",
	}
	for query, want := range cases {
		rec, err := listRequest(t, h, query)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, want, m.lastFilter.Sort, query)
	}
}

func TestList_RejectsBadParams(t *testing.T) {
	m := &svcMock{}
	h := &Controller{Svc: m, V: validator.New(), Log: slog.Default()}

	for _, query := range []string{
		"ordering=title",
		"ordering=ascending_owner",
		"status=burned",
		"genres=abc",
		"authors=0",
		"page=0",
		"page_size=-1",
	} {
		rec, err := listRequest(t, h, query)
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestList_Filters(t *testing.T) {
	m := &svcMock{}
	h := &Controller{Svc: m, V: validator.New(), Log: slog.Default()}

	rec, err := listRequest(t, h, "status=available&genres=3&authors=5&search=dune&page=2&page_size=10")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "available", m.lastFilter.Status)
	require.Equal(t, int64(3), m.lastFilter.GenreID)
	require.Equal(t, int64(5), m.lastFilter.AuthorID)
	require.Equal(t, "dune", m.lastFilter.Search)
	require.Equal(t, 2, m.lastFilter.Page)
	require.Equal(t, 10, m.lastFilter.PageSize)
}
