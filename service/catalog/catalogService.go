package catalogsvc

import (
	"context"
	"database/sql"
	"errors"

	"bookshare/model"
	catalogrepo "bookshare/repository/catalog"
)

type ErrCode string

const (
	ErrNotFound ErrCode = "NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	CreateAuthor(ctx context.Context, name string, biography *string) (*model.Author, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)
	GetAuthor(ctx context.Context, id int64) (*model.Author, error)

	CreateGenre(ctx context.Context, name string, description *string) (*model.Genre, error)
	ListGenres(ctx context.Context) ([]model.Genre, error)
	GetGenre(ctx context.Context, id int64) (*model.Genre, error)
}

type service struct{ r catalogrepo.Repo }

func New(r catalogrepo.Repo) Service { return &service{r: r} }

func (s *service) CreateAuthor(ctx context.Context, name string, biography *string) (*model.Author, error) {
	a := &model.Author{Name: name, Biography: biography}
	if err := s.r.CreateAuthor(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return s.r.ListAuthors(ctx)
}

func (s *service) GetAuthor(ctx context.Context, id int64) (*model.Author, error) {
	a, err := s.r.AuthorByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	return a, err
}

func (s *service) CreateGenre(ctx context.Context, name string, description *string) (*model.Genre, error) {
	g := &model.Genre{Name: name, Description: description}
	if err := s.r.CreateGenre(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *service) ListGenres(ctx context.Context) ([]model.Genre, error) {
	return s.r.ListGenres(ctx)
}

func (s *service) GetGenre(ctx context.Context, id int64) (*model.Genre, error) {
	g, err := s.r.GenreByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	return g, err
}
