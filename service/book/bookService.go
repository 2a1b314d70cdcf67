package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"bookshare/model"
	bookrepo "bookshare/repository/book"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrNotOwner      ErrCode = "NOT_OWNER"
	ErrUnknownAuthor ErrCode = "UNKNOWN_AUTHOR"
	ErrUnknownGenre  ErrCode = "UNKNOWN_GENRE"
	ErrBadInput      ErrCode = "BAD_INPUT"
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

type Filter = bookrepo.Filter

type CreateInput struct {
	Title          string
	Description    string
	PickupLocation *string
	AuthorIDs      []int64
	GenreIDs       []int64
}

type UpdateInput struct {
	Title          *string
	Description    *string
	PickupLocation *string
	AuthorIDs      *[]int64
	GenreIDs       *[]int64
}

type Service interface {
	// Create stores a book for ownerID; the stored status is always
	// available no matter what the client sent.
	Create(ctx context.Context, ownerID int64, in CreateInput) (*model.Book, error)
	List(ctx context.Context, f Filter) ([]model.Book, int64, error)
	Get(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, userID, bookID int64, in UpdateInput) (*model.Book, error)
	// Delete removes the book together with its requests and
	// author/genre links in one transaction.
	Delete(ctx context.Context, userID, bookID int64) error
}

type service struct{ r bookrepo.Repo }

func New(r bookrepo.Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, ownerID int64, in CreateInput) (*model.Book, error) {
	if in.Title == "" {
		return nil, makeErr(ErrBadInput)
	}
	authorIDs := dedupe(in.AuthorIDs)
	genreIDs := dedupe(in.GenreIDs)

	b := &model.Book{
		Title:          in.Title,
		Description:    in.Description,
		OwnerID:        ownerID,
		PickupLocation: in.PickupLocation,
	}
	err := s.r.InTx(ctx, func(tx bookrepo.Tx) error {
		ok, err := tx.AuthorsExist(ctx, authorIDs)
		if err != nil {
			return err
		}
		if !ok {
			return makeErr(ErrUnknownAuthor)
		}
		ok, err = tx.GenresExist(ctx, genreIDs)
		if err != nil {
			return err
		}
		if !ok {
			return makeErr(ErrUnknownGenre)
		}
		if err := tx.Insert(ctx, b); err != nil {
			return err
		}
		if err := tx.ReplaceAuthors(ctx, b.ID, authorIDs); err != nil {
			return err
		}
		return tx.ReplaceGenres(ctx, b.ID, genreIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, b.ID)
}

func (s *service) List(ctx context.Context, f Filter) ([]model.Book, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 20
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	return s.r.List(ctx, f)
}

func (s *service) Get(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	return b, err
}

func (s *service) Update(ctx context.Context, userID, bookID int64, in UpdateInput) (*model.Book, error) {
	err := s.r.InTx(ctx, func(tx bookrepo.Tx) error {
		owner, err := tx.OwnerOf(ctx, bookID)
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		if err != nil {
			return err
		}
		if owner != userID {
			return makeErr(ErrNotOwner)
		}
		if in.Title != nil || in.Description != nil || in.PickupLocation != nil {
			if err := tx.Update(ctx, bookID, in.Title, in.Description, in.PickupLocation); err != nil {
				return err
			}
		}
		if in.AuthorIDs != nil {
			ids := dedupe(*in.AuthorIDs)
			ok, err := tx.AuthorsExist(ctx, ids)
			if err != nil {
				return err
			}
			if !ok {
				return makeErr(ErrUnknownAuthor)
			}
			if err := tx.ReplaceAuthors(ctx, bookID, ids); err != nil {
				return err
			}
		}
		if in.GenreIDs != nil {
			ids := dedupe(*in.GenreIDs)
			ok, err := tx.GenresExist(ctx, ids)
			if err != nil {
				return err
			}
			if !ok {
				return makeErr(ErrUnknownGenre)
			}
			if err := tx.ReplaceGenres(ctx, bookID, ids); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, bookID)
}

func (s *service) Delete(ctx context.Context, userID, bookID int64) error {
	return s.r.InTx(ctx, func(tx bookrepo.Tx) error {
		owner, err := tx.OwnerOf(ctx, bookID)
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		if err != nil {
			return err
		}
		if owner != userID {
			return makeErr(ErrNotOwner)
		}
		if _, err := tx.DeleteRequests(ctx, bookID); err != nil {
			return err
		}
		if err := tx.DeleteLinks(ctx, bookID); err != nil {
			return err
		}
		return tx.Delete(ctx, bookID)
	})
}

func dedupe(ids []int64) []int64 {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
