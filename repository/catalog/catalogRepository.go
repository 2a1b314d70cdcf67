package catalogrepo

import (
	"context"
	"database/sql"

	"bookshare/model"
)

type Repo interface {
	CreateAuthor(ctx context.Context, a *model.Author) error
	ListAuthors(ctx context.Context) ([]model.Author, error)
	AuthorByID(ctx context.Context, id int64) (*model.Author, error)

	CreateGenre(ctx context.Context, g *model.Genre) error
	ListGenres(ctx context.Context) ([]model.Genre, error)
	GenreByID(ctx context.Context, id int64) (*model.Genre, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) CreateAuthor(ctx context.Context, a *model.Author) error {
	const q = `
INSERT INTO authors (name, biography)
VALUES ($1,$2)
RETURNING id`
	return r.db.QueryRowContext(ctx, q, a.Name, a.Biography).Scan(&a.ID)
}

func (r *repo) ListAuthors(ctx context.Context) ([]model.Author, error) {
	const q = `
	SELECT id, name, biography
	FROM authors
	ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Author
	for rows.Next() {
		var a model.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.Biography); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repo) AuthorByID(ctx context.Context, id int64) (*model.Author, error) {
	const q = `
SELECT id, name, biography
FROM authors
WHERE id=$1`
	var a model.Author
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.Name, &a.Biography); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repo) CreateGenre(ctx context.Context, g *model.Genre) error {
	const q = `
INSERT INTO genres (name, description)
VALUES ($1,$2)
RETURNING id`
	return r.db.QueryRowContext(ctx, q, g.Name, g.Description).Scan(&g.ID)
}

func (r *repo) ListGenres(ctx context.Context) ([]model.Genre, error) {
	const q = `
	SELECT id, name, description
	FROM genres
	ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Genre
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *repo) GenreByID(ctx context.Context, id int64) (*model.Genre, error) {
	const q = `
SELECT id, name, description
FROM genres
WHERE id=$1`
	var g model.Genre
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&g.ID, &g.Name, &g.Description); err != nil {
		return nil, err
	}
	return &g, nil
}
