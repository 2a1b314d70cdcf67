package bookrepo

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"bookshare/model"
)

const dialect = "postgres"

// Filter narrows the book listing. Sort carries a signed key:
// "title" sorts ascending, "-title" descending. ID is always the tiebreak.
type Filter struct {
	Status   string
	GenreID  int64
	AuthorID int64
	Search   string
	Sort     string
	Page     int
	PageSize int
}

// Tx is the set of book writes that must share one transaction.
type Tx interface {
	Insert(ctx context.Context, b *model.Book) error
	AuthorsExist(ctx context.Context, ids []int64) (bool, error)
	GenresExist(ctx context.Context, ids []int64) (bool, error)
	ReplaceAuthors(ctx context.Context, bookID int64, ids []int64) error
	ReplaceGenres(ctx context.Context, bookID int64, ids []int64) error
	OwnerOf(ctx context.Context, bookID int64) (int64, error)
	Update(ctx context.Context, bookID int64, title, description, pickup *string) error
	DeleteRequests(ctx context.Context, bookID int64) (int64, error)
	DeleteLinks(ctx context.Context, bookID int64) error
	Delete(ctx context.Context, bookID int64) error
}

type Repo interface {
	InTx(ctx context.Context, fn func(Tx) error) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context, f Filter) ([]model.Book, int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(&bookTx{tx: tx}); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
SELECT id, title, description, owner_id, status, pickup_location, created_at, updated_at
FROM books
WHERE id=$1`
	var b model.Book
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Title, &b.Description, &b.OwnerID, &b.Status, &b.PickupLocation, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	out := []model.Book{b}
	if err := r.loadLinks(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.Book, int64, error) {
	base := goqu.Dialect(dialect).
		From("books").
		Where(whereClauses(f)...)

	countSQL, countArgs, err := base.
		Select(goqu.COUNT(goqu.Star())).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL, listArgs, err := base.
		Select("id", "title", "description", "owner_id", "status", "pickup_location", "created_at", "updated_at").
		Order(orderClause(f.Sort), goqu.I("id").Asc()).
		Limit(uint(f.PageSize)).
		Offset(uint((f.Page - 1) * f.PageSize)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.OwnerID, &b.Status, &b.PickupLocation, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadLinks(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func whereClauses(f Filter) []exp.Expression {
	var where []exp.Expression
	if f.Status != "" {
		where = append(where, goqu.Ex{"status": f.Status})
	}
	if f.GenreID != 0 {
		where = append(where, goqu.L(
			"EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = books.id AND bg.genre_id = ?)", f.GenreID))
	}
	if f.AuthorID != 0 {
		where = append(where, goqu.L(
			"EXISTS (SELECT 1 FROM book_authors ba WHERE ba.book_id = books.id AND ba.author_id = ?)", f.AuthorID))
	}
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		where = append(where, goqu.Or(
			goqu.I("title").ILike(pat),
			goqu.I("description").ILike(pat),
		))
	}
	return where
}

func orderClause(sort string) exp.OrderedExpression {
	if len(sort) > 0 && sort[0] == '-' {
		return goqu.I(sort[1:]).Desc()
	}
	if sort == "" {
		sort = "created_at"
	}
	return goqu.I(sort).Asc()
}

// loadLinks fills Authors and Genres for every book in the slice.
func (r *repo) loadLinks(ctx context.Context, books []model.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(books))
	byID := make(map[int64]*model.Book, len(books))
	for i := range books {
		books[i].Authors = []model.Author{}
		books[i].Genres = []model.Genre{}
		ids = append(ids, books[i].ID)
		byID[books[i].ID] = &books[i]
	}

	const qa = `
	SELECT ba.book_id, a.id, a.name, a.biography
	FROM book_authors ba
	JOIN authors a ON a.id = ba.author_id
	WHERE ba.book_id = ANY($1)
	ORDER BY a.id`
	rows, err := r.db.QueryContext(ctx, qa, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var bookID int64
		var a model.Author
		if err := rows.Scan(&bookID, &a.ID, &a.Name, &a.Biography); err != nil {
			return err
		}
		b := byID[bookID]
		b.Authors = append(b.Authors, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const qg = `
	SELECT bg.book_id, g.id, g.name, g.description
	FROM book_genres bg
	JOIN genres g ON g.id = bg.genre_id
	WHERE bg.book_id = ANY($1)
	ORDER BY g.id`
	grows, err := r.db.QueryContext(ctx, qg, ids)
	if err != nil {
		return err
	}
	defer grows.Close()
	for grows.Next() {
		var bookID int64
		var g model.Genre
		if err := grows.Scan(&bookID, &g.ID, &g.Name, &g.Description); err != nil {
			return err
		}
		b := byID[bookID]
		b.Genres = append(b.Genres, g)
	}
	return grows.Err()
}

type bookTx struct{ tx *sql.Tx }

func (t *bookTx) Insert(ctx context.Context, b *model.Book) error {
	// status is never taken from the caller; a new book is always available
	const q = `
INSERT INTO books (title, description, owner_id, status, pickup_location)
VALUES ($1,$2,$3,'available',$4)
RETURNING id, status, created_at, updated_at`
	return t.tx.QueryRowContext(ctx, q, b.Title, b.Description, b.OwnerID, b.PickupLocation).
		Scan(&b.ID, &b.Status, &b.CreatedAt, &b.UpdatedAt)
}

func (t *bookTx) AuthorsExist(ctx context.Context, ids []int64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	const q = `SELECT COUNT(*) FROM authors WHERE id = ANY($1)`
	var n int
	if err := t.tx.QueryRowContext(ctx, q, ids).Scan(&n); err != nil {
		return false, err
	}
	return n == len(ids), nil
}

func (t *bookTx) GenresExist(ctx context.Context, ids []int64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	const q = `SELECT COUNT(*) FROM genres WHERE id = ANY($1)`
	var n int
	if err := t.tx.QueryRowContext(ctx, q, ids).Scan(&n); err != nil {
		return false, err
	}
	return n == len(ids), nil
}

func (t *bookTx) ReplaceAuthors(ctx context.Context, bookID int64, ids []int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id=$1`, bookID); err != nil {
		return err
	}
	const ins = `INSERT INTO book_authors (book_id, author_id) VALUES ($1,$2)`
	for _, id := range ids {
		if _, err := t.tx.ExecContext(ctx, ins, bookID, id); err != nil {
			return err
		}
	}
	return nil
}

func (t *bookTx) ReplaceGenres(ctx context.Context, bookID int64, ids []int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id=$1`, bookID); err != nil {
		return err
	}
	const ins = `INSERT INTO book_genres (book_id, genre_id) VALUES ($1,$2)`
	for _, id := range ids {
		if _, err := t.tx.ExecContext(ctx, ins, bookID, id); err != nil {
			return err
		}
	}
	return nil
}

func (t *bookTx) OwnerOf(ctx context.Context, bookID int64) (int64, error) {
	const q = `
		SELECT owner_id
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var owner int64
	err := t.tx.QueryRowContext(ctx, q, bookID).Scan(&owner)
	return owner, err
}

func (t *bookTx) Update(ctx context.Context, bookID int64, title, description, pickup *string) error {
	const q = `
		UPDATE books
		SET title = COALESCE($2, title),
			description = COALESCE($3, description),
			pickup_location = COALESCE($4, pickup_location),
			updated_at = now()
		WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, bookID, title, description, pickup)
	return err
}

func (t *bookTx) DeleteRequests(ctx context.Context, bookID int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM book_requests WHERE book_id=$1`, bookID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *bookTx) DeleteLinks(ctx context.Context, bookID int64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id=$1`, bookID); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id=$1`, bookID)
	return err
}

func (t *bookTx) Delete(ctx context.Context, bookID int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, bookID)
	return err
}
