package requestrepo

import (
	"context"
	"database/sql"

	"bookshare/model"
)

// Row is a locked request joined with its book, enough for the
// lifecycle guards without a second round trip.
type Row struct {
	ID          int64
	BookID      int64
	RequesterID int64
	Status      model.RequestStatus
	BookOwnerID int64
	BookStatus  model.BookStatus
}

// Tx is the set of request/book writes that must share one transaction.
type Tx interface {
	LockBook(ctx context.Context, bookID int64) (ownerID int64, status model.BookStatus, err error)
	Insert(ctx context.Context, r *model.BookRequest) error
	LockRequest(ctx context.Context, requestID int64) (*Row, error)
	MarkAccepted(ctx context.Context, requestID int64) error
	MarkRejected(ctx context.Context, requestID int64) error
	MarkBookLent(ctx context.Context, bookID int64) error
	RejectPendingSiblings(ctx context.Context, bookID, exceptID int64) (int64, error)
	UpdateMessage(ctx context.Context, requestID int64, message string) error
	Delete(ctx context.Context, requestID int64) error
}

type Repo interface {
	InTx(ctx context.Context, opts *sql.TxOptions, fn func(Tx) error) error
	ListForUser(ctx context.Context, userID int64) ([]model.BookRequest, error)
	ByID(ctx context.Context, id int64) (*model.BookRequest, int64, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) InTx(ctx context.Context, opts *sql.TxOptions, fn func(Tx) error) error {
	tx, err := r.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(&requestTx{tx: tx}); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// ListForUser returns requests the user filed plus requests against
// books the user owns.
func (r *repo) ListForUser(ctx context.Context, userID int64) ([]model.BookRequest, error) {
	const q = `
			SELECT
			r.id           AS id,
			r.book_id      AS book_id,
			r.requester_id AS requester_id,
			r.message      AS message,
			r.status       AS status,
			b.title        AS book_title,
			u.email        AS requester_email,
			r.created_at   AS created_at,
			r.updated_at   AS updated_at
			FROM book_requests r
			JOIN books b ON b.id = r.book_id
			JOIN users u ON u.id = r.requester_id
			WHERE b.owner_id = $1 OR r.requester_id = $1
			ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookRequest
	for rows.Next() {
		var br model.BookRequest
		if err := rows.Scan(
			&br.ID, &br.BookID, &br.RequesterID, &br.Message, &br.Status,
			&br.BookTitle, &br.RequesterEmail, &br.CreatedAt, &br.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, br)
	}
	return out, rows.Err()
}

// ByID also returns the book owner's id so the service can scope access.
func (r *repo) ByID(ctx context.Context, id int64) (*model.BookRequest, int64, error) {
	const q = `
		SELECT r.id, r.book_id, r.requester_id, r.message, r.status,
			b.title, u.email, b.owner_id, r.created_at, r.updated_at
		FROM book_requests r
		JOIN books b ON b.id = r.book_id
		JOIN users u ON u.id = r.requester_id
		WHERE r.id = $1`
	var br model.BookRequest
	var ownerID int64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&br.ID, &br.BookID, &br.RequesterID, &br.Message, &br.Status,
		&br.BookTitle, &br.RequesterEmail, &ownerID, &br.CreatedAt, &br.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}
	return &br, ownerID, nil
}

type requestTx struct{ tx *sql.Tx }

func (t *requestTx) LockBook(ctx context.Context, bookID int64) (int64, model.BookStatus, error) {
	const q = `
		SELECT owner_id, status
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var owner int64
	var status model.BookStatus
	err := t.tx.QueryRowContext(ctx, q, bookID).Scan(&owner, &status)
	return owner, status, err
}

func (t *requestTx) Insert(ctx context.Context, r *model.BookRequest) error {
	const q = `
		INSERT INTO book_requests (book_id, requester_id, message, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING id, status, created_at, updated_at`
	return t.tx.QueryRowContext(ctx, q, r.BookID, r.RequesterID, r.Message).
		Scan(&r.ID, &r.Status, &r.CreatedAt, &r.UpdatedAt)
}

func (t *requestTx) LockRequest(ctx context.Context, requestID int64) (*Row, error) {
	const q = `
		SELECT r.id, r.book_id, r.requester_id, r.status, b.owner_id, b.status
		FROM book_requests r
		JOIN books b ON b.id = r.book_id
		WHERE r.id = $1
		FOR UPDATE OF r, b`
	var row Row
	err := t.tx.QueryRowContext(ctx, q, requestID).Scan(
		&row.ID, &row.BookID, &row.RequesterID, &row.Status, &row.BookOwnerID, &row.BookStatus,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (t *requestTx) MarkAccepted(ctx context.Context, requestID int64) error {
	const q = `
		UPDATE book_requests
		SET status = 'accepted',
			updated_at = now()
		WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, requestID)
	return err
}

func (t *requestTx) MarkRejected(ctx context.Context, requestID int64) error {
	const q = `
		UPDATE book_requests
		SET status = 'rejected',
			updated_at = now()
		WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, requestID)
	return err
}

func (t *requestTx) MarkBookLent(ctx context.Context, bookID int64) error {
	const q = `
		UPDATE books
		SET status = 'lent',
			updated_at = now()
		WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, bookID)
	return err
}

func (t *requestTx) RejectPendingSiblings(ctx context.Context, bookID, exceptID int64) (int64, error) {
	const q = `
		UPDATE book_requests
		SET status = 'rejected',
			updated_at = now()
		WHERE book_id = $1
		AND id <> $2
		AND status = 'pending'`
	res, err := t.tx.ExecContext(ctx, q, bookID, exceptID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *requestTx) UpdateMessage(ctx context.Context, requestID int64, message string) error {
	const q = `
		UPDATE book_requests
		SET message = $2,
			updated_at = now()
		WHERE id = $1`
	_, err := t.tx.ExecContext(ctx, q, requestID, message)
	return err
}

func (t *requestTx) Delete(ctx context.Context, requestID int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM book_requests WHERE id=$1`, requestID)
	return err
}
