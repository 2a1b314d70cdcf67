package requestsvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"bookshare/model"
	requestrepo "bookshare/repository/request"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrOwnBook      ErrCode = "OWN_BOOK"
	ErrNotAvailable ErrCode = "BOOK_NOT_AVAILABLE"
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrNotOwner     ErrCode = "NOT_OWNER"
	ErrNotRequester ErrCode = "NOT_REQUESTER"
	ErrNotPending   ErrCode = "NOT_PENDING"
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

// acceptRetries bounds the serialization-failure retry loop.
const acceptRetries = 3

type Service interface {
	// Create files a pending request. The availability check and the
	// insert run under a lock on the book row, so a book mid-transition
	// to lent cannot accept new requests.
	Create(ctx context.Context, requesterID, bookID int64, message *string) (*model.BookRequest, error)

	// ListMine returns requests the user filed and requests against
	// books the user owns.
	ListMine(ctx context.Context, userID int64) ([]model.BookRequest, error)

	Get(ctx context.Context, userID, requestID int64) (*model.BookRequest, error)

	// UpdateMessage lets the requester amend a still-pending request.
	UpdateMessage(ctx context.Context, userID, requestID int64, message string) (*model.BookRequest, error)

	// Delete withdraws the requester's own pending request.
	Delete(ctx context.Context, userID, requestID int64) error

	// Accept marks the request accepted, the book lent, and every other
	// pending request on the same book rejected, all in one transaction.
	Accept(ctx context.Context, actingUserID, requestID int64) error

	// Reject marks the request rejected; the book and the sibling
	// requests are untouched.
	Reject(ctx context.Context, actingUserID, requestID int64) error
}

type service struct{ r requestrepo.Repo }

func New(r requestrepo.Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, requesterID, bookID int64, message *string) (*model.BookRequest, error) {
	req := &model.BookRequest{
		BookID:      bookID,
		RequesterID: requesterID,
		Message:     message,
	}
	err := s.r.InTx(ctx, nil, func(tx requestrepo.Tx) error {
		owner, status, err := tx.LockBook(ctx, bookID)
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrBookNotFound)
		}
		if err != nil {
			return err
		}
		if owner == requesterID {
			return makeErr(ErrOwnBook)
		}
		if status != model.BookAvailable {
			return makeErr(ErrNotAvailable)
		}
		return tx.Insert(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *service) ListMine(ctx context.Context, userID int64) ([]model.BookRequest, error) {
	return s.r.ListForUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, requestID int64) (*model.BookRequest, error) {
	req, ownerID, err := s.r.ByID(ctx, requestID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	// requests are invisible outside the owner/requester pair
	if req.RequesterID != userID && ownerID != userID {
		return nil, makeErr(ErrNotFound)
	}
	return req, nil
}

func (s *service) UpdateMessage(ctx context.Context, userID, requestID int64, message string) (*model.BookRequest, error) {
	err := s.r.InTx(ctx, nil, func(tx requestrepo.Tx) error {
		row, err := tx.LockRequest(ctx, requestID)
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		if err != nil {
			return err
		}
		if row.RequesterID != userID {
			if row.BookOwnerID == userID {
				return makeErr(ErrNotRequester)
			}
			return makeErr(ErrNotFound)
		}
		if row.Status != model.RequestPending {
			return makeErr(ErrNotPending)
		}
		return tx.UpdateMessage(ctx, requestID, message)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, requestID)
}

func (s *service) Delete(ctx context.Context, userID, requestID int64) error {
	return s.r.InTx(ctx, nil, func(tx requestrepo.Tx) error {
		row, err := tx.LockRequest(ctx, requestID)
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		if err != nil {
			return err
		}
		if row.RequesterID != userID {
			if row.BookOwnerID == userID {
				return makeErr(ErrNotRequester)
			}
			return makeErr(ErrNotFound)
		}
		if row.Status != model.RequestPending {
			return makeErr(ErrNotPending)
		}
		return tx.Delete(ctx, requestID)
	})
}

func (s *service) Accept(ctx context.Context, actingUserID, requestID int64) error {
	var err error
	for attempt := 0; attempt < acceptRetries; attempt++ {
		err = s.r.InTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(tx requestrepo.Tx) error {
			row, err := tx.LockRequest(ctx, requestID)
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			if err != nil {
				return err
			}
			if row.BookOwnerID != actingUserID {
				return makeErr(ErrNotOwner)
			}
			if row.Status != model.RequestPending {
				return makeErr(ErrNotPending)
			}
			if err := tx.MarkAccepted(ctx, requestID); err != nil {
				return err
			}
			if err := tx.MarkBookLent(ctx, row.BookID); err != nil {
				return err
			}
			_, err = tx.RejectPendingSiblings(ctx, row.BookID, requestID)
			return err
		})
		if !retryable(err) {
			return err
		}
	}
	return err
}

func (s *service) Reject(ctx context.Context, actingUserID, requestID int64) error {
	return s.r.InTx(ctx, nil, func(tx requestrepo.Tx) error {
		row, err := tx.LockRequest(ctx, requestID)
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		if err != nil {
			return err
		}
		if row.BookOwnerID != actingUserID {
			return makeErr(ErrNotOwner)
		}
		if row.Status != model.RequestPending {
			return makeErr(ErrNotPending)
		}
		return tx.MarkRejected(ctx, requestID)
	})
}

// retryable reports whether the error is a transient transaction
// conflict rather than a caller-input problem.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure ||
			pgErr.Code == pgerrcode.DeadlockDetected
	}
	return false
}
