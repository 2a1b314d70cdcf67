// model/request.go
package model

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// BookRequest is a borrow request filed against someone else's book.
// BookTitle and RequesterEmail are denormalized for read responses.
type BookRequest struct {
	ID             int64         `json:"id"`
	BookID         int64         `json:"book"`
	RequesterID    int64         `json:"requester"`
	Message        *string       `json:"message"`
	Status         RequestStatus `json:"status"`
	BookTitle      string        `json:"book_title,omitempty"`
	RequesterEmail string        `json:"requester_email,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
