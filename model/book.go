// model/book.go
package model

import "time"

type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookReserved  BookStatus = "reserved"
	BookLent      BookStatus = "lent"
)

type Book struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	OwnerID        int64      `json:"owner"`
	Status         BookStatus `json:"status"`
	PickupLocation *string    `json:"pickup_location"`
	Authors        []Author   `json:"authors"`
	Genres         []Genre    `json:"genres"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Author struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Biography *string `json:"biography"`
}

type Genre struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}
