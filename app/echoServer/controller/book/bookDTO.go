package book

// Status and owner are never part of the write payloads; both are set
// server-side.

type CreateBookReq struct {
	Title          string  `json:"title" validate:"required"`
	Description    string  `json:"description"`
	PickupLocation *string `json:"pickup_location"`
	AuthorIDs      []int64 `json:"author_ids" validate:"omitempty,dive,gt=0"`
	GenreIDs       []int64 `json:"genre_ids" validate:"omitempty,dive,gt=0"`
}

type UpdateBookReq struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	PickupLocation *string  `json:"pickup_location"`
	AuthorIDs      *[]int64 `json:"author_ids" validate:"omitempty,dive,gt=0"`
	GenreIDs       *[]int64 `json:"genre_ids" validate:"omitempty,dive,gt=0"`
}
