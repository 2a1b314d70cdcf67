package catalog

type CreateAuthorReq struct {
	Name      string  `json:"name" validate:"required"`
	Biography *string `json:"biography"`
}

type CreateGenreReq struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}
