package request

type CreateRequestReq struct {
	Book    int64   `json:"book" validate:"required,gt=0"`
	Message *string `json:"message"`
}

type UpdateRequestReq struct {
	Message string `json:"message" validate:"required"`
}
