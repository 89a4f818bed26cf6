package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// taskRequest is the body of create and update. The owner is never read from
// the payload.
type taskRequest struct {
	Description string `json:"description" validate:"max=1000"`
	Completed   bool   `json:"completed"`
}

type taskResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}
