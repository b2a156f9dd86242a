package tasks

type CreateRequest struct {
	Text     *string  `json:"text"`
	Category *string  `json:"category"`
	Priority Priority `json:"priority"`
}

type UpdateRequest struct {
	Completed *bool `json:"completed"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
