package dto

// MessageResponse acknowledges a mutation.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse acknowledges a creation and returns the new id.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
