package handler

// messageResponse is the legacy message envelope used for confirmations and
// every error body.
type messageResponse struct {
	Message string `json:"message"`
}

type createTaskRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
}

// updateTaskRequest is a full replace of the mutable fields; partial updates
// are not part of the contract.
type updateTaskRequest struct {
	Title       string `json:"title"  validate:"required"`
	Description string `json:"description"`
	Status      string `json:"status" validate:"required,oneof=PENDING COMPLETED"`
	DueDate     string `json:"dueDate"`
}

// taskResponse mirrors the legacy row shape: snake_case keys and timestamps
// rendered as "YYYY-MM-DD HH:MM:SS" in UTC with no zone suffix. Existing
// clients parse exactly this, so the format is frozen.
type taskResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	DueDate     *string `json:"due_date"`
	UserID      int64   `json:"user_id"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}
