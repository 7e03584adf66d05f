package dto

// ReviewRequest carries an optional admin note.
type ReviewRequest struct {
	Note string `json:"note"`
}

// OrderStatusRequest is the admin override payload.
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// OrderStatusResponse reports whether the override changed anything.
type OrderStatusResponse struct {
	Order   OrderResponse `json:"order"`
	Applied bool          `json:"applied"`
}

// BanRequest blocks or unblocks a user.
type BanRequest struct {
	Banned *bool  `json:"banned" binding:"required"`
	Reason string `json:"reason"`
}

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Message string `json:"message"`
}
