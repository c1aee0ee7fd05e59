package handler

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error         string         `json:"error"`
	Notifications []Notification `json:"notifications,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
