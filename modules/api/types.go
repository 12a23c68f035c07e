package api

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProfileRequest is the body of PUT /auth/profile. Omitted fields are kept.
type ProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func ok(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}
