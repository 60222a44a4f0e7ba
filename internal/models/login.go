package models

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Email
	// example: staff@flordegrace.edu.ph
	Email string `json:"email"`

	// Username, accepted in place of email
	// example: jdelacruz
	Username string `json:"username,omitempty"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`
}

// LoginResponse represents a successful login response.
// It carries both the token and the user descriptor so either client shape can be served.
// swagger:model LoginResponse
type LoginResponse struct {
	// example: Login successful
	Message string `json:"message"`

	// JWT token
	// example: JWT_TOKEN
	Token string `json:"token"`

	User *User `json:"user"`
}

// MessageResponse represents any response that only carries a human-readable message
// swagger:model MessageResponse
type MessageResponse struct {
	// example: Invalid email or password
	Message string `json:"message"`
}
