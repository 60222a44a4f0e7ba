package models

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username
	// required: true
	// example: jdelacruz
	Username string `json:"username"`

	// Password
	// required: true
	// example: secret123
	Password string `json:"password"`

	// Email
	// required: true
	// example: jdelacruz@flordegrace.edu.ph
	Email string `json:"email"`

	// Role, admin or staff
	// example: staff
	Role string `json:"role,omitempty"`
}

// RegisterResponse represents a successful registration response
// swagger:model RegisterResponse
type RegisterResponse struct {
	// example: User created successfully
	Message string `json:"message"`

	User *User `json:"user"`
}
