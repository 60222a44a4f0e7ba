package models

// Audit event operations.
const (
	EventRegister    = "register"
	EventLogin       = "login"
	EventLoginFailed = "login_failed"
	EventLogout      = "logout"
)

// AuthEvent is an audit record of an authentication action.
type AuthEvent struct {
	EventID   string `json:"event_id"`  // EventID is a unique identifier for the event.
	Timestamp int64  `json:"timestamp"` // Timestamp is the Unix time (seconds) of the action.
	UserID    string `json:"user_id"`   // UserID is empty when the login did not resolve to a user.
	Login     string `json:"login"`     // Login is the email or username that was presented.
	Operation string `json:"operation"` // Operation is one of the Event* constants.
}
