package dto

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse mirrors the body returned on successful authentication.
type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// MessageResponse is the uniform body for login failures.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest payload for account creation.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse describes the created account.
type RegisterResponse struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}
