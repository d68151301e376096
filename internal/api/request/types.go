package request

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// CompleteRequest is the request body for committing a day's points
type CompleteRequest struct {
	Points *int64 `json:"points"`
}

// GuessRequest is the request body for guessing a chain link
type GuessRequest struct {
	Guess string `json:"guess"`
}
