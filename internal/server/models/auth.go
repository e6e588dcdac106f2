package models

// RegisterRequest carries the fields needed to create a directory identity.
type RegisterRequest struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// LoginRequest carries username/password credentials.
type LoginRequest struct {
	Username string
	Password string
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
	Email        string `json:"email"`
}

// LogoutResult describes a logout. Both outcomes are successes.
type LogoutResult struct {
	Username         string `json:"username"`
	Message          string `json:"message"`
	Details          string `json:"details"`
	WasActiveSession bool   `json:"wasActiveSession"`
}
