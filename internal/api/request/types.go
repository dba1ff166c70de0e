package request

// GuestRequest is the body of POST /auth/guest
type GuestRequest struct {
	DisplayName string `json:"display_name"`
}

// CredentialsRequest is the body of POST /auth/register and /auth/login
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
