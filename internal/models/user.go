package models

// User is the stored credential record. Password holds the bcrypt hash,
// never the plaintext.
type User struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Identity is a resolved, authenticated user with the credential material
// stripped. This is what flows through request handling.
type Identity struct {
	Username string `json:"username"`
}

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
