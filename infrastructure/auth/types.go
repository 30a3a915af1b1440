package auth

type ClaimsData struct {
	Issuer    string
	Subject   string
	TokenType string
	ExpiresAt int64
	IssuedAt  int64
}
