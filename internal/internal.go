package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "qrm_access_token"
)
