package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// DynamoDB single table holding profiles, QRs and documents
	UsersTable string `envconfig:"USERS_TABLE"`

	// Document storage
	S3Bucket           string `envconfig:"S3_BUCKET"`
	UploadURLExpirySec uint   `envconfig:"UPLOAD_URL_EXPIRY_SEC" default:"3600"`

	// Free tier quota ceilings, per resource kind
	FreeTierQRLimit       int64 `envconfig:"FREE_TIER_QR_LIMIT" default:"1"`
	FreeTierDocumentLimit int64 `envconfig:"FREE_TIER_DOCUMENT_LIMIT" default:"1"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
