package binance

// Credentials is the API key pair used by a client. It is built once and never mutated;
// the secret is only ever read as HMAC input.
type Credentials struct {
	publicKey string
	secretKey string
}

func NewCredentials(publicKey, secretKey string) Credentials {
	return Credentials{publicKey: publicKey, secretKey: secretKey}
}

// PublicKey is sent in the X-MBX-APIKEY header.
func (c Credentials) PublicKey() string {
	return c.publicKey
}

func (c Credentials) sign(message string) string {
	return Sign(c.secretKey, message)
}

// String keeps the secret out of logs and %v formatting.
func (c Credentials) String() string {
	return "Credentials{publicKey:" + c.publicKey + ", secretKey:***}"
}
