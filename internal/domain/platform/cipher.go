package platform

// CredentialCipher seals credentials before they reach the database and
// opens them again on load. Implementations live in infrastructure.
type CredentialCipher interface {
	Seal(creds Credentials) ([]byte, error)
	Open(blob []byte) (Credentials, error)
}
