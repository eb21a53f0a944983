package constant

const (
	// VerificationTokenLength is the length of the hex token mailed out to
	// confirm a new account.
	VerificationTokenLength = 32

	// AuthTokenLength is the length of the hex bearer token identifying a
	// session, and of the password recovery nonce.
	AuthTokenLength = 64

	// AuthTokenPrefix is the scheme prefix expected in the Authorization
	// header.
	AuthTokenPrefix = "Bearer "
)

const (
	DefaultPetCount    = 0
	DefaultDeviceCount = 0
)
