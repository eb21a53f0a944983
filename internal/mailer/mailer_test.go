package mailer_test

import (
	"testing"

	"github.com/PYROP3/pets-io/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Construction parses the embedded templates, so a broken template fails here
// rather than on the first send.
func TestNewSMTPMailer(t *testing.T) {
	m, err := mailer.NewSMTPMailer(mailer.Config{
		Host:        "smtp.example.com",
		Port:        587,
		Username:    "pets.io@example.com",
		Password:    "secret",
		SourceEmail: "pets.io@example.com",
		ServerURL:   "http://localhost:8080",
	})

	require.NoError(t, err)
	assert.NotNil(t, m)
}
