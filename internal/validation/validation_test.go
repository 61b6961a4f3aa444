package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "SuperSecret1!", false},
		{"too short", "Short1!", true},
		{"too long", strings.Repeat("Aa1!", 40), true},
		{"no uppercase", "supersecret1!", true},
		{"no lowercase", "SUPERSECRET1!", true},
		{"no digit", "SuperSecretX!", true},
		{"no special character", "SuperSecret12", true},
		{"exactly twelve chars", "Abcdefghij1!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid username", "meme_lord", false},
		{"valid with hyphen", "meme-lord-42", false},
		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 31), true},
		{"invalid characters", "meme lord!", true},
		{"leading underscore", "_memelord", true},
		{"trailing hyphen", "memelord-", true},
		{"digits only", "12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "user@example.com", false},
		{"valid with plus", "user+tag@example.co.uk", false},
		{"missing at", "userexample.com", true},
		{"missing domain", "user@", true},
		{"missing tld", "user@example", true},
		{"spaces", "user name@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
