package config

import (
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
)

// OAuthProviders returns the goth providers that have credentials configured.
func (c *Config) OAuthProviders() []goth.Provider {
	var providers []goth.Provider

	if c.GoogleClientID != "" && c.GoogleClientSecret != "" {
		providers = append(providers, google.New(
			c.GoogleClientID,
			c.GoogleClientSecret,
			c.APIBaseURL+"/api/auth/google/callback",
			"email", "profile",
		))
	}

	if c.FacebookClientID != "" && c.FacebookClientSecret != "" {
		providers = append(providers, facebook.New(
			c.FacebookClientID,
			c.FacebookClientSecret,
			c.APIBaseURL+"/api/auth/facebook/callback",
			"email",
		))
	}

	return providers
}
