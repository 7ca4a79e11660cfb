// Package appid resolves the application identity used for the binary name,
// env prefix, config directory and telemetry namespace.
package appid

import (
	"context"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/appidentity"
)

// Built-in identity values.
const (
	BinaryName  = "socialgate"
	EnvPrefix   = "SOCIALGATE_"
	ConfigName  = "socialgate"
	Description = "Rate-limited gateway for the Facebook, Instagram, Twitter and YouTube APIs"
)

// Default returns the built-in identity.
func Default() *appidentity.Identity {
	return &appidentity.Identity{
		BinaryName:  BinaryName,
		EnvPrefix:   EnvPrefix,
		ConfigName:  ConfigName,
		Description: Description,
	}
}

// Get returns the identity at FULMEN_APP_IDENTITY_PATH when that variable
// is set, and the built-in identity otherwise.
func Get(ctx context.Context) (*appidentity.Identity, error) {
	if strings.TrimSpace(os.Getenv(appidentity.EnvIdentityPath)) != "" {
		return appidentity.Get(ctx)
	}
	return Default(), nil
}
