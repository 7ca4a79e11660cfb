package appid

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBuiltInIdentity(t *testing.T) {
	t.Setenv(appidentity.EnvIdentityPath, "")

	identity, err := Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "socialgate", identity.BinaryName)
	assert.Equal(t, "SOCIALGATE_", identity.EnvPrefix)
	assert.Equal(t, "socialgate", identity.ConfigName)
}

func TestGetEnvVarRemainsAuthoritative(t *testing.T) {
	appidentity.Reset()
	t.Cleanup(appidentity.Reset)

	t.Setenv(appidentity.EnvIdentityPath, filepath.Join(t.TempDir(), "missing-app.yaml"))

	_, err := Get(context.Background())
	require.Error(t, err)

	var notFound *appidentity.NotFoundError
	assert.True(t, errors.As(err, &notFound), "expected NotFoundError, got %T", err)
}
