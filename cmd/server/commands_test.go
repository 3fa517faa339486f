package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("ELECTION_AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("ELECTION_LOG_LEVEL", "error")

	out, err := execute(t, "token", "--subject", "ops")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), claims, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestTokenCommand_NoSecret(t *testing.T) {
	t.Setenv("ELECTION_AUTH_JWT_SECRET", "")
	t.Setenv("ELECTION_LOG_LEVEL", "error")

	_, err := execute(t, "token")
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestRootCommand_BadConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "token")
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parties.json"),
		[]byte(`[{"code":"jimin","name":"自民","total_votes":1,"municipalities":1}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "election_data.json"),
		[]byte(`{"01001":{"name":"札幌市","pref":"北海道","valid_votes":10,"parties":{"jimin":1}}}`), 0o644))

	t.Setenv("ELECTION_DATA_DB_PATH", filepath.Join(dir, "election.db"))
	t.Setenv("ELECTION_LOG_LEVEL", "error")

	_, err := execute(t, "import", "--dir", dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "election.db"))
	assert.NoError(t, err)
}
