package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contestapp/gateway/internal/token"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTokenMintAndInspect(t *testing.T) {
	out, err := execute(t, "token", "mint",
		"--secret", "cli-test-secret",
		"--user-id", "u1", "--username", "alice", "--role", "admin")
	require.NoError(t, err)

	raw := strings.TrimSpace(out)
	claims, err := token.NewValidator("cli-test-secret").Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	out, err = execute(t, "token", "inspect", raw, "--secret", "cli-test-secret")
	require.NoError(t, err)
	assert.Contains(t, out, `"user_id": "u1"`)
}

func TestTokenMint_RequiresUserID(t *testing.T) {
	tokenUserID = ""
	_, err := execute(t, "token", "mint", "--secret", "cli-test-secret", "--user-id", "")
	assert.Error(t, err)
}

func TestRoutesCheck_DefaultTable(t *testing.T) {
	out, err := execute(t, "routes", "check", "get", "/member/42")
	require.NoError(t, err)
	assert.Contains(t, out, "route:")
	assert.Contains(t, out, "exempt")

	out, err = execute(t, "routes", "check", "GET", "/api/teams/list")
	require.NoError(t, err)
	assert.Contains(t, out, "auth:   required")

	out, err = execute(t, "routes", "check", "GET", "/nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "404")
}

func TestRoutesList_DefaultTable(t *testing.T) {
	out, err := execute(t, "routes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "/member")
	assert.Contains(t, out, "Exemptions:")
}
