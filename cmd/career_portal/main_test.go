package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/career-portal/internal/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command in-process and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath = ""
	resolveListRoles = false
	resolvePretty = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestResolveRoleCommand(t *testing.T) {
	tests := []struct {
		args       []string
		wantMatch  string
		wantSource string
		wantRole   string
	}{
		{[]string{"web", "developer"}, "alias", types.SourceFixedCatalog, "Full Stack Developer"},
		{[]string{"machine learning"}, "keyword", types.SourceFixedCatalog, "Machine Learning Engineer"},
		{[]string{"I love cricket"}, "none", types.SourceFixedCatalogUnsupported, ""},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := executeCommand(t, append([]string{"resolve-role"}, tt.args...)...)
			require.NoError(t, err, out)

			var got resolveOutput
			require.NoError(t, json.Unmarshal([]byte(out), &got), out)
			assert.Equal(t, strings.Join(tt.args, " "), got.Query)
			assert.Equal(t, tt.wantMatch, string(got.Match))
			assert.Equal(t, tt.wantSource, got.Roadmap.Source)
			assert.Equal(t, tt.wantRole, got.Roadmap.CanonicalRole)
		})
	}
}

func TestResolveRoleCommand_List(t *testing.T) {
	out, err := executeCommand(t, "resolve-role", "--list")
	require.NoError(t, err)
	roles := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, roles, "Frontend Developer")
	assert.Contains(t, roles, "Full Stack Developer")
}

func TestResolveRoleCommand_Pretty(t *testing.T) {
	out, err := executeCommand(t, "resolve-role", "--pretty", "web developer")
	require.NoError(t, err)
	assert.Contains(t, out, "│ ROADMAP ")
	assert.Contains(t, out, "Full Stack Developer")
	assert.Contains(t, out, "alias")
}

func TestResolveRoleCommand_RequiresText(t *testing.T) {
	_, err := executeCommand(t, "resolve-role")
	assert.Error(t, err)
}

func TestServeCommand_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := executeCommand(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestMigrateCommand_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := executeCommand(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("port", 8080, "")
	cmd.Flags().Bool("json", false, "")
	cmd.Flags().Bool("debug", false, "")
	return cmd
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LOG_JSON", "")
	t.Setenv("ACTIVITY_POLICY", "")
	configPath = ""
	t.Cleanup(func() { configPath = "" })

	t.Run("defaults", func(t *testing.T) {
		cfg, v, err := loadConfig(newFlagCommand())
		require.NoError(t, err)
		assert.NotNil(t, v)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "best_effort", cfg.ActivityPolicy)
		assert.False(t, cfg.LogJSON)
	})

	t.Run("file then env then flags", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "portal.yaml")
		require.NoError(t, os.WriteFile(path, []byte("port: 6060\nactivity_policy: strict\nlog_json: false\n"), 0o600))
		configPath = path
		defer func() { configPath = "" }()

		cfg, _, err := loadConfig(newFlagCommand())
		require.NoError(t, err)
		assert.Equal(t, 6060, cfg.Port)
		assert.Equal(t, "strict", cfg.ActivityPolicy)

		t.Setenv("PORT", "9090")
		cfg, _, err = loadConfig(newFlagCommand())
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Port)

		cmd := newFlagCommand()
		require.NoError(t, cmd.Flags().Set("port", "7070"))
		require.NoError(t, cmd.Flags().Set("json", "true"))
		cfg, _, err = loadConfig(cmd)
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Port)
		assert.True(t, cfg.LogJSON)
	})

	t.Run("missing file", func(t *testing.T) {
		configPath = filepath.Join(t.TempDir(), "absent.yaml")
		defer func() { configPath = "" }()
		_, _, err := loadConfig(newFlagCommand())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("ACTIVITY_POLICY", "sometimes")
		_, _, err := loadConfig(newFlagCommand())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "activity_policy")
	})
}
