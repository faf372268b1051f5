package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestExportCommandValidation(t *testing.T) {
	t.Run("required flags are enforced", func(t *testing.T) {
		_, err := runRoot(t, "export")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("empty owner is rejected", func(t *testing.T) {
		_, err := runRoot(t, "export",
			"--owner", "  ", "--repo", "repo", "--number", "7")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "owner and repo")
	})

	t.Run("non-positive number is rejected", func(t *testing.T) {
		_, err := runRoot(t, "export",
			"--owner", "octo", "--repo", "repo", "--number", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "positive")
	})
}
