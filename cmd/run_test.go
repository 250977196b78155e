package cmd

import (
	"bytes"
	"testing"
)

func TestRunRequiresTheme(t *testing.T) {
	for _, args := range [][]string{{}, {"--theme", "  "}} {
		cmd := newRunCmd()
		cmd.SetArgs(args)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})

		err := cmd.Execute()
		if err == nil || err.Error() != "--theme is required" {
			t.Errorf("Expected --theme is required for %v, got %v", args, err)
		}
	}
}
