package cli

import (
	"context"
	"fmt"
	"io"

	"keymerger/internal/merger"
)

// Execute runs the command tree with args (excluding argv[0]) and returns the exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	cmd := BuildRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		if kind := merger.Kind(err); kind != "" {
			fmt.Fprintf(stderr, "Error [%s]: %v\n", kind, err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}
	return ExitCode(err)
}
