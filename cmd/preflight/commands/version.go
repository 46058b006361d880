package commands

import (
	"fmt"
	"runtime"

	"github.com/kavrelis/preflight/internal/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of preflight",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("preflight %s %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
