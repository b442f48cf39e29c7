package cli

import (
	"fmt"
	"runtime"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display version information for shadoworacle, the Go version and the supported providers.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "shadoworacle version %s\n", rootCmd.Version)
		fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
		fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Providers: %v\n", oracle.Providers)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
