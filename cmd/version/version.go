package version

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidkik/tagmirror/pkg/config"
	"github.com/sidkik/tagmirror/pkg/tags"
	"github.com/sidkik/tagmirror/pkg/version"
)

// Mocked out for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of tagmirror.",
		Long: "Print the version of tagmirror, along with the job config and\n" +
			"tag export formats that it understands.",
		Run: func(_ *cobra.Command, _ []string) {
			run()
		},
	}
}

func run() {
	fmt.Fprintf(stdout, "version:        %s\n", version.String())
	fmt.Fprintf(stdout, "job config:     %s\n", config.SupportedJobConfigVersion)
	fmt.Fprintf(stdout, "tag export:     %s\n", tags.SupportedFormatVersions)
}
