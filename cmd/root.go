package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/tagmirror/cmd/check"
	configCmd "github.com/sidkik/tagmirror/cmd/config"
	"github.com/sidkik/tagmirror/cmd/generate"
	"github.com/sidkik/tagmirror/cmd/util"
	"github.com/sidkik/tagmirror/cmd/version"
)

// verboseLogKey is the environment variable used to enable verbose logging.
// When it's set to `true`, Debug events are logged, rather than just Info and
// above.
const verboseLogKey = "TAGMIRROR_LOG_VERBOSE"

// Execute runs the main CLI process.
func Execute() {
	if os.Getenv(verboseLogKey) == "true" {
		log.SetLevel(log.DebugLevel)
	}

	if err := newRootCommand().Execute(); err != nil {
		util.HandleFatalError(err)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "tagmirror",
		Short:        "Mirror a controller's tag tree into an information model",
		SilenceUsage: true,

		// The call to rootCmd.Execute prints the error, so we silence errors
		// here to avoid double printing.
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		check.New(),
		configCmd.New(),
		generate.New(),
		version.New(),
	)
	return rootCmd
}
