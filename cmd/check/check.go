package check

import (
	"fmt"
	"io"
	"os"

	"github.com/buger/goterm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/tagmirror/cmd/util"
	"github.com/sidkik/tagmirror/pkg/config"
	"github.com/sidkik/tagmirror/pkg/errors"
	"github.com/sidkik/tagmirror/pkg/model"
	"github.com/sidkik/tagmirror/pkg/sync"
	"github.com/sidkik/tagmirror/pkg/tags"
)

// Mocked out for unit testing.
var (
	parseJob            = config.ParseJob
	loadTags            = tags.Load
	loadModel           = model.Load
	stdout    io.Writer = os.Stdout
)

// New creates a new `check` command.
func New() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the dynamic links in the target folder resolve",
		Long: "Check that every dynamic link below the configured target folder\n" +
			"points at a tag in the tag export. The model isn't modified.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(configPath); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultJobConfigPath,
		"The path to the job config.")
	return cmd
}

func run(configPath string) error {
	cfg, err := parseJob(configPath)
	if err != nil {
		return errors.WithContext(err, "parse job config")
	}

	tree, err := loadTags(cfg.Tags)
	if err != nil {
		return errors.WithContext(err, "load tags")
	}

	m, err := loadModel(cfg.Model)
	if err != nil {
		return errors.WithContext(err, "load model")
	}
	m.SetTags(tree)

	folder, ok := m.Get(cfg.TargetFolder)
	if !ok {
		return errors.WithContext(
			errors.NodeNotFound{Namespace: "model", Path: cfg.TargetFolder},
			"get target folder")
	}

	total := len(m.FindDynamicLinks(folder))
	unresolved := sync.CheckDynamicLinks(m, log.StandardLogger(), folder)
	if len(unresolved) == 0 {
		fmt.Fprintln(stdout, goterm.Color(fmt.Sprintf(
			"All %d dynamic link(s) below %s resolve.", total, folder.Path()),
			goterm.GREEN))
		return nil
	}

	fmt.Fprintln(stdout, goterm.Color(fmt.Sprintf(
		"%d of %d dynamic link(s) below %s don't resolve:",
		len(unresolved), total, folder.Path()), goterm.RED))
	for _, link := range unresolved {
		fmt.Fprintf(stdout, "\t%s -> %s\n", link.Node.Path(), link.Target)
	}
	return errors.NewFriendlyError("Found %d unresolved dynamic link(s).", len(unresolved))
}
