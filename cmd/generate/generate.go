package generate

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
	"github.com/sidkik/tagmirror/pkg/fswatch"
	"github.com/sidkik/tagmirror/pkg/model"
	"github.com/sidkik/tagmirror/pkg/sync"
	"github.com/sidkik/tagmirror/pkg/tags"
)

// Mocked out for unit testing.
var (
	parseJob            = config.ParseJob
	loadTags            = tags.Load
	loadModel           = model.Load
	saveModel           = model.Save
	stdout    io.Writer = os.Stdout
)

// New creates a new `generate` command.
func New() *cobra.Command {
	var configPath string
	var deleteExisting, watch bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate model nodes from the tag export",
		Long: "Generate model nodes for the tags below the configured starting\n" +
			"node, and link each generated variable to its tag. The model\n" +
			"snapshot is updated in place.\n\n" +
			"With --watch, the nodes are regenerated whenever the tag export\n" +
			"or the job config changes. If the job config is changed to point\n" +
			"at another tag export, the new file is watched instead.",
		Run: func(cmd *cobra.Command, _ []string) {
			var deleteOverride *bool
			if cmd.Flags().Changed("delete-existing") {
				deleteOverride = &deleteExisting
			}

			runFn := run
			if watch {
				runFn = runWatch
			}

			if err := runFn(configPath, deleteOverride); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultJobConfigPath,
		"The path to the job config.")
	cmd.Flags().BoolVar(&deleteExisting, "delete-existing", false,
		"Override deleteExistingTags from the job config.")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false,
		"Regenerate the nodes whenever the tag export changes.")
	return cmd
}

func run(configPath string, deleteOverride *bool) error {
	cfg, err := parseJob(configPath)
	if err != nil {
		return errors.WithContext(err, "parse job config")
	}

	if deleteOverride != nil {
		cfg.DeleteExistingTags = *deleteOverride
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

	job, err := sync.NewGenerator(m, log.StandardLogger()).GenerateNodesIntoModel(cfg)
	if err != nil {
		return errors.WithContext(err, "start generation")
	}

	pp := util.NewProgressPrinter(stdout, fmt.Sprintf(
		"Generating nodes into %s", cfg.TargetFolder))
	go pp.Run()
	genErr := job.Wait()
	pp.StopWithPrint(util.ClearProgress)

	// The nodes generated before a failure are kept, so the model is saved
	// either way.
	if err := saveModel(cfg.Model, m); err != nil {
		return errors.WithContext(err, "save model")
	}

	if genErr != nil {
		return errors.WithContext(genErr, "generate nodes")
	}

	printSummary(job)
	return nil
}

func runWatch(configPath string, deleteOverride *bool) error {
	for {
		cfg, err := parseJob(configPath)
		if err != nil {
			return errors.WithContext(err, "parse job config")
		}

		watcher, err := fswatch.Watch(configPath, cfg.Tags)
		if err != nil {
			return errors.WithContext(err, "watch files")
		}

		restart := regenerateOnChange(watcher.Events,
			func() error {
				return run(configPath, deleteOverride)
			},
			func() bool {
				return tagsPathChanged(configPath, cfg.Tags)
			})
		if err := watcher.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file watcher")
		}

		if !restart {
			return nil
		}
		log.Info("The tag export path changed. Restarting the file watcher.")
	}
}

// regenerateOnChange calls `generate` once, and then again after every
// event until `events` is closed. Failures don't stop the watch. It returns
// true without generating if `restart` reports that the watched files
// changed, so that the caller can watch the new files.
func regenerateOnChange(events <-chan struct{}, generate func() error,
	restart func() bool) bool {

	for {
		if err := generate(); err != nil {
			log.WithError(err).Error("Failed to generate nodes. " +
				"Waiting for the tag export to change before retrying.")
		}

		fmt.Fprintln(stdout, "Watching for changes to the tag export..")
		if _, ok := <-events; !ok {
			return false
		}

		if restart() {
			return true
		}
	}
}

// tagsPathChanged returns whether the job config at `configPath` now points
// at a tag export other than `watchedTags`. Configs that can't be parsed
// aren't treated as a change, since the next generation reports the error.
func tagsPathChanged(configPath, watchedTags string) bool {
	cfg, err := parseJob(configPath)
	if err != nil {
		return false
	}
	return cfg.Tags != watchedTags
}

func printSummary(job *sync.Job) {
	stats := job.Stats()
	fmt.Fprintf(stdout, "Generated nodes in %s: %d created, %d updated, %d folders cleared.\n",
		job.Duration(), stats.Created, stats.Updated, stats.Cleared)

	if unresolved := job.Unresolved(); len(unresolved) != 0 {
		fmt.Fprintln(stdout, goterm.Color(fmt.Sprintf(
			"%d dynamic link(s) don't resolve. Run `tagmirror check` for details.",
			len(unresolved)), goterm.YELLOW))
	}
}
