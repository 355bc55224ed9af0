package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sidkik/tagmirror/cmd/util"
	"github.com/sidkik/tagmirror/pkg/config"
	"github.com/sidkik/tagmirror/pkg/errors"
)

// Mocked for unit testing.
var (
	stdout              io.Writer = os.Stdout
	stdin               io.Reader = os.Stdin
	parseJob                      = config.ParseJob
	writeJob                      = config.WriteJob
	stat                          = os.Stat
	getWorkingDirectory           = os.Getwd
)

const (
	defaultTagsFile  = "tags.yaml"
	defaultModelFile = "model.yaml"
)

// New creates a new `config` command.
func New() *cobra.Command {
	var configPath string
	var cliOpts config.Job
	var deleteExisting bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or update the job config",
		Long: "Create or update the job config. Fields that aren't set with\n" +
			"flags are prompted for interactively.",
		Run: func(cmd *cobra.Command, _ []string) {
			var deleteOverride *bool
			if cmd.Flags().Changed("delete-existing") {
				deleteOverride = &deleteExisting
			}

			if err := SetupConfig(configPath, cliOpts, deleteOverride); err != nil {
				err = errors.NewFriendlyError("Failed to setup configuration:\n%s", err)
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultJobConfigPath,
		"The path to the job config to write.")
	cmd.Flags().StringVar(&cliOpts.Tags, "tags", "",
		"Set the path to the tag export. "+
			"Optional: If not set, `tagmirror config` will interactively prompt.")
	cmd.Flags().StringVar(&cliOpts.Model, "model", "",
		"Set the path to the model snapshot. "+
			"Optional: If not set, `tagmirror config` will interactively prompt.")
	cmd.Flags().StringVar(&cliOpts.StartingNodeToFetch, "starting-node", "",
		"Set the tag node to mirror. "+
			"Optional: If not set, `tagmirror config` will interactively prompt.")
	cmd.Flags().StringVar(&cliOpts.TargetFolder, "target-folder", "",
		"Set the model folder to mirror into. "+
			"Optional: If not set, `tagmirror config` will interactively prompt.")
	cmd.Flags().BoolVar(&deleteExisting, "delete-existing", false,
		"Delete the contents of existing folders before regenerating them. "+
			"Optional: If not set, the value in the current config is kept.")
	cmd.Flags().StringSliceVar(&cliOpts.Exclude, "exclude", nil,
		"Glob patterns for tags that shouldn't be mirrored, e.g. `**/Diagnostics`. "+
			"Optional: If not set, the patterns in the current config are kept.")
	return cmd
}

// SetupConfig writes the job config to `path`, prompting for the fields
// that aren't set in `cliOpts`. DeleteExistingTags is kept from the current
// config unless `deleteOverride` is set.
func SetupConfig(path string, cliOpts config.Job, deleteOverride *bool) error {
	cfg, err := generateConfig(path, cliOpts, deleteOverride)
	if err != nil {
		return errors.WithContext(err, "generate config")
	}

	if err := writeJob(path, cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	fmt.Fprintf(stdout, "Wrote config to %s\n", path)
	return nil
}

func nodePathValidationFn(nodePath string) (string, bool) {
	if !strings.HasPrefix(nodePath, "/") {
		return "Node paths must be absolute, e.g. `/PLC/Station1`. " +
			"Please enter another path.", false
	}
	return "", true
}

type prompt struct {
	helpString, prompt, defaultAnswer, currAnswer string
	field                                         *string
	validationFn                                  func(string) (string, bool)
}

// generateConfig asks the user for the fields that weren't set on the
// command line. The current config at `path`, if any, is offered as an
// alternative to the defaults.
func generateConfig(path string, cliOpts config.Job, deleteOverride *bool) (config.Job, error) {
	currConfig, err := parseJob(path)
	if err != nil {
		currConfig = config.Job{}
		log.WithError(err).Debug("Failed to read current config")
	}

	cfg := cliOpts
	if len(cfg.Exclude) == 0 {
		cfg.Exclude = currConfig.Exclude
	}

	cfg.DeleteExistingTags = currConfig.DeleteExistingTags
	if deleteOverride != nil {
		cfg.DeleteExistingTags = *deleteOverride
	}

	var prompts []prompt
	if cliOpts.Tags == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the path to the tag export.\n" +
				"Relative paths are evaluated relative to the job config.",
			prompt:        "Path to tag export",
			defaultAnswer: guessFile(defaultTagsFile),
			currAnswer:    currConfig.Tags,
			field:         &cfg.Tags,
		})
	}

	if cliOpts.Model == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the path to the model snapshot.\n" +
				"It's created if it doesn't exist yet.",
			prompt:        "Path to model snapshot",
			defaultAnswer: defaultModelFile,
			currAnswer:    currConfig.Model,
			field:         &cfg.Model,
		})
	}

	if cliOpts.StartingNodeToFetch == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the tag node to mirror.\n" +
				"Its contents are generated directly into the target folder.",
			prompt:        "Starting node",
			defaultAnswer: "/",
			currAnswer:    currConfig.StartingNodeToFetch,
			field:         &cfg.StartingNodeToFetch,
			validationFn:  nodePathValidationFn,
		})
	}

	if cliOpts.TargetFolder == "" {
		prompts = append(prompts, prompt{
			helpString: "Enter the model folder to generate the nodes into.\n" +
				"The folder must already exist in the model.",
			prompt:        "Target folder",
			defaultAnswer: "/",
			currAnswer:    currConfig.TargetFolder,
			field:         &cfg.TargetFolder,
			validationFn:  nodePathValidationFn,
		})
	}

	reader := bufio.NewReader(stdin)
	for _, prompt := range prompts {
		var resp string
		for {
			resp, err = promptUser(reader, prompt.helpString, prompt.prompt,
				prompt.defaultAnswer, prompt.currAnswer)
			if err != nil {
				return config.Job{}, errors.WithContext(err, "read response")
			}

			if prompt.validationFn == nil {
				break
			}

			validationErr, ok := prompt.validationFn(resp)
			if ok {
				break
			}

			fmt.Fprintln(stdout, validationErr)
		}

		*prompt.field = resp
	}

	return cfg, nil
}

// guessFile returns the path to `name` in the current directory if it
// exists.
func guessFile(name string) string {
	currDir, err := getWorkingDirectory()
	if err != nil {
		log.WithError(err).Debug("Failed to get current directory")
		return ""
	}

	path := filepath.Join(currDir, name)
	if _, err := stat(path); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).WithField("path", path).Debug("Failed to stat")
		}
		return ""
	}
	return path
}

// promptOptions returns the choices offered to the user. The last choice is
// always to enter the answer manually.
func promptOptions(defaultAnswer, currAnswer string) []string {
	var options []string
	if defaultAnswer != "" {
		options = append(options, defaultAnswer)
	}
	if currAnswer != "" && currAnswer != defaultAnswer {
		options = append(options, currAnswer)
	}
	return append(options, "(Enter manually)")
}

// promptUser reads the answer to a single prompt from `reader`.
func promptUser(reader *bufio.Reader, helpString, prompt, defaultAnswer,
	currAnswer string) (string, error) {

	// Separate the fields with a blank line.
	defer fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, helpString+"\n"+prompt+":")

	options := promptOptions(defaultAnswer, currAnswer)
	if len(options) > 1 {
		choice, err := promptChoice(reader, options)
		if err != nil {
			return "", err
		}

		if choice != len(options)-1 {
			return options[choice], nil
		}
	}

	fmt.Fprint(stdout, "Please enter manually: ")
	resp, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(resp, "\n"), nil
}

// promptChoice prints the numbered options, and returns the index of the
// one the user picked. An empty response picks the first option.
func promptChoice(reader *bufio.Reader, options []string) (int, error) {
	fmt.Fprintln(stdout)
	for i, option := range options {
		if i == 0 {
			option += " (recommended)"
		}
		fmt.Fprintf(stdout, "\t%d. %s\n", i+1, option)
	}
	fmt.Fprintln(stdout)

	for {
		fmt.Fprintf(stdout, "Please choose one [1-%d]: ", len(options))
		resp, err := reader.ReadString('\n')
		if err != nil {
			return 0, err
		}

		resp = strings.TrimRight(resp, "\n")
		if resp == "" {
			return 0, nil
		}

		choice, err := strconv.Atoi(resp)
		if err == nil && choice >= 1 && choice <= len(options) {
			return choice - 1, nil
		}
	}
}
