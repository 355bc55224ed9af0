package config

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/sidkik/tagmirror/pkg/errors"
)

const (
	// DefaultJobConfigPath is where the job config is looked for when no
	// path is given on the command line.
	DefaultJobConfigPath = "tagmirror.yaml"

	// InitialJobConfigVersion is the first version of the job config.
	// Config files that do not specify a version will default to this
	// version.
	InitialJobConfigVersion = "v1alpha1"

	// SupportedJobConfigVersion is the supported version of the job config
	// of the current tagmirror binary.
	SupportedJobConfigVersion = "v1alpha1"
)

// Job describes a single tag-to-model generation run.
type Job struct {
	Version string `json:"version,omitempty"`

	// Tags is the path to the tag export file.
	Tags string `json:"tags"`

	// Model is the path to the model snapshot. It's created if it doesn't
	// exist yet.
	Model string `json:"model"`

	// StartingNodeToFetch is the path of the tag node whose contents are
	// mirrored into the model.
	StartingNodeToFetch string `json:"startingNodeToFetch"`

	// TargetFolder is the path of the model folder that the mirrored nodes
	// are created in. It must already exist.
	TargetFolder string `json:"targetFolder"`

	// DeleteExistingTags controls whether the contents of folders that
	// already exist in the model are deleted before they're regenerated.
	DeleteExistingTags bool `json:"deleteExistingTags"`

	// Exclude lists glob patterns for tags that shouldn't be mirrored. The
	// patterns are matched against tag paths without the leading slash, and
	// support `**`.
	Exclude []string `json:"exclude,omitempty"`

	// Only populated and consumed by tagmirror. Never set by user.
	path string
}

// GetPath returns the filepath that the job was parsed from.
func (c Job) GetPath() string {
	return c.path
}

func (c Job) getVersion() string {
	return c.Version
}

// homedirExpand will be overridden in mock tests
var homedirExpand = homedir.Expand

func (c Job) validate() error {
	required := []struct {
		field, value string
	}{
		{"tags", c.Tags},
		{"model", c.Model},
		{"startingNodeToFetch", c.StartingNodeToFetch},
		{"targetFolder", c.TargetFolder},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.MissingFieldError{Field: r.field}
		}
	}

	for _, pattern := range c.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.NewFriendlyError("Invalid exclude pattern %q.", pattern)
		}
	}
	return nil
}

// ParseJob parses the job config at `path`. The Tags and Model paths are
// made absolute, relative to the directory containing the config.
func ParseJob(path string) (Job, error) {
	config := Job{
		path:    path,
		Version: InitialJobConfigVersion,
	}
	if err := readConfig(path, &config, SupportedJobConfigVersion); err != nil {
		return Job{}, errors.WithContext(err, "parse")
	}

	var err error
	config.Tags, err = resolvePath(path, config.Tags)
	if err != nil {
		return Job{}, errors.WithContext(err, "expand tags path")
	}

	config.Model, err = resolvePath(path, config.Model)
	if err != nil {
		return Job{}, errors.WithContext(err, "expand model path")
	}
	return config, nil
}

// WriteJob writes `cfg` to `path`. The paths in `cfg` are written as is.
func WriteJob(path string, cfg Job) error {
	cfg.Version = SupportedJobConfigVersion
	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// resolvePath expands ~'s in `path`, and evaluates relative paths relative to
// the config path.
func resolvePath(configPath, path string) (string, error) {
	expanded, err := homedirExpand(path)
	if err != nil {
		return "", err
	}

	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(filepath.Dir(configPath), expanded)
	}
	return filepath.Clean(expanded), nil
}
