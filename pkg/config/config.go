package config

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	"github.com/spf13/afero"

	"github.com/sidkik/tagmirror/pkg/errors"
)

// fs is replaced with afero.NewMemMapFs() in the tests.
var fs = afero.NewOsFs()

// parseConfigErrTemplate is shown when a config file isn't valid YAML, or
// doesn't match the config schema. The parser's error doesn't say which
// field is wrong, so it's passed through as is.
const parseConfigErrTemplate = "Could not parse the config at %q.\n" +
	"Check that every field has the right type, and that there are no " +
	"fields that tagmirror doesn't know about.\n\n" +
	"Parser error:\n" +
	"%s"

// versionedConfig is implemented by the config files that readConfig can
// load.
type versionedConfig interface {
	getVersion() string

	// validate checks the fields once the file has been parsed.
	validate() error
}

type incompatibleVersionError struct {
	path, exp, actual string
}

func (err incompatibleVersionError) Error() string {
	return err.FriendlyMessage()
}

func (err incompatibleVersionError) FriendlyMessage() string {
	return fmt.Sprintf("The configuration file %q is incompatible "+
		"with this version of tagmirror.\n"+
		"Expected version %q, but got %q.", err.path, err.exp, err.actual)
}

// readConfig loads the YAML file at `path` into `config`. The version is
// checked before unknown fields are rejected, so configs written for another
// version of tagmirror fail with a version error.
func readConfig(path string, config versionedConfig, expVersion string) error {
	configBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileNotFound{Path: path}
		}
		return errors.WithContext(err, "read file")
	}

	if err := yaml.Unmarshal(configBytes, config); err != nil {
		return errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}

	if version := config.getVersion(); version != expVersion {
		return incompatibleVersionError{path, expVersion, version}
	}

	err = yaml.UnmarshalStrict(configBytes, config, yaml.DisallowUnknownFields)
	if err != nil {
		return errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}
	return config.validate()
}
