// ABOUTME: Startup errors for a bad config file or an unusable XDG directory
// ABOUTME: Both carry the path involved so the explanation can point at it

package errors

import "fmt"

// ConfigError wraps a failure to load or validate the config file.
type ConfigError struct {
	Path string
	Err  error
}

func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{Path: path, Err: err}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Explain() *Explanation {
	return &Explanation{
		ErrorType:   "config_invalid",
		Summary:     "The config file could not be used",
		Explanation: fmt.Sprintf("cyberai-tui read %s but could not load it.", e.Path),
		PossibleCauses: []string{
			"The file is not valid YAML",
			"relay.url is not a ws:// or wss:// URL",
		},
		SuggestedActions: []string{
			fmt.Sprintf("Fix or delete %s; a default one is written on the next start", e.Path),
			"Override the gateway address with --url",
		},
		Recoverable: true,
		Details:     e.Err.Error(),
	}
}

// XDGPathError is returned when a state or data directory cannot be created.
type XDGPathError struct {
	Variable      string
	AttemptedPath string
	UnderlyingErr error
}

func NewXDGPathError(variable, path string, err error) *XDGPathError {
	return &XDGPathError{
		Variable:      variable,
		AttemptedPath: path,
		UnderlyingErr: err,
	}
}

func (e *XDGPathError) Error() string {
	return fmt.Sprintf("cannot create %s directory at %s: %v", e.Variable, e.AttemptedPath, e.UnderlyingErr)
}

func (e *XDGPathError) Unwrap() error {
	return e.UnderlyingErr
}

func (e *XDGPathError) Explain() *Explanation {
	return &Explanation{
		ErrorType:   "xdg_path_error",
		Summary:     e.Error(),
		Explanation: "Could not create a directory cyberai-tui needs.",
		PossibleCauses: []string{
			"Insufficient permissions in parent directory",
			"Disk is full",
			"Path already exists as a file (not directory)",
		},
		SuggestedActions: []string{
			fmt.Sprintf("Check permissions: ls -ld %s", e.AttemptedPath),
			fmt.Sprintf("Point %s somewhere writable", e.Variable),
		},
		Recoverable: true,
		Details:     e.UnderlyingErr.Error(),
	}
}
