package species

import "fmt"

// ConfigError reports an invalid species count, species index, or matrix
// dimension discovered at a setter boundary. It is raised synchronously and
// aborts the calling operation; nothing is partially applied.
type ConfigError struct {
	Op  string // operation that rejected the input, e.g. "SetSpeciesCount"
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("species: %s: %s", e.Op, e.Msg)
}

func errConfig(op, format string, args ...any) error {
	return &ConfigError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
