package renderer

import "fmt"

// StateError reports an unrenderable species visual. The pipeline logs it
// and skips the species for the frame instead of failing the frame.
type StateError struct {
	Layer   string
	Species int
	Msg     string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("render %s layer: species %d: %s", e.Layer, e.Species, e.Msg)
}
