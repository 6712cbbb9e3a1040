package hooks

import (
	"fmt"

	"github.com/glorpus-work/digipathos/pkg/errors"
)

// ErrHookTypeEmpty is returned when a hooks type is empty.
var ErrHookTypeEmpty = fmt.Errorf("hooks type cannot be empty")

// ErrUnsupportedHookType is returned when a hook of an unknown type is registered.
func ErrUnsupportedHookType(hookType HookType) error {
	return errors.Wrapf(errors.ErrHookLoad, "unsupported hook type: %s", hookType)
}
