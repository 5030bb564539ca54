package interpret

import (
	"fmt"
	"regexp"

	"github.com/sandevgo/lumibot/internal/core"
)

var colorPattern = regexp.MustCompile(`^\d{1,3}-\d{1,3}-\d{1,3}$`)

var validActions = map[string]struct{}{
	core.ActionOn:    {},
	core.ActionOff:   {},
	core.ActionColor: {},
}

// Validate checks a command against the light-control schema: a non-empty
// "nom", an "action" from the enum, and when present a "color" encoded as
// "R-G-B". An empty command is always valid. Only consulted in strict
// mode; the default behavior leaves commands untouched.
func Validate(cmd core.Command) error {
	if len(cmd) == 0 {
		return nil
	}

	nom, ok := cmd[core.CommandKeyName].(string)
	if !ok || nom == "" {
		return fmt.Errorf("command missing %q", core.CommandKeyName)
	}

	action, ok := cmd[core.CommandKeyAction].(string)
	if !ok {
		return fmt.Errorf("command missing %q", core.CommandKeyAction)
	}
	if _, ok := validActions[action]; !ok {
		return fmt.Errorf("unknown action %q", action)
	}

	if raw, present := cmd[core.CommandKeyColor]; present {
		color, ok := raw.(string)
		if !ok || !colorPattern.MatchString(color) {
			return fmt.Errorf("malformed color %v, want R-G-B", raw)
		}
	} else if action == core.ActionColor {
		return fmt.Errorf("action %q without a color", action)
	}

	return nil
}
