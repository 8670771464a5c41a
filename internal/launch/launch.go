// Package launch edits the launch-argument string that Steam and Battle.net
// pass to the game. The main-menu background is selected with a single
// --lobbyMap=<id> argument; everything else in the string belongs to the
// user and is kept.
package launch

import (
	"errors"
	"fmt"
	"strings"
)

// Flag is the argument that selects the main-menu background.
const Flag = "--lobbyMap"

// ErrInvalidID is returned by [ValidateID] for ids that are not hex map ids.
var ErrInvalidID = errors.New("invalid background id")

// ValidateID checks that id looks like a map id: "0x" followed by 1-16 hex
// digits. An empty id is valid and means "no background".
func ValidateID(id string) error {
	if id == "" {
		return nil
	}

	digits, ok := strings.CutPrefix(id, "0x")
	if !ok {
		digits, ok = strings.CutPrefix(id, "0X")
	}

	if !ok || digits == "" || len(digits) > 16 {
		return fmt.Errorf("%w: %q (want 0x followed by up to 16 hex digits)", ErrInvalidID, id)
	}

	for _, c := range digits {
		if !isHex(c) {
			return fmt.Errorf("%w: %q has non-hex digit %q", ErrInvalidID, id, c)
		}
	}

	return nil
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// MergeArgs returns existing with every background argument removed and,
// when id is not empty, --lobbyMap=<id> appended. A bare --lobbyMap also
// takes the value that follows it. Other arguments keep their order but runs
// of whitespace collapse to a single space. With nothing to remove and no id,
// existing is returned untouched.
//
// hasExisting is false when the launcher had no argument setting at all;
// the result is then just the background argument.
func MergeArgs(existing string, hasExisting bool, id string) string {
	var kept []string

	removed := false

	if hasExisting {
		fields := strings.Fields(existing)

		for i := 0; i < len(fields); i++ {
			if !isBackgroundArg(fields[i]) {
				kept = append(kept, fields[i])
				continue
			}

			removed = true

			if fields[i] == Flag && i+1 < len(fields) && !strings.HasPrefix(fields[i+1], "-") {
				i++
			}
		}
	}

	if id == "" {
		if hasExisting && !removed {
			return existing
		}

		return strings.Join(kept, " ")
	}

	return strings.Join(append(kept, Flag+"="+id), " ")
}

// BackgroundID returns the id of the last --lobbyMap=<id> argument in args.
func BackgroundID(args string) (string, bool) {
	id, found := "", false

	for _, field := range strings.Fields(args) {
		if v, ok := strings.CutPrefix(field, Flag+"="); ok {
			id, found = v, true
		}
	}

	return id, found
}

func isBackgroundArg(field string) bool {
	return field == Flag || strings.HasPrefix(field, Flag+"=")
}
