// Package validate checks user-supplied values before they reach the wire.
// It validates:
//   - room names: non-empty, length-bounded, printable
//   - profiles: name constraints plus the known gender values
//   - request names: the known out-of-band resource names
//
// The server enforces its own rules; these checks only stop obviously bad
// input from being sent at all.
package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/AlexGrek/multigamews-client/protocol"
)

const (
	maxNameLength     = 64
	maxAvatarLength   = 256
	maxChatLineLength = 2048
)

// Known out-of-band resource names servable via an init "request" command.
var knownRequests = map[string]bool{
	"avatar_list":   true,
	"avatar_list_9": true,
}

// RoomName validates a room name.
func RoomName(name string) error {
	return checkName("room name", name)
}

// RequestName validates the name of an out-of-band resource request.
func RequestName(name string) error {
	if !knownRequests[name] {
		return fmt.Errorf("unknown request name: %q", name)
	}
	return nil
}

// ChatLine validates an outbound chat line.
func ChatLine(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("chat line is empty")
	}
	if len(text) > maxChatLineLength {
		return fmt.Errorf("chat line too long: %d chars, max %d", len(text), maxChatLineLength)
	}
	return nil
}

// Profile validates a user profile. All problems found are reported, not
// just the first one.
func Profile(info protocol.UserInfo) error {
	var errs []string

	if err := checkName("user name", info.Name); err != nil {
		errs = append(errs, err.Error())
	}
	if info.Gender != 0 && info.Gender != -1 && info.Gender != 1 {
		errs = append(errs, fmt.Sprintf("gender must be -1, 0 or 1, got %d", info.Gender))
	}
	if len(info.Avatar) > maxAvatarLength {
		errs = append(errs, fmt.Sprintf("avatar path too long: %d chars, max %d", len(info.Avatar), maxAvatarLength))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid profile: %s", strings.Join(errs, "; "))
	}
	return nil
}

func checkName(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s is empty", what)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%s too long: %d chars, max %d", what, len(name), maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%s contains control characters", what)
		}
	}
	return nil
}
