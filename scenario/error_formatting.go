package scenario

import (
	"errors"
	"strings"
)

// reformatError turns the multi-line failure report of a testify assertion into just its
// messages. The "Error Trace" part points into the runner rather than the scenario file, so it
// is dropped; the step number in the message is what locates the failure.
func reformatError(err error) error {
	messages, ok := parseTestifyFailureMessage(err.Error())
	if !ok {
		return err
	}
	return errors.New(strings.Join(messages, "\n"))
}

func parseTestifyFailureMessage(msg string) ([]string, bool) {
	if !strings.Contains(msg, "Error Trace:") {
		return nil, false
	}
	var messages []string
	inMessages := false
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "Error:"):
			inMessages = true
			line = strings.TrimSpace(strings.TrimPrefix(line, "Error:"))
		case strings.HasPrefix(line, "Test:"):
			continue
		case strings.HasPrefix(line, "Messages:"):
			inMessages = true
			line = strings.TrimSpace(strings.TrimPrefix(line, "Messages:"))
		}
		if inMessages && line != "" {
			messages = append(messages, line)
		}
	}
	return messages, len(messages) > 0
}
