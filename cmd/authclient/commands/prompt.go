package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
)

// MaxDisplayNameLen bounds display names entered at the prompt.
const MaxDisplayNameLen = 32

// ErrNoDisplayName is returned when the prompt was left without a name.
var ErrNoDisplayName = errors.New("no display name given")

// promptDisplayName asks for a display name until a valid one is entered.
func promptDisplayName(in io.Reader, out io.Writer) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "display name> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           io.NopCloser(in),
		Stdout:          out,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return "", ErrNoDisplayName
		}
		name, err := checkDisplayName(line)
		if err != nil {
			fmt.Fprintln(rl.Stderr(), err)
			continue
		}
		return name, nil
	}
}

func checkDisplayName(s string) (string, error) {
	name := strings.TrimSpace(s)
	switch {
	case name == "":
		return "", errors.New("display name must not be empty")
	case utf8.RuneCountInString(name) > MaxDisplayNameLen:
		return "", fmt.Errorf("display name must be at most %d characters", MaxDisplayNameLen)
	case strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f }):
		return "", errors.New("display name must not contain control characters")
	}
	return name, nil
}
