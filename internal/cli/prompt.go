package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// confirm asks a yes/no question. On an interactive terminal it uses a
// line editor; otherwise it reads one line from in. Only "y" and "yes"
// (any case) confirm.
func confirm(o *IO, in io.Reader, question string) (bool, error) {
	prompt := question + " (yes/no): "

	if f, ok := in.(*os.File); ok && f == os.Stdin && liner.TerminalSupported() {
		return confirmTerminal(prompt)
	}

	if in == nil {
		return false, nil
	}

	o.Printf("%s", prompt)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}

	o.Println()

	return isYes(line), nil
}

func confirmTerminal(prompt string) (bool, error) {
	state := liner.NewLiner()
	defer state.Close()

	state.SetCtrlCAborts(true)

	line, err := state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return false, nil
		}

		return false, fmt.Errorf("reading answer: %w", err)
	}

	return isYes(line), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
