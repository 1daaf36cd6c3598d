// Package hook runs the external qiv-command helper for the numbered
// user commands.
package hook

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultCommand is the helper looked up on PATH.
const DefaultCommand = "qiv-command"

// Runner invokes the helper synchronously.
type Runner struct {
	Command string
}

// NewRunner returns a runner for command, or DefaultCommand when empty.
func NewRunner(command string) *Runner {
	if command == "" {
		command = DefaultCommand
	}
	return &Runner{Command: command}
}

// Run calls "<command> n filename", waits for it and returns the first line
// it printed.
func (r *Runner) Run(n int, filename string) (string, error) {
	cmd := exec.Command(r.Command, strconv.Itoa(n), filename)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s %d: %w", r.Command, n, err)
	}

	sc := bufio.NewScanner(&stdout)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	return "", nil
}
