package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	input  = bufio.NewReader(os.Stdin)
	output io.Writer = os.Stdout
)

func readLine() string {
	line, _ := input.ReadString('\n')
	return strings.TrimSpace(line)
}

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	fmt.Fprintf(output, "%s [y/N]: ", StyleWarning.Render(prompt))
	return yes(readLine())
}

// ConfirmDanger is like Confirm but styled with the error color (for destructive actions).
func ConfirmDanger(prompt string) bool {
	fmt.Fprintf(output, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return yes(readLine())
}

// PromptInput asks for one line of text. An empty answer returns def.
func PromptInput(prompt, def string) string {
	if def != "" {
		fmt.Fprintf(output, "%s %s: ", StyleValue.Render(prompt), StyleMeta.Render("["+def+"]"))
	} else {
		fmt.Fprintf(output, "%s: ", StyleValue.Render(prompt))
	}
	if line := readLine(); line != "" {
		return line
	}
	return def
}

func yes(s string) bool {
	s = strings.ToLower(s)
	return s == "y" || s == "yes"
}
