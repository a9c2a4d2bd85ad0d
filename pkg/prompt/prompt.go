// Package prompt asks the terminal user for confirmations.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
)

// ErrNotInteractive is returned when stdin is not a terminal.
var ErrNotInteractive = errors.New("prompt: stdin is not a terminal")

// Interactive reports whether prompts can be shown.
func Interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var textTemplates = &promptui.PromptTemplates{
	Prompt:  "{{ . }} : ",
	Valid:   "{{ . | green }} : ",
	Invalid: "{{ . | red }} : ",
	Success: "{{ . | bold }} : ",
}

// Choose shows items and returns the picked index.
func Choose(label string, items []string) (int, error) {
	if !Interactive() {
		return -1, ErrNotInteractive
	}
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | bold }}",
	}
	sel := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		Size:      len(items),
	}
	i, _, err := sel.Run()
	if err != nil {
		return -1, err
	}
	return i, nil
}

// YesNo asks a yes/no question. An empty answer is no.
func YesNo(label string) (bool, error) {
	if !Interactive() {
		return false, ErrNotInteractive
	}
	p := promptui.Prompt{
		Label:     label + " [y/N]",
		Templates: textTemplates,
		Validate: func(input string) error {
			if input == "" {
				return nil
			}
			_, err := ParseBool(input)
			return err
		},
	}
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	if result == "" {
		return false, nil
	}
	return ParseBool(result)
}

// Phrase asks the user to type phrase back and returns what was typed.
func Phrase(label, phrase string) (string, error) {
	if !Interactive() {
		return "", ErrNotInteractive
	}
	p := promptui.Prompt{
		Label:     fmt.Sprintf("%s, type %q to confirm", label, phrase),
		Templates: textTemplates,
	}
	return p.Run()
}

// ParseBool is strconv.ParseBool with the addition of Yes/No parsing.
func ParseBool(str string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "1", "t", "true", "y", "yes":
		return true, nil
	case "0", "f", "false", "n", "no":
		return false, nil
	}
	return false, &strconv.NumError{Func: "ParseBool", Num: str, Err: strconv.ErrSyntax}
}
