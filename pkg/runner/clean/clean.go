package clean

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/lifelog/pkg/app"
	"tableflip.dev/lifelog/pkg/archive"
	"tableflip.dev/lifelog/pkg/lifecycle"
	"tableflip.dev/lifelog/pkg/printers"
	"tableflip.dev/lifelog/pkg/prompt"
)

// Prompter asks the user for the decisions of a clean.
type Prompter interface {
	Choose(label string, items []string) (int, error)
	YesNo(label string) (bool, error)
	Phrase(label, phrase string) (string, error)
}

// Terminal prompts on the controlling terminal.
type Terminal struct{}

func (Terminal) Choose(label string, items []string) (int, error) {
	return prompt.Choose(label, items)
}

func (Terminal) YesNo(label string) (bool, error) {
	return prompt.YesNo(label)
}

func (Terminal) Phrase(label, phrase string) (string, error) {
	return prompt.Phrase(label, phrase)
}

// Clean clears the active logs through the confirmation state machine.
// Archive or Discard preselect a path; otherwise the user is asked.
type Clean struct {
	Archive bool
	Discard bool
	// Yes confirms the archive path without asking.
	Yes bool
	// Confirm is the typed phrase for the discard path.
	Confirm string

	Prompter Prompter
	Service  *app.Service
	Printer  printers.Printer
}

// Result is what the clean did.
type Result struct {
	Outcome  string        `json:"outcome"`
	Archived *archive.Item `json:"archived,omitempty"`
}

const (
	choiceArchive = iota
	choiceDiscard
	choiceCancel
)

func (n *Clean) Do(ctx context.Context) error {
	if n.Prompter == nil {
		n.Prompter = Terminal{}
	}

	out, err := n.Service.RequestClean()
	if err != nil {
		return err
	}
	if out == lifecycle.NothingToClean {
		return n.report(Result{Outcome: out.String()}, "nothing to clean")
	}
	defer func() {
		if n.Service.CleanState() != lifecycle.Idle {
			n.Service.CancelClean()
		}
	}()

	choice, err := n.choose()
	if err != nil {
		return err
	}
	switch choice {
	case choiceArchive:
		return n.archiveThenClean()
	case choiceDiscard:
		return n.cleanWithoutArchive()
	default:
		n.Service.CancelClean()
		return n.report(Result{Outcome: "cancelled"}, "cancelled, nothing changed")
	}
}

func (n *Clean) choose() (int, error) {
	switch {
	case n.Archive:
		return choiceArchive, nil
	case n.Discard:
		return choiceDiscard, nil
	}
	count := n.Service.Logs().Count()
	i, err := n.Prompter.Choose(fmt.Sprintf("Clean %d entries?", count), []string{
		"Archive, then clean",
		"Clean without archive",
		"Cancel",
	})
	if errors.Is(err, prompt.ErrNotInteractive) {
		return 0, errors.New("clean: choose --archive or --discard when not on a terminal")
	}
	return i, err
}

func (n *Clean) archiveThenClean() error {
	if err := n.Service.ChooseArchiveThenClean(); err != nil {
		return err
	}
	if !n.Yes {
		ok, err := n.Prompter.YesNo("Archive the active logs and clear them")
		if errors.Is(err, prompt.ErrNotInteractive) {
			return errors.New("clean: pass --yes to confirm when not on a terminal")
		}
		if err != nil {
			return err
		}
		if !ok {
			n.Service.CancelClean()
			return n.report(Result{Outcome: "cancelled"}, "cancelled, nothing changed")
		}
	}
	it, err := n.Service.ConfirmArchiveThenClean()
	if err != nil {
		return err
	}
	cats, entries := it.Summary()
	return n.report(Result{Outcome: "archived", Archived: &it},
		fmt.Sprintf("archived %d entries in %d categories as %s and cleared the logs", entries, cats, it.ID))
}

func (n *Clean) cleanWithoutArchive() error {
	if err := n.Service.ChooseCleanWithoutArchive(); err != nil {
		return err
	}
	phrase := n.Confirm
	if phrase == "" {
		warn := color.New(color.FgRed, color.Bold).Sprint("This deletes the active logs without an archive")
		typed, err := n.Prompter.Phrase(warn, lifecycle.DiscardPhrase)
		if errors.Is(err, prompt.ErrNotInteractive) {
			return fmt.Errorf("clean: pass --confirm %s when not on a terminal", lifecycle.DiscardPhrase)
		}
		if err != nil {
			return err
		}
		phrase = typed
	}
	if err := n.Service.ConfirmCleanWithoutArchive(phrase); err != nil {
		return err
	}
	return n.report(Result{Outcome: "discarded"}, "cleared the logs without an archive")
}

func (n *Clean) report(res Result, msg string) error {
	return n.Printer.Print(res, func(pp *printers.PrettyPrint) {
		_, _ = fmt.Fprintln(pp.Writer(), msg)
	})
}
