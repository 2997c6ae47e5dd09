// Package prompt asks the user for choices, confirmations and missing
// settings on the terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/wochenfazit/internal/aggregate"
	"github.com/runnerr0/wochenfazit/internal/config"
	"github.com/runnerr0/wochenfazit/internal/storage"
)

var (
	// ErrNoInput is returned when input ends before an answer was given.
	ErrNoInput = errors.New("aborted: no input received")
	// ErrMismatch is returned when a typed confirmation does not match.
	ErrMismatch = errors.New("aborted: confirmation text did not match")
)

// Prompter reads answers line by line.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// New reads from in and writes questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

func (p *Prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		return "", ErrNoInput
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Text asks a free-text question.
func (p *Prompter) Text(question string) (string, error) {
	return p.ask(question)
}

// Choose lists the candidates and asks until a number between 1 and
// len(candidates) is given. It returns the zero-based index.
func (p *Prompter) Choose(entry string, candidates []storage.ContractKeyword) (int, error) {
	fmt.Fprintf(p.out, "Mehrere Vertragsnummern passen zu %q:\n", entry)
	for i, c := range candidates {
		fmt.Fprintf(p.out, "  %d) %s %s %s\n", i+1, c.Keyword, c.Task, c.ContractID)
	}
	question := fmt.Sprintf("Auswahl [1-%d]: ", len(candidates))
	for {
		answer, err := p.ask(question)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(candidates) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Ungültige Auswahl %q.\n", answer)
	}
}

// Confirm asks a yes/no question. An empty answer returns def.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := " [j/N]: "
	if def {
		hint = " [J/n]: "
	}
	answer, err := p.ask(question + hint)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "j", "ja", "y", "yes":
		return true, nil
	}
	return false, nil
}

// ConfirmText asks the user to type word exactly.
func (p *Prompter) ConfirmText(question, word string) error {
	answer, err := p.ask(fmt.Sprintf("%s\nType %q to confirm: ", question, word))
	if err != nil {
		return err
	}
	if answer != word {
		return ErrMismatch
	}
	return nil
}

// Correct offers to rewrite a description without contract. An empty
// answer keeps the description.
func (p *Prompter) Correct(c aggregate.Correction) (string, error) {
	fmt.Fprintf(p.out, "Eintrag ohne Vertragsnummer in %s: %q\n", c.Category, c.Description)
	answer, err := p.ask("Neue Beschreibung (leer = unverändert): ")
	if err != nil {
		return "", err
	}
	if answer == "" {
		return c.Description, nil
	}
	return answer, nil
}

// Hours asks until a positive number is given. A decimal comma is accepted.
func (p *Prompter) Hours(question string) (float64, error) {
	for {
		answer, err := p.ask(question)
		if err != nil {
			return 0, err
		}
		h, err := strconv.ParseFloat(strings.Replace(answer, ",", ".", 1), 64)
		if err == nil && h > 0 {
			return h, nil
		}
		fmt.Fprintf(p.out, "Ungültige Stundenzahl %q.\n", answer)
	}
}

// Date asks until a YYYY-MM-DD date is given.
func (p *Prompter) Date(question string) (time.Time, error) {
	for {
		answer, err := p.ask(question)
		if err != nil {
			return time.Time{}, err
		}
		if d, err := time.Parse(storage.DateLayout, answer); err == nil {
			return d, nil
		}
		fmt.Fprintf(p.out, "Ungültiges Datum %q, erwartet JJJJ-MM-TT.\n", answer)
	}
}

// FillConfig asks for the settings a report needs and reports whether
// cfg changed.
func (p *Prompter) FillConfig(cfg *config.Config) (bool, error) {
	changed := false
	if cfg.General.WeekHours <= 0 {
		fmt.Fprintln(p.out, "Es fehlt noch der Eintrag zu den Arbeitsstunden pro Kalenderwoche.")
		h, err := p.Hours("Vertragliche Wochenstunden: ")
		if err != nil {
			return changed, err
		}
		cfg.General.WeekHours = h
		changed = true
	}
	if cfg.Onboarding.FirstDay == "" {
		fmt.Fprintln(p.out, "Es fehlt noch der Eintrag zum 1. Arbeitstag.")
		d, err := p.Date("Erster Arbeitstag (JJJJ-MM-TT): ")
		if err != nil {
			return changed, err
		}
		cfg.Onboarding.FirstDay = storage.FormatDate(d)
		changed = true
	}
	return changed, nil
}
