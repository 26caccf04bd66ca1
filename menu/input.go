package menu

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ergochat/readline"
	"github.com/etnz/cryptofolio"
)

// ErrCancelled is returned when the user cancels a prompt.
var ErrCancelled = errors.New("cancelled")

// errInvalid aborts an action on an input that cannot be parsed.
var errInvalid = errors.New("invalid input")

// LineReader reads one line of user input.
type LineReader interface {
	// ReadLine shows prompt and returns the line without its newline.
	// It returns ErrCancelled on Ctrl+C and io.EOF on Ctrl+D.
	ReadLine(prompt string) (string, error)
	Close() error
}

// Terminal is a LineReader on the controlling terminal, with line editing and history.
type Terminal struct {
	rl *readline.Instance
}

// NewTerminal opens the terminal.
func NewTerminal() (*Terminal, error) {
	rl, err := readline.New("> ")
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	return &Terminal{rl: rl}, nil
}

func (t *Terminal) ReadLine(prompt string) (string, error) {
	t.rl.SetPrompt(prompt)
	line, err := t.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrCancelled
	}
	return line, err
}

func (t *Terminal) Close() error { return t.rl.Close() }

var cancelWords = map[string]bool{
	"q":       true,
	"quit":    true,
	"cancel":  true,
	"annuler": true,
	"exit":    true,
}

// IsCancel reports whether s asks to cancel.
func IsCancel(s string) bool {
	return cancelWords[strings.ToLower(strings.TrimSpace(s))]
}

// ask reads a trimmed line. Cancel words return ErrCancelled.
func (m *Menu) ask(prompt string) (string, error) {
	line, err := m.in.ReadLine(prompt)
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if IsCancel(line) {
		return "", ErrCancelled
	}
	return line, nil
}

// askDefault reads a line and returns def when it is empty.
func (m *Menu) askDefault(prompt, def string) (string, error) {
	s, err := m.ask(fmt.Sprintf("%s [%s]: ", prompt, def))
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

func (m *Menu) askQuantity(prompt, def string) (cryptofolio.Quantity, error) {
	s, err := m.askValue(prompt, def)
	if err != nil {
		return cryptofolio.Quantity{}, err
	}
	q, err := cryptofolio.ParseQuantity(s)
	if err != nil {
		return q, fmt.Errorf("%w: %v", errInvalid, err)
	}
	return q, nil
}

func (m *Menu) askMoney(prompt, def string) (cryptofolio.Money, error) {
	s, err := m.askValue(prompt, def)
	if err != nil {
		return cryptofolio.Money{}, err
	}
	v, err := cryptofolio.ParseMoney(s, m.t.Currency())
	if err != nil {
		return v, fmt.Errorf("%w: %v", errInvalid, err)
	}
	return v, nil
}

func (m *Menu) askPercent(prompt, def string) (cryptofolio.Percent, error) {
	s, err := m.askValue(prompt, def)
	if err != nil {
		return 0, err
	}
	p, err := cryptofolio.ParsePercent(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errInvalid, err)
	}
	return p, nil
}

func (m *Menu) askID(prompt string) (int64, error) {
	s, err := m.ask(prompt)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an id", errInvalid, s)
	}
	return id, nil
}

func (m *Menu) askInt(prompt string, def int) (int, error) {
	s, err := m.askDefault(prompt, strconv.Itoa(def))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a positive number", errInvalid, s)
	}
	return n, nil
}

func (m *Menu) askConfirm(prompt string) (bool, error) {
	s, err := m.ask(prompt + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(s) {
	case "y", "yes", "o", "oui":
		return true, nil
	}
	return false, nil
}

// askValue asks for a value, showing def when there is one.
func (m *Menu) askValue(prompt, def string) (string, error) {
	if def != "" {
		return m.askDefault(prompt, def)
	}
	return m.ask(prompt + ": ")
}

// pick asks to choose one of options by number or by name.
func (m *Menu) pick(prompt string, options []string) (string, error) {
	for i, o := range options {
		fmt.Fprintf(m.out, "%d. %s\n", i+1, o)
	}
	s, err := m.ask(prompt + ": ")
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], nil
	}
	for _, o := range options {
		if strings.EqualFold(o, s) {
			return o, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not in the list", errInvalid, s)
}

func isEOF(err error) bool { return errors.Is(err, io.EOF) }
