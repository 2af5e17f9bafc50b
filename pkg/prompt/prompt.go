// SPDX-License-Identifier: Apache-2.0

package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

// ErrClosed is returned when the input stream ends while a prompt is
// waiting for an answer. It terminates the run; changes already committed
// remain in place.
var ErrClosed = errors.New("prompt: input stream closed")

// NotNullAction is the operator's chosen resolution for a NOT NULL
// conflict.
type NotNullAction string

const (
	// Drop the NOT NULL constraint from the conflicting column
	ActionDropConstraint NotNullAction = "drop"

	// Substitute a default value for every NULL in the conflicting column
	ActionSubstituteDefault NotNullAction = "default"
)

// NotNullDecision carries the chosen action and, for
// ActionSubstituteDefault, the substitute value.
type NotNullDecision struct {
	Action NotNullAction
	Value  string
}

// Prompter is the interaction port for operator decisions. Implementations
// block until the operator answers.
type Prompter interface {
	// ConfirmDrop asks whether the named objects may be dropped from the
	// target. Only a literal "y" (case-insensitive) confirms.
	ConfirmDrop(objects []string) (bool, error)

	// SelectSyncKey asks the operator to choose a sync key for a table
	// from the unique single-column candidates, or the target's declared
	// primary key where one exists.
	SelectSyncKey(table string, candidates []string, primaryKey []string) ([]string, error)

	// ResolveNotNull asks how to resolve a NOT NULL conflict on the given
	// column.
	ResolveNotNull(table, column string) (NotNullDecision, error)
}

// StdPrompter reads operator answers line by line from an input stream and
// writes pterm-styled prompts to an output stream.
type StdPrompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewStdPrompter(in io.Reader, out io.Writer) *StdPrompter {
	return &StdPrompter{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Default returns a prompter attached to the process stdin/stdout.
func Default() *StdPrompter {
	return NewStdPrompter(os.Stdin, os.Stdout)
}

func (p *StdPrompter) ConfirmDrop(objects []string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ",
		pterm.FgYellow.Sprintf("Drop %s from the target database?", strings.Join(objects, ", ")))

	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	return strings.EqualFold(line, "y"), nil
}

func (p *StdPrompter) SelectSyncKey(table string, candidates []string, primaryKey []string) ([]string, error) {
	fmt.Fprintf(p.out, "\n%s\n",
		pterm.Bold.Sprintf("Table %q: choose a sync key column", table))
	for i, col := range candidates {
		suffix := ""
		if len(primaryKey) == 1 && primaryKey[0] == col {
			suffix = pterm.FgCyan.Sprint(" (PRIMARY KEY)")
		}
		fmt.Fprintf(p.out, "%d. %s%s\n", i+1, col, suffix)
	}
	offerPK := len(primaryKey) > 0 && !slices.Contains(candidates, primaryKey[0])
	if offerPK {
		fmt.Fprintf(p.out, "p. Use the declared primary key: %s\n", strings.Join(primaryKey, ", "))
	}

	for {
		fmt.Fprint(p.out, "Your choice (number or 'p'): ")
		line, err := p.readLine()
		if err != nil {
			return nil, err
		}
		choice := strings.ToLower(strings.TrimSpace(line))
		if choice == "p" && len(primaryKey) > 0 {
			return primaryKey, nil
		}
		if idx, err := strconv.Atoi(choice); err == nil && idx >= 1 && idx <= len(candidates) {
			return []string{candidates[idx-1]}, nil
		}
		fmt.Fprintln(p.out, pterm.FgRed.Sprint("Invalid choice. Enter a number or 'p'."))
	}
}

func (p *StdPrompter) ResolveNotNull(table, column string) (NotNullDecision, error) {
	fmt.Fprintf(p.out, "%s\n",
		pterm.FgYellow.Sprintf("Column %q in table %q cannot be NULL.", column, table))

	var choice string
	for {
		fmt.Fprint(p.out, "Choose an action: [d] drop the NOT NULL constraint, [v] substitute a default value: ")
		line, err := p.readLine()
		if err != nil {
			return NotNullDecision{}, err
		}
		choice = strings.ToLower(strings.TrimSpace(line))
		if choice == "d" || choice == "v" {
			break
		}
		fmt.Fprintln(p.out, pterm.FgRed.Sprint("Enter d or v."))
	}

	if choice == "d" {
		return NotNullDecision{Action: ActionDropConstraint}, nil
	}

	fmt.Fprintf(p.out, "Default value for %s.%s: ", table, column)
	value, err := p.readLine()
	if err != nil {
		return NotNullDecision{}, err
	}
	return NotNullDecision{Action: ActionSubstituteDefault, Value: value}, nil
}

func (p *StdPrompter) readLine() (string, error) {
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("reading prompt answer: %w", err)
		}
		return "", ErrClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}
