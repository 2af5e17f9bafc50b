// SPDX-License-Identifier: Apache-2.0

package prompt_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgkit/dbsync/pkg/prompt"
)

func newPrompter(input string) (*prompt.StdPrompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return prompt.NewStdPrompter(strings.NewReader(input), out), out
}

func TestConfirmDrop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{" y \n", true},
		{"n\n", false},
		{"yes\n", false},
		{"\n", false},
		{"anything\n", false},
	}

	for _, tt := range tests {
		p, _ := newPrompter(tt.input)
		got, err := p.ConfirmDrop([]string{"deprecated_flag"})
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, "input %q", tt.input)
	}
}

func TestConfirmDropClosedInput(t *testing.T) {
	t.Parallel()

	p, _ := newPrompter("")
	_, err := p.ConfirmDrop([]string{"users"})
	assert.True(t, errors.Is(err, prompt.ErrClosed))
}

func TestSelectSyncKeyByNumber(t *testing.T) {
	t.Parallel()

	p, out := newPrompter("2\n")
	key, err := p.SelectSyncKey("users", []string{"email", "username"}, []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"username"}, key)
	// The declared PK is offered separately when not among the candidates.
	assert.Contains(t, out.String(), "p. Use the declared primary key: id")
}

func TestSelectSyncKeyPKOption(t *testing.T) {
	t.Parallel()

	p, _ := newPrompter("p\n")
	key, err := p.SelectSyncKey("orders", []string{"ref_code"}, []string{"id", "region"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "region"}, key)
}

func TestSelectSyncKeyAnnotatesPKCandidate(t *testing.T) {
	t.Parallel()

	p, out := newPrompter("1\n")
	key, err := p.SelectSyncKey("users", []string{"id", "email"}, []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, key)
	assert.Contains(t, out.String(), "PRIMARY KEY")
	// No separate PK option when the PK column is already a candidate.
	assert.NotContains(t, out.String(), "p. Use the declared primary key")
}

func TestSelectSyncKeyRepromptsOnInvalidInput(t *testing.T) {
	t.Parallel()

	p, out := newPrompter("0\nx\n99\np\n1\n")
	// 'p' is invalid here: there is no declared primary key.
	key, err := p.SelectSyncKey("logs", []string{"message"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"message"}, key)
	assert.Contains(t, out.String(), "Invalid choice")
}

func TestSelectSyncKeyClosedInput(t *testing.T) {
	t.Parallel()

	p, _ := newPrompter("bogus\n")
	_, err := p.SelectSyncKey("users", []string{"email"}, nil)
	assert.True(t, errors.Is(err, prompt.ErrClosed))
}

func TestResolveNotNullDrop(t *testing.T) {
	t.Parallel()

	p, _ := newPrompter("d\n")
	decision, err := p.ResolveNotNull("orders", "user_id")
	require.NoError(t, err)
	assert.Equal(t, prompt.ActionDropConstraint, decision.Action)
	assert.Empty(t, decision.Value)
}

func TestResolveNotNullSubstitute(t *testing.T) {
	t.Parallel()

	p, _ := newPrompter("v\n0\n")
	decision, err := p.ResolveNotNull("orders", "user_id")
	require.NoError(t, err)
	assert.Equal(t, prompt.ActionSubstituteDefault, decision.Action)
	assert.Equal(t, "0", decision.Value)
}

func TestResolveNotNullRepromptsOnInvalidAction(t *testing.T) {
	t.Parallel()

	p, out := newPrompter("x\nq\nd\n")
	decision, err := p.ResolveNotNull("orders", "user_id")
	require.NoError(t, err)
	assert.Equal(t, prompt.ActionDropConstraint, decision.Action)
	assert.Contains(t, out.String(), "Enter d or v")
}

func TestResolveNotNullClosedBeforeValue(t *testing.T) {
	t.Parallel()

	p, _ := newPrompter("v\n")
	_, err := p.ResolveNotNull("orders", "user_id")
	assert.True(t, errors.Is(err, prompt.ErrClosed))
}
