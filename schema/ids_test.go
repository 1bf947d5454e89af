package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOscalizeControlID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC-1", "ac-1"},
		{"AC-01", "ac-1"},
		{"ac-2", "ac-2"},
		{"AC-2 (1)", "ac-2.1"},
		{"AC-2(1)", "ac-2.1"},
		{"AC-1.a", "ac-1"},
		{"AC-2(1).b", "ac-2.1"},
		{"3.1.1", "3.1.1"},
		{"3.1", "3.1"},
		{"  SC-13 ", "sc-13"},
		{"custom-99x", "custom-99x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, OscalizeControlID(tt.in))
		})
	}
}

func TestControlToStatementID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC-1", "ac-1_smt"},
		{"AC-01", "ac-1_smt"},
		{"AC-2(1)", "ac-2.1_smt"},
		{"AC-1.a", "ac-1_smt.a"},
		{"AC-2(1).b", "ac-2.1_smt.b"},
		{"3.1.1", "3.1.1_smt"},
		{"weird", "weird_smt"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ControlToStatementID(tt.in))
		})
	}
}

func TestStatementID(t *testing.T) {
	assert.Equal(t, "ac-2_smt.a", StatementID("AC-2", "a"))
	assert.Equal(t, "ac-2_smt", StatementID("AC-2", ""))
	assert.Equal(t, "ac-2.1_smt.b", StatementID("AC-2(1)", "b"))
}

func TestParseQualifiedControlID(t *testing.T) {
	q, err := ParseQualifiedControlID("NIST-800-53:ac-2_smt.a")
	require.NoError(t, err)
	assert.Equal(t, "NIST-800-53", q.Catalog)
	assert.Equal(t, "ac-2_smt.a", q.Control)
	assert.Equal(t, "NIST-800-53:ac-2_smt.a", q.String())
}

func TestParseQualifiedControlID_Malformed(t *testing.T) {
	for _, in := range []string{"ac-2", ":ac-2", "NIST:", "NIST:AC 2", "NIST:ac-2_smtx"} {
		_, err := ParseQualifiedControlID(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestIsWellFormedControlID(t *testing.T) {
	assert.True(t, IsWellFormedControlID("ac-2"))
	assert.True(t, IsWellFormedControlID("ac-2_smt"))
	assert.True(t, IsWellFormedControlID("ac-2_smt.a"))
	assert.True(t, IsWellFormedControlID("3.1.1"))
	assert.True(t, IsWellFormedControlID("AC-2_smt.a"))
	assert.False(t, IsWellFormedControlID(""))
	assert.False(t, IsWellFormedControlID("AC 2"))
	assert.False(t, IsWellFormedControlID("ac-2_smtfoo"))
}
