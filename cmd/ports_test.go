package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintPorts(t *testing.T) {
	var buf bytes.Buffer
	printPorts(&buf, []string{"Keystep"}, []string{"IAC Driver Bus 1", "Digitone"})
	assert.Equal(t, `=== MIDI Input Ports ===
  0: Keystep

=== MIDI Output Ports ===
  0: IAC Driver Bus 1
  1: Digitone
`, buf.String())
}

func TestPrintPortsNoOutputs(t *testing.T) {
	var buf bytes.Buffer
	printPorts(&buf, nil, nil)
	assert.Contains(t, buf.String(), "(none)")
}
