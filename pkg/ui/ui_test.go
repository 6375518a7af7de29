package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBox(t *testing.T) {
	out := Box("Installer preview", "line one\nline two\n")
	assert.Contains(t, out, "Installer preview")
	assert.Contains(t, out, "line one")
	assert.Contains(t, out, "line two")
	assert.Contains(t, out, "╭")
}

func TestKeyValues(t *testing.T) {
	out := KeyValues([][2]string{{"interface", "eth0"}, {"connection", "System eth0"}})
	assert.Contains(t, out, "interface:")
	assert.Contains(t, out, "System eth0")
}

func TestTable(t *testing.T) {
	out := Table([]string{"Step", "Status"}, [][]string{{"Preflight", "ok"}, {"Firewall", "skipped"}})
	assert.Contains(t, out, "Step")
	assert.Contains(t, out, "Preflight")
	assert.Contains(t, out, "skipped")
}

func TestStatus(t *testing.T) {
	assert.Contains(t, Status("ok"), "ok")
	assert.Contains(t, Status("failed"), "failed")
	assert.Equal(t, "unknown", Status("unknown"))
}
