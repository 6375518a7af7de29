package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
#Doc: {
	name?:  string
	ports?: [...string]
	mode?:  "a" | "b"
	count?: int & >=0
}
`

func TestValidateYAMLWithCUE(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{name: "empty document", yaml: "  \n", wantErr: false},
		{name: "valid", yaml: "name: x\nports: [\"443/tcp\"]\nmode: a\n", wantErr: false},
		{name: "unknown key", yaml: "nmae: x\n", wantErr: true},
		{name: "wrong enum", yaml: "mode: c\n", wantErr: true},
		{name: "negative count", yaml: "count: -1\n", wantErr: true},
		{name: "wrong type", yaml: "ports: 443\n", wantErr: true},
		{name: "malformed yaml", yaml: "name: [unterminated\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateYAMLWithCUE(testSchema, "#Doc", "doc.yaml", []byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

type sample struct {
	Mode  string   `validate:"oneof=x y"`
	Dir   string   `validate:"required"`
	Ports []string `validate:"dive,portspec"`
}

func TestStruct(t *testing.T) {
	t.Parallel()
	require.NoError(t, Struct(sample{Mode: "x", Dir: "/etc", Ports: []string{"443", "8000-8010/udp", "22/tcp"}}))

	err := Struct(sample{Mode: "z", Ports: []string{"https"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of [x y]")
	assert.Contains(t, err.Error(), "is required")
	assert.Contains(t, err.Error(), `"https" is not a port spec`)
}
