package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSendCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  SendCommand
	}{
		{
			name:  "full form",
			input: "send 1.5 ETH to 0x2222222222222222222222222222222222222222",
			want:  SendCommand{Amount: "1.5", Token: "ETH", Receiver: "0x2222222222222222222222222222222222222222"},
		},
		{
			name:  "without send keyword",
			input: "100 MTK to 0xabc",
			want:  SendCommand{Amount: "100", Token: "MTK", Receiver: "0xabc"},
		},
		{
			name:  "case insensitive",
			input: "SEND 2 link TO 0xabc",
			want:  SendCommand{Amount: "2", Token: "LINK", Receiver: "0xabc"},
		},
		{
			name:  "surrounding whitespace",
			input: "  send 0.5 ETH to 0xabc  ",
			want:  SendCommand{Amount: "0.5", Token: "ETH", Receiver: "0xabc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ParseSendCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *cmd)
		})
	}
}

func TestParseSendCommandRejectsMalformed(t *testing.T) {
	inputs := []string{
		"",
		"send ETH to 0xabc",
		"send 1.5 ETH",
		"transfer 1.5 ETH to 0xabc",
		"send -1 ETH to 0xabc",
	}

	for _, input := range inputs {
		_, err := ParseSendCommand(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestIsNativeToken(t *testing.T) {
	assert.True(t, IsNativeToken("ETH"))
	assert.True(t, IsNativeToken("eth"))
	assert.True(t, IsNativeToken(" SEP "))
	assert.False(t, IsNativeToken("MTK"))
	assert.False(t, IsNativeToken(""))
}
