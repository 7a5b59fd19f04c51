package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// SendCommand is the parsed form of a user's transfer instruction.
type SendCommand struct {
	Amount   string
	Token    string
	Receiver string
}

var sendPattern = regexp.MustCompile(`^(?i)(?:SEND\s+)?(\d+\.?\d*)\s+([A-Za-z0-9]+)\s+TO\s+(\S+)$`)

// ParseSendCommand parses a natural language transfer command
// Examples:
//   - "send 1.5 ETH to 0xAbc..."
//   - "100 MTK to 0xAbc..."
func ParseSendCommand(command string) (*SendCommand, error) {
	command = strings.TrimSpace(command)

	matches := sendPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid send command format. Expected: 'send <amount> <token> to <address>' (e.g., 'send 1.5 ETH to 0x123...')")
	}

	return &SendCommand{
		Amount:   matches[1],
		Token:    strings.ToUpper(matches[2]),
		Receiver: matches[3],
	}, nil
}

// ValidateSendCommand validates that a parsed command has all required fields
func ValidateSendCommand(cmd *SendCommand) error {
	if cmd.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if cmd.Token == "" {
		return fmt.Errorf("token is required")
	}
	if cmd.Receiver == "" {
		return fmt.Errorf("receiver address is required")
	}
	return nil
}

// IsNativeToken reports whether the symbol refers to the chain's native
// currency rather than an ERC-20 contract.
func IsNativeToken(symbol string) bool {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	return symbol == "ETH" || symbol == "SEP"
}
