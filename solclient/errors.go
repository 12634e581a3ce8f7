package solclient

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"commonerchain/program"
)

// ProgramErrors codes from the on-chain program
var ProgramErrors = map[int]string{
	6000: "NotTokenOwner - You do not own this NFT",
	6001: "InvalidTokenAmount - Token account must hold exactly one token",
	6002: "DateInPast - Scheduled date must be a future UTC day",
	6003: "InvalidScheduledDate - Date must fall on a midnight UTC boundary",
	6004: "SlotAlreadyExists - A slot already exists for this mint and date",
	6005: "SlotNotEscrowed - NFT has not been escrowed for this slot",
	6006: "SlotAlreadyConsumed - Slot was already activated into an auction",
	6007: "SlotNotDue - Scheduled date has not arrived yet",
	6008: "BidTooLow - Bid is below the required minimum",
	6009: "AuctionEnded - Auction countdown has expired",
	6010: "AuctionSettled - Auction is already settled",
	6011: "AuctionNotEnded - Auction is still running",
	6012: "AlreadySettled - Settlement already executed",
	6013: "Unauthorized - Caller is not permitted to do this",
	6014: "MathOverflow - Arithmetic overflow",
	6015: "VaultBalanceMismatch - Bid vault does not match the recorded bid",
	6016: "ConfigAlreadyInitialized - Program config already initialized",
	6017: "InvalidReservePrice - Reserve price must be positive",
	6018: "SlotStillActive - Slot has not been consumed; cancel it instead",
}

// ExtractErrorCode tries multiple methods to extract custom program error code
func ExtractErrorCode(err error) *int {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	// Method 1: Parse the JSON structure
	// Format: "err": {"InstructionError": [0, {"Custom": 6009}]}
	type InstructionErrorData struct {
		InstructionError []interface{} `json:"InstructionError"`
	}
	type ErrorWrapper struct {
		Err InstructionErrorData `json:"err"`
	}

	if jsonStart := strings.Index(errStr, `"err":`); jsonStart != -1 {
		jsonStr := errStr[jsonStart-1:]
		braceCount := 0
		endPos := -1

		for i, ch := range jsonStr {
			if ch == '{' {
				braceCount++
			} else if ch == '}' {
				braceCount--
				if braceCount == 0 {
					endPos = i + 1
					break
				}
			}
		}

		if endPos > 0 {
			jsonStr = "{" + jsonStr[:endPos]

			var wrapper ErrorWrapper
			if err := json.Unmarshal([]byte(jsonStr), &wrapper); err == nil {
				if len(wrapper.Err.InstructionError) >= 2 {
					if customMap, ok := wrapper.Err.InstructionError[1].(map[string]interface{}); ok {
						if customVal, ok := customMap["Custom"]; ok {
							switch v := customVal.(type) {
							case float64:
								code := int(v)
								return &code
							case string:
								if code, err := strconv.Atoi(v); err == nil {
									return &code
								}
							}
						}
					}
				}
			}
		}
	}

	// Method 2: Regex patterns for "Custom": 6009
	patterns := []string{
		`"Custom":\s*(\d+)`,     // "Custom": 6009
		`"Custom":\s*"(\d+)"`,   // "Custom": "6009"
		`Custom:\s*(\d+)`,       // Custom: 6009
		`error code:\s*(\d+)`,   // error code: 6009
		`Error Number:\s*(\d+)`, // Error Number: 6009 (from Anchor logs)
	}

	for _, pattern := range patterns {
		if matches := regexp.MustCompile(pattern).FindStringSubmatch(errStr); len(matches) > 1 {
			if code, err := strconv.Atoi(matches[1]); err == nil {
				return &code
			}
		}
	}

	// Method 3: Hex format - custom program error: 0x1779
	if matches := regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`).FindStringSubmatch(errStr); len(matches) > 1 {
		if code, err := strconv.ParseInt(matches[1], 16, 64); err == nil {
			intCode := int(code)
			return &intCode
		}
	}

	return nil
}

// ProgramError resolves an RPC error into the matching typed program error,
// or nil when the error carries no recognizable custom code.
func ProgramError(err error) *program.Error {
	code := ExtractErrorCode(err)
	if code == nil {
		return nil
	}
	return program.ErrorForCode(uint32(*code))
}

// ParseSolanaError extracts and formats error
func ParseSolanaError(err error) string {
	if err == nil {
		return ""
	}

	errStr := err.Error()

	// Check for BlockhashNotFound (transaction expired)
	if strings.Contains(errStr, "BlockhashNotFound") ||
		strings.Contains(errStr, "Blockhash not found") {
		return "Transaction expired. The blockhash is no longer valid. Please create a new transaction and try again."
	}

	if code := ExtractErrorCode(err); code != nil {
		if msg, ok := ProgramErrors[*code]; ok {
			return msg
		}
		return fmt.Sprintf("Custom program error code: %d", *code)
	}

	if regexp.MustCompile(`simulation failed`).MatchString(errStr) {
		return "Transaction simulation failed. Check program logs for details."
	}

	if regexp.MustCompile(`insufficient funds`).MatchString(errStr) {
		return "Insufficient SOL balance to pay for transaction"
	}

	if len(errStr) > 300 {
		return errStr[:300] + "..."
	}
	return errStr
}

// ExtractLogMessages extracts program logs from error
func ExtractLogMessages(err error) []string {
	if err == nil {
		return nil
	}

	errStr := err.Error()
	logs := []string{}

	patterns := []string{
		`Program log: ([^"\\n]+?)(?:"|\\n|$)`, // With quotes
		`Program log: ([^\n]+)`,               // Without quotes
	}

	for _, pattern := range patterns {
		matches := regexp.MustCompile(pattern).FindAllStringSubmatch(errStr, -1)
		for _, match := range matches {
			if len(match) > 1 {
				log := strings.TrimSpace(match[1])
				if log != "" && !containsLog(logs, log) {
					logs = append(logs, log)
				}
			}
		}
	}

	return logs
}

func containsLog(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
