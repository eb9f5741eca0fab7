package utils

import (
	"fmt"
	"strconv"
)

// ParseBits decodes the hex string form of compact difficulty bits.
func ParseBits(value string) (uint32, error) {
	parsed, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(parsed), nil
}

// FormatBits renders compact difficulty bits the way header files and RPC
// responses carry them.
func FormatBits(bits uint32) string {
	return fmt.Sprintf("%08x", bits)
}
