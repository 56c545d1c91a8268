package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Contract number prefixes.
const (
	PrefixRental = "LOC"
	PrefixSale   = "VTE"
)

const receiptPrefix = "Q"

// NewRecordID returns a fresh store identifier.
func NewRecordID() string {
	return uuid.NewString()
}

// FormatReceiptNumber returns a receipt number like "Q-2026-10-001".
func FormatReceiptNumber(year, month, seq int) string {
	return fmt.Sprintf("%s-%04d-%02d-%03d", receiptPrefix, year, month, seq)
}

// ParseReceiptNumber parses "Q-2026-10-001" into year, month, seq.
func ParseReceiptNumber(num string) (year, month, seq int, err error) {
	parts := strings.Split(num, "-")
	if len(parts) != 4 || parts[0] != receiptPrefix {
		return 0, 0, 0, fmt.Errorf("invalid receipt number format: %q", num)
	}

	year, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in receipt number %q: %w", num, err)
	}

	month, err = strconv.Atoi(parts[2])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("invalid month in receipt number %q", num)
	}

	seq, err = strconv.Atoi(parts[3])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid sequence in receipt number %q: %w", num, err)
	}

	return year, month, seq, nil
}

// NextReceiptSeq returns the next sequence number for a month given the
// receipt numbers already issued. Unparseable numbers are ignored.
func NextReceiptSeq(existing []string, year, month int) int {
	maxSeq := 0
	for _, num := range existing {
		y, m, seq, err := ParseReceiptNumber(num)
		if err != nil || y != year || m != month {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}

// FormatContractNumber returns a contract number like "LOC-2026-0001".
func FormatContractNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%04d-%04d", prefix, year, seq)
}

// NextContractSeq returns the next yearly sequence for prefix.
func NextContractSeq(existing []string, prefix string, year int) int {
	maxSeq := 0
	for _, num := range existing {
		parts := strings.Split(num, "-")
		if len(parts) != 3 || parts[0] != prefix {
			continue
		}
		y, err := strconv.Atoi(parts[1])
		if err != nil || y != year {
			continue
		}
		seq, err := strconv.Atoi(parts[2])
		if err != nil {
			continue
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq + 1
}
