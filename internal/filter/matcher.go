package filter

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/zhivkoto/uho-indexing/internal/common"
)

// Matcher decides whether a transaction genuinely invoked the target
// program. It is immutable after construction and safe to share across
// workers without synchronization.
type Matcher struct {
	program     solana.PublicKey
	programText string
}

// NewMatcher decodes the base58 program ID once at startup. A program ID
// that does not decode to exactly 32 bytes is a configuration error and the
// process must not proceed to consume records.
func NewMatcher(programID string) (*Matcher, error) {
	program, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program ID %q: %v", programID, err)
	}
	return &Matcher{
		program:     program,
		programText: program.String(),
	}, nil
}

func (m *Matcher) Program() solana.PublicKey {
	return m.program
}

// Matches runs the three filter stages, cheapest first. Pure: no shared
// state is read or written, so two calls on the same record agree.
func (m *Matcher) Matches(tx *common.TransactionRecord) bool {
	// Vote transactions dominate raw volume and carry no event data
	if tx.IsVote {
		return false
	}

	if !m.referencesProgram(tx.AccountKeys) {
		return false
	}

	// Account inclusion alone can be incidental (e.g. fee payer); require
	// the program ID to also show up in emitted log text
	return m.logsMentionProgram(tx.LogMessages)
}

func (m *Matcher) referencesProgram(accountKeys []solana.PublicKey) bool {
	for _, key := range accountKeys {
		if key.Equals(m.program) {
			return true
		}
	}
	return false
}

func (m *Matcher) logsMentionProgram(logs []string) bool {
	if len(logs) == 0 {
		return false
	}
	for _, line := range logs {
		if strings.Contains(line, m.programText) {
			return true
		}
	}
	return false
}
