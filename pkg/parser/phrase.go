package parser

import "github.com/leapstack-labs/njkast/pkg/token"

// phraseState tracks a keyword phrase whose words must be adjacent among
// significant tokens.
type phraseState int

const (
	phraseIdle      phraseState = iota // nothing pending
	phrasePending                      // head seen, waiting for the next word
	phraseConfirmed                    // the last token completed the phrase
)

func (s phraseState) String() string {
	switch s {
	case phraseIdle:
		return "idle"
	case phrasePending:
		return "pending"
	case phraseConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// keywordPair recognizes "head tail" phrases such as "with context" or
// "ignore missing". Each head carries the value a completed phrase sets.
type keywordPair struct {
	heads map[string]bool
	tail  string
	state phraseState
	armed bool
	value bool
}

// withContext matches "with context" and "without context".
func withContext() *keywordPair {
	return &keywordPair{
		heads: map[string]bool{"with": true, "without": false},
		tail:  "context",
	}
}

// ignoreMissing matches "ignore missing". Once set it stays set.
func ignoreMissing() *keywordPair {
	return &keywordPair{
		heads: map[string]bool{"ignore": true},
		tail:  "missing",
	}
}

// feed advances the phrase with a significant token. It reports whether the
// token is one of the phrase keywords; any other token resets a pending head.
func (k *keywordPair) feed(tok token.Token) bool {
	if tok.Kind == token.Symbol {
		if v, ok := k.heads[tok.Value]; ok {
			k.state = phrasePending
			k.armed = v
			return true
		}
		if tok.Value == k.tail {
			if k.state == phrasePending {
				k.state = phraseConfirmed
				k.value = k.armed
			} else {
				k.state = phraseIdle
			}
			return true
		}
	}
	k.state = phraseIdle
	return false
}

// aliasPhrase recognizes "as <name>".
type aliasPhrase struct {
	state phraseState
}

func (a *aliasPhrase) arm() { a.state = phrasePending }

func (a *aliasPhrase) reset() { a.state = phraseIdle }

// take reports whether the current symbol completes a pending alias.
func (a *aliasPhrase) take() bool {
	if a.state == phrasePending {
		a.state = phraseConfirmed
		return true
	}
	a.state = phraseIdle
	return false
}
