package listing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chazu/luadis/pkg/proto"
)

// Identity selects how prototypes are labelled in headers, debug
// sections and CLOSURE comments, so nested listings can be correlated.
type Identity uint8

const (
	// IdentityContent labels a prototype with a UUIDv5 derived from its
	// canonical snapshot bytes. Stable across runs and machines.
	IdentityContent Identity = iota
	// IdentitySequence labels prototypes "#0", "#1", ... in listing order.
	IdentitySequence
	// IdentityNone omits labels.
	IdentityNone
)

// String returns the configuration name of the mode.
func (id Identity) String() string {
	switch id {
	case IdentityContent:
		return "content"
	case IdentitySequence:
		return "sequence"
	case IdentityNone:
		return "none"
	default:
		return fmt.Sprintf("Identity(%d)", uint8(id))
	}
}

// ParseIdentity parses a configuration name produced by Identity.String.
func ParseIdentity(s string) (Identity, error) {
	switch strings.ToLower(s) {
	case "content", "":
		return IdentityContent, nil
	case "sequence":
		return IdentitySequence, nil
	case "none":
		return IdentityNone, nil
	}
	return 0, fmt.Errorf("unknown identity mode %q (want content, sequence or none)", s)
}

// prototypeSpace namespaces content tokens so they cannot collide with
// UUIDv5 values minted for other purposes.
var prototypeSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chazu/luadis/prototype"))

// ContentToken returns the content-derived identity of p.
func ContentToken(p *proto.Prototype) (string, error) {
	data, err := proto.Fingerprint(p)
	if err != nil {
		return "", fmt.Errorf("fingerprint prototype: %w", err)
	}
	return uuid.NewSHA1(prototypeSpace, data).String(), nil
}

// identifier assigns tokens for one listing. Tokens are cached per
// prototype for the duration of a PrintFunction call.
type identifier struct {
	mode   Identity
	tokens map[*proto.Prototype]string
	next   int
}

func newIdentifier(mode Identity) *identifier {
	return &identifier{mode: mode, tokens: make(map[*proto.Prototype]string)}
}

// reset numbers the tree rooted at root in listing order.
func (id *identifier) reset(root *proto.Prototype) {
	id.tokens = make(map[*proto.Prototype]string)
	id.next = 0
	if id.mode != IdentitySequence || root == nil {
		return
	}
	root.Walk(func(p *proto.Prototype) bool {
		id.assign(p)
		return true
	})
}

func (id *identifier) assign(p *proto.Prototype) string {
	tok := fmt.Sprintf("#%d", id.next)
	id.next++
	id.tokens[p] = tok
	return tok
}

// token returns the label for p, or "" in IdentityNone mode.
func (id *identifier) token(p *proto.Prototype) (string, error) {
	if id.mode == IdentityNone || p == nil {
		return "", nil
	}
	if tok, ok := id.tokens[p]; ok {
		return tok, nil
	}
	if id.mode == IdentitySequence {
		return id.assign(p), nil
	}
	tok, err := ContentToken(p)
	if err != nil {
		return "", err
	}
	id.tokens[p] = tok
	return tok, nil
}
