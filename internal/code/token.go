package code

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Tokenizer derives redeemable tokens from code row ids. The base36 id prefix keeps
// tokens unique; the suffix is a keyed digest so tokens cannot be enumerated from ids.
type Tokenizer struct {
	ns uuid.UUID
}

func NewTokenizer(secret string) Tokenizer {
	return Tokenizer{ns: uuid.NewSHA1(uuid.NameSpaceOID, []byte(secret))}
}

func (t Tokenizer) Token(id int64) string {
	digest := uuid.NewSHA1(t.ns, []byte(strconv.FormatInt(id, 10)))
	return strings.ToUpper(strconv.FormatInt(id, 36) + "-" + hex.EncodeToString(digest[:4]))
}

// Normalize canonicalizes user input so tokens can be typed in any case.
func Normalize(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}
