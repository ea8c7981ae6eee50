package ports

import "github.com/layer-3/webauth/core"

// Tokenizer converts raw bearer tokens into domain tokens
type Tokenizer interface {
	Decode(raw string) (*core.AuthToken, error)
}
