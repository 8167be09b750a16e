// Package tokens estimates the token cost of message and code text with the
// cl100k_base encoding.
package tokens

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// Encoding is the tiktoken encoding used for counts.
const Encoding = "cl100k_base"

// Counter counts tokens. The encoding is loaded on first use (~100ms); if it
// cannot be loaded, counts fall back to a len/4 estimate.
type Counter struct {
	log *zap.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
	load func(string) (*tiktoken.Tiktoken, error)
}

// NewCounter returns a Counter. log may be nil.
func NewCounter(log *zap.Logger) *Counter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Counter{log: log, load: tiktoken.GetEncoding}
}

func (c *Counter) encoding() *tiktoken.Tiktoken {
	c.once.Do(func() {
		enc, err := c.load(Encoding)
		if err != nil {
			c.log.Warn("token encoding unavailable, estimating", zap.String("encoding", Encoding), zap.Error(err))
			return
		}
		c.enc = enc
	})
	return c.enc
}

// Count returns the number of tokens in text. Empty text is zero tokens.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := c.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return Estimate(text)
}

// Exact reports whether counts come from the real encoding.
func (c *Counter) Exact() bool { return c.encoding() != nil }

// Estimate is the fallback heuristic: one token per four bytes, rounded up.
func Estimate(text string) int {
	return (len(text) + 3) / 4
}
