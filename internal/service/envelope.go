package service

import (
	"fmt"
	"math/rand/v2"
	"time"

	"aa-consent-gateway/internal/model"
)

const (
	ridPrefix = "11"
	ridDigits = 13
	// ISO-8601 in UTC with millisecond precision
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

const ridSpace uint64 = 1e13

// EnvelopeBuilder produces the header every AA network request carries.
// rid values are random, not unique: 13 decimal digits of entropy.
type EnvelopeBuilder struct {
	now    func() time.Time
	random func(n uint64) uint64
}

// NewEnvelopeBuilder returns a builder using the wall clock and math/rand/v2
func NewEnvelopeBuilder() *EnvelopeBuilder {
	return &EnvelopeBuilder{
		now:    time.Now,
		random: rand.Uint64N,
	}
}

// Header returns a fresh header with a new rid and timestamp
func (b *EnvelopeBuilder) Header() model.Header {
	return model.Header{
		RID:       fmt.Sprintf("%s%0*d", ridPrefix, ridDigits, b.random(ridSpace)),
		TS:        b.now().UTC().Format(timestampLayout),
		ChannelID: model.ChannelID,
	}
}

// BuildEnvelope wraps payload with a fresh header
func BuildEnvelope[T any](b *EnvelopeBuilder, payload T) model.Envelope[T] {
	return model.Envelope[T]{
		Header: b.Header(),
		Body:   payload,
	}
}
