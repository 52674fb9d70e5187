// File: internal/infra/tokens/estimator.go
package tokens

import (
	"sync"
	"sync/atomic"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
)

// Estimator counts prompt tokens with a BPE encoding. Loading the encoding
// may download the vocabulary, so it happens in the background; until it is
// ready (or if it fails) Count uses a chars/4 heuristic and never blocks.
type Estimator struct {
	encoding    string
	log         *zerolog.Logger
	getEncoding func(string) (*tiktoken.Tiktoken, error)

	once sync.Once
	done chan struct{}
	enc  atomic.Pointer[tiktoken.Tiktoken]
}

func NewEstimator(encoding string, logger *zerolog.Logger) *Estimator {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	return &Estimator{
		encoding:    encoding,
		log:         logger,
		getEncoding: tiktoken.GetEncoding,
		done:        make(chan struct{}),
	}
}

// Start loads the encoding in a background goroutine. Safe to call more than once.
func (e *Estimator) Start() {
	e.once.Do(func() {
		go func() {
			defer close(e.done)
			enc, err := e.getEncoding(e.encoding)
			if err != nil {
				e.log.Warn().Err(err).Str("encoding", e.encoding).Msg("token encoding unavailable; using heuristic")
				return
			}
			e.enc.Store(enc)
			e.log.Debug().Str("encoding", e.encoding).Msg("token encoding loaded")
		}()
	})
}

// Ready is closed once the load attempt has finished, successfully or not.
func (e *Estimator) Ready() <-chan struct{} { return e.done }

func (e *Estimator) Count(text string) int {
	enc := e.enc.Load()
	if enc == nil {
		e.Start()
		return Heuristic(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// Heuristic approximates tokens as one per four bytes, rounded up.
func Heuristic(text string) int {
	return (len(text) + 3) / 4
}
