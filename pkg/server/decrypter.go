package server

import (
	"fmt"
	"sync"

	"github.com/otherjamesbrown/moodsense/pkg/envelope"
	apperrors "github.com/otherjamesbrown/moodsense/pkg/errors"
)

// lazyDecrypter resolves the server key on first use. A missing key is
// looked up again on the next request; a loaded key is kept.
type lazyDecrypter struct {
	keys envelope.KeyProvider

	mu sync.Mutex
	d  *envelope.Decrypter
}

func newLazyDecrypter(keys envelope.KeyProvider) *lazyDecrypter {
	return &lazyDecrypter{keys: keys}
}

func (l *lazyDecrypter) get() (*envelope.Decrypter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.d != nil {
		return l.d, nil
	}
	if l.keys == nil {
		return nil, envelope.ErrKeyNotConfigured
	}
	d, err := envelope.LoadDecrypter(l.keys)
	if err != nil {
		if apperrors.IsNotConfigured(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: unusable server key (%s): %v", apperrors.ErrNotConfigured, l.keys.Description(), err)
	}
	l.d = d
	return d, nil
}
