package codec

import (
	"fmt"
	"sync"
)

// Codec is a named bundle of format readers/writers. The engine only
// calls through this interface and the per-format reader/writer types it
// returns; it never parses segment bytes directly.
type Codec interface {
	Name() string
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Codec{}
)

func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[c.Name()] = c
}

func Get(name string) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
	return c, nil
}
