package grammar

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tliron/commonlog"
)

type cacheKey struct {
	filename string
	source   uint64
	start    string
}

// Cache keeps recently built grammars, keyed by file name, source text and
// start production. It is safe for concurrent use.
type Cache struct {
	grammars *lru.Cache[cacheKey, *Grammar]
	opts     []Option
	log      commonlog.Logger
}

// NewCache creates a cache that holds up to size grammars. The options are
// passed to every grammar the cache builds.
func NewCache(size int, opts ...Option) (*Cache, error) {
	grammars, err := lru.New[cacheKey, *Grammar](size)
	if err != nil {
		return nil, err
	}
	return &Cache{
		grammars: grammars,
		opts:     opts,
		log:      commonlog.GetLogger("parsekit.grammar.cache"),
	}, nil
}

// Load returns the grammar built from src, building it if it is not cached.
// Failed builds are not cached.
func (c *Cache) Load(filename string, src []byte, start string) (*Grammar, error) {
	key := cacheKey{filename: filename, source: xxhash.Sum64(src), start: start}
	if g, ok := c.grammars.Get(key); ok {
		c.log.Debugf("cache hit for %s (%016x)", filename, key.source)
		return g, nil
	}
	c.log.Debugf("cache miss for %s (%016x)", filename, key.source)

	g, err := Compile(filename, bytes.NewReader(src), start, c.opts...)
	if err != nil {
		return nil, err
	}
	c.grammars.Add(key, g)
	return g, nil
}

func (c *Cache) Len() int {
	return c.grammars.Len()
}

func (c *Cache) Purge() {
	c.grammars.Purge()
}
