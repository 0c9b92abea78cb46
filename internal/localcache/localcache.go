package localcache

import (
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/phytolab/orderport/pkg/common"
)

// Cache is the durable local key-value mirror backed by bbolt. It is a
// best-effort layer: reads never fail (corruption reads as absent) and write
// errors are logged, never propagated to mutation callers.
type Cache struct {
	db          *bbolt.DB
	origin      string
	broadcaster *Broadcaster
}

const bucketName = "localcache"

// Keys of the persisted collections.
const (
	KeyProducts = "products"
	KeySettings = "settings"
	KeyOrders   = "orders"
	KeyUsers    = "users"
)

// SessionKey builds the key for a per-session value such as the cart or the
// current user.
func SessionKey(prefix, sid string) string {
	return prefix + "/" + sid
}

const (
	KeyPrefixCart = "cart"
	KeyPrefixUser = "user"
)

// Open opens (or creates) the cache file under the workdir.
func Open(workdir string) (*Cache, error) {
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(filepath.Join(workdir, "localcache.db"), 0o600, &bbolt.Options{
		Timeout: 3 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Cache{db: db, origin: common.UUIDstr(), broadcaster: NewBroadcaster()}, nil
}

// Origin identifies this cache instance in broadcast events.
func (c *Cache) Origin() string {
	return c.origin
}

// Broadcaster returns the change channel other store instances subscribe to.
func (c *Cache) Broadcaster() *Broadcaster {
	return c.broadcaster
}

// ReadAll returns the last written value for key, or false if never written.
func (c *Cache) ReadAll(key string) ([]byte, bool) {
	var out []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		zap.L().Warn("localcache read failed, treating as absent",
			zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if out == nil {
		return nil, false
	}
	return out, true
}

// Write stores value under key, replacing any prior value, and publishes the
// change on the broadcaster.
func (c *Cache) Write(key string, value []byte) {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), value)
	})
	if err != nil {
		zap.L().Error("localcache write failed",
			zap.String("key", key), zap.Error(err))
		return
	}
	c.broadcaster.Publish(c.origin, key, value)
}

// Remove deletes the entry for key.
func (c *Cache) Remove(key string) {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(key))
	})
	if err != nil {
		zap.L().Error("localcache remove failed",
			zap.String("key", key), zap.Error(err))
		return
	}
	c.broadcaster.Publish(c.origin, key, nil)
}

// Close closes the underlying bbolt file.
func (c *Cache) Close() error {
	return c.db.Close()
}
