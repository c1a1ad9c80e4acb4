// Package bolt provides latch properties persisted in a bbolt database.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/zoobzio/latch"
	"go.etcd.io/bbolt"
)

// DefaultBucket is the bucket used when none is configured.
const DefaultBucket = "latch"

// Store holds properties as text values in one bbolt bucket.
type Store struct {
	db        *bbolt.DB
	bucket    []byte
	converter latch.Converter
	pipeline  *latch.SourcePipeline
	props     map[string]*Property
}

// Option configures a Store.
type Option func(*config)

type config struct {
	bucket    string
	timeout   time.Duration
	converter latch.Converter
	pipeline  []latch.SourceOption
}

// WithBucket sets the bucket name. Default: DefaultBucket.
func WithBucket(name string) Option {
	return func(c *config) {
		c.bucket = name
	}
}

// WithTimeout sets how long Open waits for the database file lock.
// Default: 1s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithConverter sets the converter used to parse stored values.
// Default: latch.TextConverter.
func WithConverter(conv latch.Converter) Option {
	return func(c *config) {
		c.converter = conv
	}
}

// WithPipeline wraps every read and write of the store with the given
// middleware, such as latch.WithRetry or latch.WithBackoff.
func WithPipeline(opts ...latch.SourceOption) Option {
	return func(c *config) {
		c.pipeline = opts
	}
}

// Open opens or creates the database at path and makes sure the bucket exists.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := &config{
		bucket:    DefaultBucket,
		timeout:   time.Second,
		converter: latch.TextConverter{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: cfg.timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	bucket := []byte(cfg.bucket)
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.bucket, err)
	}

	s := &Store{
		db:        db,
		bucket:    bucket,
		converter: cfg.converter,
		props:     map[string]*Property{},
	}
	s.pipeline = latch.NewSourcePipeline(s.io, cfg.pipeline...)
	return s, nil
}

// Close closes the database. Properties of a closed store fail to read and
// write.
func (s *Store) Close() error {
	return s.db.Close()
}

// Keys returns the stored keys in byte order.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Property returns the property stored under key. Repeated calls for the same
// key return the same property, so every field bound to a key sees the
// writes of the others. The type of the first call wins.
func (s *Store) Property(key string, typ reflect.Type) *Property {
	if p, ok := s.props[key]; ok {
		return p
	}
	p := &Property{store: s, key: []byte(key), typ: typ}
	s.props[key] = p
	return p
}

func (s *Store) get(key []byte) ([]byte, error) {
	req := &latch.SourceRequest{Op: "load", Key: string(key)}
	err := s.pipeline.Run(context.Background(), req)
	return req.Data, err
}

func (s *Store) put(key, value []byte) error {
	req := &latch.SourceRequest{Op: "write", Key: string(key), Data: value}
	return s.pipeline.Run(context.Background(), req)
}

func (s *Store) io(_ context.Context, req *latch.SourceRequest) error {
	key := []byte(req.Key)
	if req.Op == "write" {
		return s.write(key, req.Data)
	}
	data, err := s.read(key)
	req.Data = data
	return err
}

func (s *Store) read(key []byte) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get(key); v != nil {
			// Values are only valid during the transaction.
			out = append([]byte{}, v...)
		}
		return nil
	})
	return out, err
}

func (s *Store) write(key, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if value == nil {
			return b.Delete(key)
		}
		return b.Put(key, value)
	})
}

// Property is a typed value stored under one key of a Store. A missing key
// holds nil.
type Property struct {
	store    *Store
	key      []byte
	typ      reflect.Type
	readOnly bool
	last     any

	valueListeners    latch.Listeners[latch.ValueChangeListener]
	readOnlyListeners latch.Listeners[latch.ReadOnlyStatusChangeListener]
}

// Key returns the key the property is stored under.
func (p *Property) Key() string {
	return string(p.key)
}

// Load reads and converts the stored value.
func (p *Property) Load() (any, error) {
	data, err := p.store.get(p.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", p.key, err)
	}
	if data == nil {
		p.last = nil
		return nil, nil
	}
	v, err := p.store.converter.Convert(string(data), p.typ)
	if err != nil {
		return nil, &latch.ConversionError{Value: string(data), Type: p.typ, Err: err}
	}
	p.last = v
	return v, nil
}

// Value implements latch.Property. It returns the last value read when the
// database cannot be read.
func (p *Property) Value() any {
	v, err := p.Load()
	if err != nil {
		return p.last
	}
	return v
}

// SetValue implements latch.Property. The value is stored in its textual
// form, which must convert back to the property type. A nil value deletes
// the key.
func (p *Property) SetValue(v any) error {
	if p.readOnly {
		return &latch.ReadOnlyError{Name: string(p.key)}
	}

	var data []byte
	var value any
	if v != nil {
		text := fmt.Sprint(v)
		converted, err := p.store.converter.Convert(text, p.typ)
		if err != nil {
			return &latch.ConversionError{Value: v, Type: p.typ, Err: err}
		}
		data = []byte(text)
		value = converted
	}

	if err := p.store.put(p.key, data); err != nil {
		return fmt.Errorf("failed to write %q: %w", p.key, err)
	}
	p.last = value
	p.valueListeners.Each(func(l latch.ValueChangeListener) {
		l.ValueChange(latch.ValueChangeEvent{Property: p})
	})
	return nil
}

// Type implements latch.Property.
func (p *Property) Type() reflect.Type {
	return p.typ
}

// ReadOnly implements latch.Property.
func (p *Property) ReadOnly() bool {
	return p.readOnly
}

// SetReadOnly implements latch.Property.
func (p *Property) SetReadOnly(readOnly bool) {
	if p.readOnly == readOnly {
		return
	}
	p.readOnly = readOnly
	p.readOnlyListeners.Each(func(l latch.ReadOnlyStatusChangeListener) {
		l.ReadOnlyStatusChange(latch.ReadOnlyStatusChangeEvent{Property: p})
	})
}

// AddValueChangeListener implements latch.ValueChangeNotifier.
func (p *Property) AddValueChangeListener(l latch.ValueChangeListener) {
	p.valueListeners.Add(l)
}

// RemoveValueChangeListener implements latch.ValueChangeNotifier.
func (p *Property) RemoveValueChangeListener(l latch.ValueChangeListener) {
	p.valueListeners.Remove(l)
}

// AddReadOnlyStatusChangeListener implements latch.ReadOnlyStatusNotifier.
func (p *Property) AddReadOnlyStatusChangeListener(l latch.ReadOnlyStatusChangeListener) {
	p.readOnlyListeners.Add(l)
}

// RemoveReadOnlyStatusChangeListener implements latch.ReadOnlyStatusNotifier.
func (p *Property) RemoveReadOnlyStatusChangeListener(l latch.ReadOnlyStatusChangeListener) {
	p.readOnlyListeners.Remove(l)
}

// IsClosed reports whether err was caused by using a closed store.
func IsClosed(err error) bool {
	return errors.Is(err, bbolt.ErrDatabaseNotOpen)
}

// Ensure Property implements the property capabilities.
var (
	_ latch.Property               = (*Property)(nil)
	_ latch.Loader                 = (*Property)(nil)
	_ latch.ValueChangeNotifier    = (*Property)(nil)
	_ latch.ReadOnlyStatusNotifier = (*Property)(nil)
)
