// Package ledger remembers finished renders so batch runs can skip input
// files whose roll is already in the output store.
//
// Records live in badger, encoded with msgpack, under the key
// render:<input digest>:<layout fingerprint>:<input name>. A changed file,
// a changed layout or a copy under another name never matches an old record.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

var ErrNotFound = errors.New("ledger: not found")

const (
	keyPrefix = "render"
	separator = ":"
)

// Record describes one successful render.
type Record struct {
	Input       string        `msgpack:"input"`
	Name        string        `msgpack:"name"`
	Output      string        `msgpack:"output"`
	Digest      string        `msgpack:"digest"`
	Fingerprint string        `msgpack:"fingerprint"`
	Tempo       int           `msgpack:"tempo"`
	Height      int           `msgpack:"height"`
	Holes       int           `msgpack:"holes"`
	RunID       string        `msgpack:"run_id"`
	RenderedAt  time.Time     `msgpack:"rendered_at"`
	Elapsed     time.Duration `msgpack:"elapsed"`
}

func (r Record) key() []byte {
	return []byte(strings.Join([]string{keyPrefix, r.Digest, r.Fingerprint, r.Name}, separator))
}

type Options struct {
	// Dir holds the badger files. Required unless InMemory is set.
	Dir      string
	InMemory bool
	Logger   *slog.Logger
}

type Ledger struct {
	db *badger.DB
}

func Open(opts Options) (*Ledger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("ledger: directory is required")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{logger.With("component", "badger")})

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", opts.Dir, err)
	}
	return &Ledger{db: db}, nil
}

// Lookup returns the record for an input, identified by content digest and
// name, rendered with a layout fingerprint. It returns ErrNotFound if there
// is none.
func (l *Ledger) Lookup(_ context.Context, digest, fingerprint, name string) (Record, error) {
	var rec Record
	k := Record{Digest: digest, Fingerprint: fingerprint, Name: name}.key()
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (l *Ledger) Put(_ context.Context, rec Record) error {
	if rec.Digest == "" {
		return errors.New("ledger: record without digest")
	}
	val, err := msgpack.Marshal(rec)
	if err != nil {
		return err
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(rec.key(), val)
	})
}

// Forget drops every record of an input digest, whatever the layout or
// name. It returns the number of records removed.
func (l *Ledger) Forget(_ context.Context, digest string) (int, error) {
	prefix := []byte(keyPrefix + separator + digest + separator)
	wb := l.db.NewWriteBatch()
	defer wb.Cancel()
	n := 0
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := wb.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, wb.Flush()
}

// Records iterates over all records in key order.
func (l *Ledger) Records(_ context.Context) iter.Seq2[Record, error] {
	prefix := []byte(keyPrefix + separator)
	return func(yield func(Record, error) bool) {
		err := l.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				var rec Record
				err := it.Item().Value(func(val []byte) error {
					return msgpack.Unmarshal(val, &rec)
				})
				if !yield(rec, err) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(Record{}, err)
		}
	}
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Digest is the content hash used to recognise an input file.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint hashes any settings value. Maps are hashed as key-sorted
// pairs, so equal settings always give the same fingerprint.
func Fingerprint(settings any) (string, error) {
	b, err := msgpack.Marshal(canonical(reflect.ValueOf(settings)))
	if err != nil {
		return "", fmt.Errorf("ledger: fingerprint: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8]), nil
}

// canonical rewrites v into plain values, slices and key-sorted pairs.
// Unexported struct fields are left out.
func canonical(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Invalid:
		return nil
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return canonical(v.Elem())
	case reflect.Struct:
		t := v.Type()
		fields := make([]any, 0, 2*t.NumField())
		for i := range t.NumField() {
			if !t.Field(i).IsExported() {
				continue
			}
			fields = append(fields, t.Field(i).Name, canonical(v.Field(i)))
		}
		return fields
	case reflect.Map:
		type pair struct {
			key   string
			entry []any
		}
		pairs := make([]pair, 0, v.Len())
		for it := v.MapRange(); it.Next(); {
			k := canonical(it.Key())
			pairs = append(pairs, pair{
				key:   fmt.Sprintf("%T:%v", k, k),
				entry: []any{k, canonical(it.Value())},
			})
		}
		slices.SortFunc(pairs, func(a, b pair) int { return strings.Compare(a.key, b.key) })
		out := make([]any, len(pairs))
		for i, p := range pairs {
			out[i] = p.entry
		}
		return out
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		out := make([]any, v.Len())
		for i := range v.Len() {
			out[i] = canonical(v.Index(i))
		}
		return out
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	}
	return fmt.Sprint(v)
}

// badgerLogger routes badger output to slog, dropping its info chatter.
type badgerLogger struct {
	logger *slog.Logger
}

func (b badgerLogger) Errorf(f string, v ...any)   { b.logger.Error(strings.TrimSpace(fmt.Sprintf(f, v...))) }
func (b badgerLogger) Warningf(f string, v ...any) { b.logger.Warn(strings.TrimSpace(fmt.Sprintf(f, v...))) }
func (b badgerLogger) Infof(string, ...any)        {}
func (b badgerLogger) Debugf(f string, v ...any)   { b.logger.Debug(strings.TrimSpace(fmt.Sprintf(f, v...))) }
