package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.etcd.io/bbolt"
)

const DefaultBucket = "cart"

// PersistentStore keeps values in a single bbolt bucket.
type PersistentStore struct {
	Db       *bbolt.DB
	DbFile   string
	FileMode os.FileMode
	Bucket   string
}

func NewPersistentStore(file string, mode os.FileMode, bucket string) (*PersistentStore, error) {
	if file == "" {
		return nil, errors.New("persistent store: empty database file")
	}
	if bucket == "" {
		bucket = DefaultBucket
	}

	db, err := bbolt.Open(file, mode, nil)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}

	p := &PersistentStore{
		Db:       db,
		DbFile:   file,
		FileMode: mode,
		Bucket:   bucket,
	}

	if err := p.CreateBucket(); err != nil {
		db.Close()
		return nil, err
	}

	return p, nil
}

func (p *PersistentStore) CreateBucket() error {
	return p.Db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(p.Bucket))
		return err
	})
}

func (p *PersistentStore) Get(_ context.Context, key string) (v []byte, err error) {

	err = p.Db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(p.Bucket))
		if b == nil {
			return fmt.Errorf("bucket %s missing", p.Bucket)
		}

		raw := b.Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}

		// raw is only valid for the lifetime of the transaction
		v = append([]byte(nil), raw...)
		return nil
	})

	return
}

func (p *PersistentStore) Set(_ context.Context, key string, value []byte) error {

	return p.Db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(p.Bucket))
		if b == nil {
			return fmt.Errorf("bucket %s missing", p.Bucket)
		}

		return b.Put([]byte(key), value)
	})
}

func (p *PersistentStore) Close() error {
	return p.Db.Close()
}
