package store

import (
	"encoding/binary"
	"slices"

	bolt "go.etcd.io/bbolt"
	"src.elabenv.dev/pkg/modfile"
	"src.elabenv.dev/pkg/name"
	. "src.elabenv.dev/pkg/store/storedefs"
)

func init() {
	initDB["initialize module table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketModule))
		return err
	}
	initDB["initialize revision table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRevision))
		return err
	}
	initDB["initialize source table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSource))
		return err
	}
}

// PutModule stores the data of a module, replacing what was stored before,
// and returns the new revision of the store. Module data is stored in the
// module file format. source is the digest of the file the data was read
// from, or "" if there is none.
func (s *dbStore) PutModule(m name.Name, d *modfile.ModuleData, source string) (int, error) {
	if m.IsAnonymous() {
		return 0, ErrAnonymousModule
	}
	data, err := modfile.Encode(d)
	if err != nil {
		return 0, err
	}
	key := []byte(m.String())
	var seq uint64
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketModule))
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(key, data); err != nil {
			return err
		}
		if err := tx.Bucket([]byte(bucketRevision)).Put(key, marshalSeq(seq)); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketSource)).Put(key, []byte(source))
	})
	return int(seq), err
}

// Module returns the stored data of a module.
func (s *dbStore) Module(m name.Name) (*modfile.ModuleData, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketModule)).Get([]byte(m.String()))
		if v == nil {
			return ErrNoModule
		}
		// Values are only valid during the transaction.
		data = slices.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return modfile.Decode(data)
}

// ModuleRevision returns the store revision at which a module was last put.
func (s *dbStore) ModuleRevision(m name.Name) (int, error) {
	var seq uint64
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketRevision)).Get([]byte(m.String()))
		if v == nil {
			return ErrNoModule
		}
		seq = unmarshalSeq(v)
		return nil
	})
	return int(seq), err
}

// ModuleSource returns the source digest a module was last put with.
func (s *dbStore) ModuleSource(m name.Name) (string, error) {
	var source string
	err := s.db.View(func(tx *bolt.Tx) error {
		key := []byte(m.String())
		if tx.Bucket([]byte(bucketRevision)).Get(key) == nil {
			return ErrNoModule
		}
		// An empty digest may read back as nil.
		source = string(tx.Bucket([]byte(bucketSource)).Get(key))
		return nil
	})
	return source, err
}

// DelModule deletes a module. Deleting a module that is not stored is not an
// error.
func (s *dbStore) DelModule(m name.Name) error {
	key := []byte(m.String())
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{bucketModule, bucketRevision, bucketSource} {
			if err := tx.Bucket([]byte(bucket)).Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// ModuleNames returns the names of all stored modules, sorted by their string
// form.
func (s *dbStore) ModuleNames() ([]name.Name, error) {
	var names []name.Name
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketModule)).ForEach(func(k, _ []byte) error {
			n, err := name.Parse(string(k))
			if err != nil {
				return err
			}
			names = append(names, n)
			return nil
		})
	})
	return names, err
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
