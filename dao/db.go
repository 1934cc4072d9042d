package dao

import (
	"errors"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/index"
	"github.com/dilshat/contacts-admin/model"
	"github.com/dilshat/contacts-admin/util"
	bolt "go.etcd.io/bbolt"
)

// ErrNotFound is returned when the requested record is not stored.
var ErrNotFound = errors.New("not found")

type Db interface {
	Init(data interface{}) error
	One(fieldName string, value interface{}, to interface{}) error
	Save(data interface{}) error
	DeleteStruct(data interface{}) error
	All(to interface{}, options ...func(*index.Options)) error
	Begin(writable bool) (storm.Node, error)
	Close() error
}

// OpenStorm opens (creating it when missing) the embedded bolt store at dbFilePath.
// The caller owns the returned handle and must Close it on shutdown.
func OpenStorm(dbFilePath string) (Db, error) {
	fresh := !util.FileExists(dbFilePath)

	db, err := storm.Open(dbFilePath, storm.BoltOptions(0600, &bolt.Options{Timeout: 10 * time.Second, ReadOnly: false}))
	if err != nil {
		return nil, err
	}

	if fresh {
		//init db structs
		if err = db.Init(&model.Contact{}); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}
