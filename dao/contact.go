package dao

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/asdine/storm/v3"
	"github.com/dilshat/contacts-admin/model"
)

type ContactDao interface {
	//CreateMany stores every contact whose phone is not stored yet and returns the stored ones with their ids
	CreateMany(ctx context.Context, contacts []model.Contact) ([]model.Contact, error)
	//GetAll returns all contacts ordered by id
	GetAll(ctx context.Context) ([]model.Contact, error)
	//Delete removes the contact with the given id and returns it
	Delete(ctx context.Context, id int) (model.Contact, error)
}

func NewContactDao(db Db) ContactDao {
	return &contactDao{db: db}
}

type contactDao struct {
	db Db
}

func (d contactDao) CreateMany(_ context.Context, contacts []model.Contact) ([]model.Contact, error) {
	tx, err := d.db.Begin(true)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	created := []model.Contact{}
	for _, contact := range contacts {
		var existing model.Contact
		err := tx.One("Phone", contact.Phone, &existing)
		if err == nil {
			//phone already stored
			continue
		}
		if !errors.Is(err, storm.ErrNotFound) {
			return nil, fmt.Errorf("error looking up phone: %w", err)
		}

		contact.Id = 0
		if err := tx.Save(&contact); err != nil {
			return nil, fmt.Errorf("error saving contact: %w", err)
		}
		created = append(created, contact)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return created, nil
}

func (d contactDao) GetAll(_ context.Context) ([]model.Contact, error) {
	var contacts []model.Contact
	if err := d.db.All(&contacts); err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	sort.Slice(contacts, func(i, j int) bool {
		return contacts[i].Id < contacts[j].Id
	})

	return contacts, nil
}

func (d contactDao) Delete(_ context.Context, id int) (model.Contact, error) {
	tx, err := d.db.Begin(true)
	if err != nil {
		return model.Contact{}, err
	}
	defer tx.Rollback()

	var contact model.Contact
	err = tx.One("Id", id, &contact)
	if errors.Is(err, storm.ErrNotFound) {
		return model.Contact{}, ErrNotFound
	}
	if err != nil {
		return model.Contact{}, err
	}

	if err := tx.DeleteStruct(&contact); err != nil {
		return model.Contact{}, err
	}

	return contact, tx.Commit()
}
