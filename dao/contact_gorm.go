package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/dilshat/contacts-admin/model"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	DriverSqlite   = "sqlite"
	DriverMysql    = "mysql"
	DriverPostgres = "postgres"
)

// OpenGorm connects to a relational store, sizes its pool and migrates the contacts table.
func OpenGorm(driver, dsn string, maxOpenConns, maxIdleConns int) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSqlite:
		dialector = sqlite.Open(dsn)
		//sqlite allows a single writer
		maxOpenConns, maxIdleConns = 1, 1
	case DriverMysql:
		dialector = mysql.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)

	if err := db.AutoMigrate(&model.Contact{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("error migrating contacts: %w", err)
	}

	return db, nil
}

// CloseGorm releases the pool behind db.
func CloseGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func NewGormContactDao(db *gorm.DB) ContactDao {
	return &gormContactDao{db: db}
}

type gormContactDao struct {
	db *gorm.DB
}

func (d gormContactDao) CreateMany(ctx context.Context, contacts []model.Contact) ([]model.Contact, error) {
	created := []model.Contact{}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, contact := range contacts {
			contact.Id = 0
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&contact)
			if res.Error != nil {
				return fmt.Errorf("error saving contact: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				//phone already stored
				continue
			}
			created = append(created, contact)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (d gormContactDao) GetAll(ctx context.Context) ([]model.Contact, error) {
	var contacts []model.Contact
	if err := d.db.WithContext(ctx).Order("id").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("error querying contacts: %w", err)
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}

	return contacts, nil
}

func (d gormContactDao) Delete(ctx context.Context, id int) (model.Contact, error) {
	var contact model.Contact

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&contact, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return tx.Delete(&contact).Error
	})
	if err != nil {
		return model.Contact{}, err
	}

	return contact, nil
}
