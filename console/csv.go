package console

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dchest/uniuri"
	"github.com/dilshat/contacts-admin/model"
	"github.com/dilshat/contacts-admin/service/dto"
)

const (
	ColumnFirstName  = "First Name"
	ColumnMiddleName = "Middle Name"
	ColumnLastName   = "Last Name"
	ColumnEmail      = "E-mail 1 - Value"
	ColumnPhone      = "Phone 1 - Value"
	ColumnSector     = "Sector"
)

var ErrNoPhoneColumn = fmt.Errorf("CSV header has no %q column", ColumnPhone)

// Batch is a parsed CSV file. Contact ids are numbered 1..n within the batch
// and only identify rows locally; the store assigns the real ids.
type Batch struct {
	Token    string
	Contacts []model.Contact
}

func (b Batch) Payload() []dto.Contact {
	payload := make([]dto.Contact, 0, len(b.Contacts))
	for _, contact := range b.Contacts {
		payload = append(payload, dto.Contact{
			Name:   contact.Name,
			Phone:  contact.Phone,
			Email:  contact.Email,
			Sector: contact.Sector,
		})
	}
	return payload
}

// ParseCSV reads a contacts export with a header row.
func ParseCSV(r io.Reader) (Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Batch{}, ErrNoPhoneColumn
	}
	if err != nil {
		return Batch{}, fmt.Errorf("read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[strings.TrimSpace(name)] = i
	}
	if _, ok := columns[ColumnPhone]; !ok {
		return Batch{}, ErrNoPhoneColumn
	}

	field := func(record []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	batch := Batch{Token: uniuri.New()}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Batch{}, fmt.Errorf("read CSV row: %w", err)
		}

		var names []string
		for _, column := range []string{ColumnFirstName, ColumnMiddleName, ColumnLastName} {
			if name := field(record, column); name != "" {
				names = append(names, name)
			}
		}
		contact := model.Contact{
			Name:   strings.Join(names, " "),
			Phone:  field(record, ColumnPhone),
			Email:  field(record, ColumnEmail),
			Sector: field(record, ColumnSector),
		}
		if contact == (model.Contact{}) {
			continue
		}

		contact.Id = len(batch.Contacts) + 1
		batch.Contacts = append(batch.Contacts, contact)
	}

	return batch, nil
}
