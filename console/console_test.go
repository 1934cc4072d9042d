package console

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dilshat/contacts-admin/model"
	"github.com/dilshat/contacts-admin/service/dto"
	"github.com/stretchr/testify/require"
)

// fakeAPI keeps contacts in memory and skips stored phones like the service does.
type fakeAPI struct {
	contacts   []model.Contact
	nextId     int
	err        error
	creates    int
	broadcasts []dto.Broadcast
}

func newFakeAPI(contacts ...model.Contact) *fakeAPI {
	api := &fakeAPI{nextId: 100}
	api.contacts = append(api.contacts, contacts...)
	return api
}

func (f *fakeAPI) List(_ context.Context) ([]model.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Contact(nil), f.contacts...), nil
}

func (f *fakeAPI) Create(_ context.Context, contacts []dto.Contact) ([]model.Contact, error) {
	f.creates++
	if f.err != nil {
		return nil, f.err
	}
	created := []model.Contact{}
	for _, contact := range contacts {
		if contact.Phone == "" {
			return nil, &APIError{Status: 400, Message: "Phone number is required for all contacts"}
		}
	}
	for _, contact := range contacts {
		if f.hasPhone(contact.Phone) {
			continue
		}
		f.nextId++
		stored := model.Contact{Id: f.nextId, Name: contact.Name, Phone: contact.Phone, Email: contact.Email, Sector: model.SectorOrDefault(contact.Sector)}
		f.contacts = append(f.contacts, stored)
		created = append(created, stored)
	}
	return created, nil
}

func (f *fakeAPI) hasPhone(phone string) bool {
	for _, contact := range f.contacts {
		if contact.Phone == phone {
			return true
		}
	}
	return false
}

func (f *fakeAPI) Delete(_ context.Context, id int) (model.Contact, error) {
	if f.err != nil {
		return model.Contact{}, f.err
	}
	for i, contact := range f.contacts {
		if contact.Id == id {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return contact, nil
		}
	}
	return model.Contact{}, &APIError{Status: 404, Message: "Contact not found"}
}

func (f *fakeAPI) Broadcast(_ context.Context, request dto.Broadcast) (dto.BroadcastReceipt, error) {
	if f.err != nil {
		return dto.BroadcastReceipt{}, f.err
	}
	f.broadcasts = append(f.broadcasts, request)
	return dto.BroadcastReceipt{Id: "b1", Recipients: len(request.ContactIds), ScheduleAt: request.ScheduleAt}, nil
}

func loadedConsole(t *testing.T, api *fakeAPI) *Console {
	c := NewConsole(api)
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestConsoleLoad(t *testing.T) {
	c := loadedConsole(t, newFakeAPI(ana, bruno))

	require.Equal(t, []model.Contact{ana, bruno}, c.State().Contacts())
	require.Empty(t, c.Status())
}

func TestConsoleLoadError(t *testing.T) {
	api := newFakeAPI(ana)
	api.err = errors.New("connection refused")
	c := NewConsole(api)

	err := c.Load(context.Background())

	require.Error(t, err)
	require.Equal(t, "Error fetching contacts: connection refused", c.Status())
	require.Empty(t, c.State().Contacts())
}

func TestConsoleAdd(t *testing.T) {
	c := loadedConsole(t, newFakeAPI(ana))

	created, err := c.Add(context.Background(), dto.Contact{Name: "New", Phone: "111"})

	require.NoError(t, err)
	require.Equal(t, model.Contact{Id: 101, Name: "New", Phone: "111", Sector: model.DefaultSector}, created)
	require.Equal(t, []model.Contact{ana, created}, c.State().Contacts())
	require.Equal(t, "Contact added", c.Status())
}

func TestConsoleAddDuplicateSkipsRequest(t *testing.T) {
	api := newFakeAPI(ana)
	c := loadedConsole(t, api)

	_, err := c.Add(context.Background(), dto.Contact{Phone: ana.Phone})
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = c.Add(context.Background(), dto.Contact{Phone: "111", Email: ana.Email})
	require.ErrorIs(t, err, ErrDuplicate)

	require.Equal(t, 0, api.creates)
	require.Equal(t, ErrDuplicate.Error(), c.Status())
}

func TestConsoleAddStaleList(t *testing.T) {
	api := newFakeAPI()
	c := loadedConsole(t, api)
	api.contacts = append(api.contacts, ana)

	_, err := c.Add(context.Background(), dto.Contact{Phone: ana.Phone})

	require.ErrorIs(t, err, ErrDuplicate)
	require.Equal(t, 1, api.creates)
	require.Empty(t, c.State().Contacts())
}

func TestConsoleAddRequiresPhone(t *testing.T) {
	api := newFakeAPI()
	c := loadedConsole(t, api)

	_, err := c.Add(context.Background(), dto.Contact{Name: "A", Phone: "  "})

	require.Error(t, err)
	require.Equal(t, 0, api.creates)
}

func TestConsoleImport(t *testing.T) {
	api := newFakeAPI(model.Contact{Id: 1, Phone: "5511987654321", Sector: "Vendas"})
	c := loadedConsole(t, api)

	created, err := c.Import(context.Background(), strings.NewReader(exportCSV))

	require.NoError(t, err)
	require.Equal(t, 2, created)
	require.Equal(t, "Imported 2 of 3 contacts", c.Status())

	contacts := c.State().Contacts()
	require.Len(t, contacts, 3)
	require.Equal(t, []int{1, 101, 102}, []int{contacts[0].Id, contacts[1].Id, contacts[2].Id})
}

func TestConsoleImportBadFile(t *testing.T) {
	api := newFakeAPI()
	c := loadedConsole(t, api)

	_, err := c.Import(context.Background(), strings.NewReader("Name\nA\n"))

	require.ErrorIs(t, err, ErrNoPhoneColumn)
	require.Equal(t, 0, api.creates)
	require.True(t, strings.HasPrefix(c.Status(), "Error reading CSV"))
}

func TestConsoleImportRejected(t *testing.T) {
	api := newFakeAPI()
	c := loadedConsole(t, api)

	_, err := c.Import(context.Background(), strings.NewReader("First Name,Phone 1 - Value\nA,111\nB,\n"))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 400, apiErr.Status)
	require.Empty(t, c.State().Contacts())
}

func TestConsoleDelete(t *testing.T) {
	c := loadedConsole(t, newFakeAPI(ana, bruno))
	c.Update(func(s State) State { return s.SelectContact(ana.Id, true) })

	deleted, err := c.Delete(context.Background(), ana.Id)

	require.NoError(t, err)
	require.Equal(t, ana, deleted)
	require.Equal(t, []model.Contact{bruno}, c.State().Contacts())
	require.Empty(t, c.State().Selected())
	require.Equal(t, "Contact deleted", c.Status())
}

func TestConsoleDeleteFailureKeepsState(t *testing.T) {
	c := loadedConsole(t, newFakeAPI(ana))

	_, err := c.Delete(context.Background(), 42)

	require.Error(t, err)
	require.Equal(t, []model.Contact{ana}, c.State().Contacts())
	require.Equal(t, "Error deleting contact: 404: Contact not found", c.Status())
}

func TestConsoleBroadcast(t *testing.T) {
	api := newFakeAPI(sample...)
	c := loadedConsole(t, api)
	c.Update(func(s State) State { return s.SelectSector("Vendas", true) })
	at := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	receipt, err := c.Broadcast(context.Background(), "hello", &at)

	require.NoError(t, err)
	require.Equal(t, 2, receipt.Recipients)
	require.Equal(t, []dto.Broadcast{{Text: "hello", ContactIds: []int{ana.Id, carla.Id}, ScheduleAt: &at}}, api.broadcasts)
	require.Equal(t, "Broadcast b1 queued for 2 recipients", c.Status())
}
