package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dilshat/contacts-admin/model"
	"github.com/dilshat/contacts-admin/service/dto"
	"go.uber.org/zap"
)

var ErrDuplicate = errors.New("Contact with this phone or e-mail already exists")

// API is the part of the contact service the console depends on.
type API interface {
	List(ctx context.Context) ([]model.Contact, error)
	Create(ctx context.Context, contacts []dto.Contact) ([]model.Contact, error)
	Delete(ctx context.Context, id int) (model.Contact, error)
	Broadcast(ctx context.Context, request dto.Broadcast) (dto.BroadcastReceipt, error)
}

// Console keeps the fetched contacts and view state between user actions.
// It is not safe for concurrent use.
type Console struct {
	api    API
	state  State
	status string
}

func NewConsole(api API) *Console {
	return &Console{api: api, state: NewState(nil)}
}

func (c *Console) State() State {
	return c.state
}

// Update replaces the view state with fn applied to it.
func (c *Console) Update(fn func(State) State) {
	c.state = fn(c.state)
}

// Status is the outcome of the last network action.
func (c *Console) Status() string {
	return c.status
}

func (c *Console) fail(action string, err error) error {
	c.status = fmt.Sprintf("%s: %v", action, err)
	zap.L().Warn(action, zap.Error(err))
	return err
}

// Load fetches every contact, keeping search, pagination and selection.
func (c *Console) Load(ctx context.Context) error {
	contacts, err := c.api.List(ctx)
	if err != nil {
		return c.fail("Error fetching contacts", err)
	}
	c.state = c.state.Replace(contacts)
	return nil
}

// Add stores a single contact unless one with the same phone or email is already loaded.
func (c *Console) Add(ctx context.Context, contact dto.Contact) (model.Contact, error) {
	if strings.TrimSpace(contact.Phone) == "" {
		return model.Contact{}, c.fail("Error adding contact", errors.New("Phone number is required"))
	}

	candidate := model.Contact{Phone: strings.TrimSpace(contact.Phone), Email: contact.Email}
	if c.state.Duplicate(candidate) {
		c.status = ErrDuplicate.Error()
		return model.Contact{}, ErrDuplicate
	}

	created, err := c.api.Create(ctx, []dto.Contact{contact})
	if err != nil {
		return model.Contact{}, c.fail("Error adding contact", err)
	}
	if len(created) == 0 {
		c.status = ErrDuplicate.Error()
		return model.Contact{}, ErrDuplicate
	}

	c.state = c.state.Add(created...)
	c.status = "Contact added"
	return created[0], nil
}

// Import posts every contact of a CSV file in one request and reloads the list.
// It returns how many contacts the service stored.
func (c *Console) Import(ctx context.Context, r io.Reader) (int, error) {
	batch, err := ParseCSV(r)
	if err != nil {
		return 0, c.fail("Error reading CSV", err)
	}

	created, err := c.api.Create(ctx, batch.Payload())
	if err != nil {
		return 0, c.fail("Error importing contacts", err)
	}
	zap.L().Info("Contacts imported",
		zap.String("batch", batch.Token),
		zap.Int("rows", len(batch.Contacts)),
		zap.Int("created", len(created)))

	if err := c.Load(ctx); err != nil {
		return len(created), err
	}

	c.status = fmt.Sprintf("Imported %d of %d contacts", len(created), len(batch.Contacts))
	return len(created), nil
}

// Delete removes the contact from the service and, once confirmed, from the view.
func (c *Console) Delete(ctx context.Context, id int) (model.Contact, error) {
	deleted, err := c.api.Delete(ctx, id)
	if err != nil {
		return model.Contact{}, c.fail("Error deleting contact", err)
	}

	c.state = c.state.Remove(id)
	c.status = "Contact deleted"
	return deleted, nil
}

// Broadcast sends text to the selected contacts, at scheduleAt when it is not nil.
func (c *Console) Broadcast(ctx context.Context, text string, scheduleAt *time.Time) (dto.BroadcastReceipt, error) {
	var ids []int
	for _, contact := range c.state.Selected() {
		ids = append(ids, contact.Id)
	}

	receipt, err := c.api.Broadcast(ctx, dto.Broadcast{Text: text, ContactIds: ids, ScheduleAt: scheduleAt})
	if err != nil {
		return dto.BroadcastReceipt{}, c.fail("Error sending broadcast", err)
	}

	c.status = fmt.Sprintf("Broadcast %s queued for %d recipients", receipt.Id, receipt.Recipients)
	return receipt, nil
}
