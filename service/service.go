package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dilshat/contacts-admin/broadcast"
	"github.com/dilshat/contacts-admin/dao"
	"github.com/dilshat/contacts-admin/model"
	"github.com/dilshat/contacts-admin/service/dto"
	"github.com/dilshat/contacts-admin/util"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type InvalidPayloadErr struct {
	message string
}

func (e *InvalidPayloadErr) Error() string {
	return e.message
}

func NewInvalidPayloadError(msg string) *InvalidPayloadErr {
	return &InvalidPayloadErr{message: msg}
}

type NotFoundErr struct {
	message string
}

func (e *NotFoundErr) Error() string {
	return e.message
}

func NewNotFoundError(msg string) *NotFoundErr {
	return &NotFoundErr{message: msg}
}

// UnavailableErr reports a temporary condition; the caller may retry later.
type UnavailableErr struct {
	message string
}

func (e *UnavailableErr) Error() string {
	return e.message
}

func NewUnavailableError(msg string) *UnavailableErr {
	return &UnavailableErr{message: msg}
}

type Service interface {
	//CreateContacts validates the whole batch, then stores contacts with new phones and returns them
	CreateContacts(ctx context.Context, contacts []dto.Contact) ([]model.Contact, error)
	ListContacts(ctx context.Context) ([]model.Contact, error)
	DeleteContact(ctx context.Context, id int) (model.Contact, error)
	//SendBroadcast queues text for the phones of the selected contacts and sectors
	SendBroadcast(ctx context.Context, broadcast dto.Broadcast) (dto.BroadcastReceipt, error)
}

type service struct {
	contactDao dao.ContactDao
	sender     broadcast.Sender
	now        func() time.Time
}

func NewService(contactDao dao.ContactDao, sender broadcast.Sender) Service {
	return &service{
		contactDao: contactDao,
		sender:     sender,
		now:        time.Now,
	}
}

func (s service) CreateContacts(ctx context.Context, contacts []dto.Contact) ([]model.Contact, error) {
	validated := make([]model.Contact, 0, len(contacts))
	for _, contact := range contacts {
		phone := strings.TrimSpace(contact.Phone)
		if phone == "" {
			return nil, NewInvalidPayloadError("Phone number is required for all contacts")
		}
		validated = append(validated, model.Contact{
			Name:   contact.Name,
			Phone:  phone,
			Email:  contact.Email,
			Sector: model.SectorOrDefault(contact.Sector),
		})
	}

	if len(validated) == 0 {
		return []model.Contact{}, nil
	}

	created, err := s.contactDao.CreateMany(ctx, validated)
	if err != nil {
		return nil, err
	}

	if skipped := len(validated) - len(created); skipped > 0 {
		zap.L().Info("Skipped duplicate contacts", zap.Int("skipped", skipped), zap.Int("created", len(created)))
	}

	return created, nil
}

func (s service) ListContacts(ctx context.Context) ([]model.Contact, error) {
	return s.contactDao.GetAll(ctx)
}

func (s service) DeleteContact(ctx context.Context, id int) (model.Contact, error) {
	if id <= 0 {
		return model.Contact{}, NewInvalidPayloadError("Contact ID is required")
	}

	contact, err := s.contactDao.Delete(ctx, id)
	if errors.Is(err, dao.ErrNotFound) {
		return model.Contact{}, NewNotFoundError("Contact not found")
	}

	return contact, err
}

func (s service) SendBroadcast(ctx context.Context, request dto.Broadcast) (dto.BroadcastReceipt, error) {
	if util.IsBlank(request.Text) {
		return dto.BroadcastReceipt{}, NewInvalidPayloadError("Message text is required")
	}

	contacts, err := s.contactDao.GetAll(ctx)
	if err != nil {
		return dto.BroadcastReceipt{}, err
	}

	ids := make(map[int]bool)
	for _, id := range request.ContactIds {
		ids[id] = true
	}
	sectors := make(map[string]bool)
	for _, sector := range request.Sectors {
		sectors[sector] = true
	}

	//remove duplicates
	uniquePhones := make(map[string]bool)
	var phones []string
	for _, contact := range contacts {
		if !ids[contact.Id] && !sectors[contact.Sector] {
			continue
		}
		if uniquePhones[contact.Phone] {
			continue
		}
		uniquePhones[contact.Phone] = true
		phones = append(phones, contact.Phone)
	}

	if len(phones) == 0 {
		return dto.BroadcastReceipt{}, NewInvalidPayloadError("No recipients selected")
	}

	msg := model.Broadcast{
		Id:        uuid.NewString(),
		Text:      request.Text,
		Phones:    phones,
		CreatedAt: s.now(),
	}
	if request.ScheduleAt != nil {
		msg.ScheduleAt = *request.ScheduleAt
	}

	err = s.sender.Send(msg)
	switch {
	case errors.Is(err, broadcast.ErrQueueFull):
		return dto.BroadcastReceipt{}, NewUnavailableError("Broadcast queue is full, try again later")
	case err != nil:
		return dto.BroadcastReceipt{}, err
	}

	return dto.BroadcastReceipt{
		Id:         msg.Id,
		Recipients: len(phones),
		ScheduleAt: request.ScheduleAt,
	}, nil
}
