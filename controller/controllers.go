package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dilshat/contacts-admin/service"
	"github.com/dilshat/contacts-admin/service/dto"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var (
	errInvalidBody      = errors.New("Invalid JSON body")
	errContactsRequired = errors.New("Contacts are required")
)

// CreateContacts godoc
// @Summary Create contacts
// @Description Stores contacts in bulk. Accepts {"contacts": [...]} or a bare array.
// @Description Contacts whose phone is already stored are skipped and not returned.
// @Accept json
// @Produce json
// @Param contacts body dto.ContactBatch true "Contacts"
// @Success 200 {array} model.Contact
// @Failure 400 {object} dto.Error
// @Failure 500 {object} dto.Error
// @Router /api/contact [post]
func GetCreateContactsFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		contacts, err := decodeContacts(c.Request().Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		}

		created, err := srv.CreateContacts(c.Request().Context(), contacts)
		if err != nil {
			switch err.(type) {
			case *service.InvalidPayloadErr:
				return c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
			default:
				zap.L().Error("Error saving contacts", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, dto.Error{Error: "Error saving contacts"})
			}
		}

		return c.JSON(http.StatusOK, created)
	}
}

// ListContacts godoc
// @Summary List contacts
// @Description Returns every stored contact
// @Produce json
// @Success 200 {array} model.Contact
// @Failure 500 {object} dto.Error
// @Router /api/contact [get]
func GetListContactsFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		contacts, err := srv.ListContacts(c.Request().Context())
		if err != nil {
			zap.L().Error("Error fetching contacts", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, dto.Error{Error: "Error fetching contacts"})
		}

		return c.JSON(http.StatusOK, contacts)
	}
}

// DeleteContact godoc
// @Summary Delete contact
// @Description Deletes the contact with the given id and returns it. The id may also be passed as a query parameter.
// @Accept json
// @Produce json
// @Param id body dto.Id true "Contact id"
// @Success 200 {object} model.Contact
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Failure 500 {object} dto.Error
// @Router /api/contact [delete]
func GetDeleteContactFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := contactId(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		}

		contact, err := srv.DeleteContact(c.Request().Context(), id)
		if err != nil {
			switch err.(type) {
			case *service.InvalidPayloadErr:
				return c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
			case *service.NotFoundErr:
				return c.JSON(http.StatusNotFound, dto.Error{Error: err.Error()})
			default:
				zap.L().Error("Error deleting contact", zap.Int("id", id), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, dto.Error{Error: "Error deleting contact"})
			}
		}

		return c.JSON(http.StatusOK, contact)
	}
}

func MethodNotAllowed(c echo.Context) error {
	return c.JSON(http.StatusMethodNotAllowed, dto.Message{Message: "Method Not Allowed"})
}

// SendBroadcast godoc
// @Summary Send broadcast
// @Description Queues a message for the selected contacts and sectors, optionally scheduled
// @Accept json
// @Produce json
// @Param broadcast body dto.Broadcast true "Broadcast"
// @Success 202 {object} dto.BroadcastReceipt
// @Failure 400 {object} dto.Error
// @Failure 500 {object} dto.Error
// @Failure 503 {object} dto.Error
// @Router /api/broadcast [post]
func GetSendBroadcastFunc(srv service.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(dto.Broadcast)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.Error{Error: errInvalidBody.Error()})
		}
		if err := c.Validate(req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
		}

		receipt, err := srv.SendBroadcast(c.Request().Context(), *req)
		if err != nil {
			switch err.(type) {
			case *service.InvalidPayloadErr:
				return c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error()})
			case *service.UnavailableErr:
				return c.JSON(http.StatusServiceUnavailable, dto.Error{Error: err.Error()})
			default:
				zap.L().Error("Error sending broadcast", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, dto.Error{Error: "Error sending broadcast"})
			}
		}

		return c.JSON(http.StatusAccepted, receipt)
	}
}

// Health godoc
// @Summary Liveness probe
// @Produce json
// @Success 200 "ok"
// @Router /health [get]
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func decodeContacts(body io.Reader) ([]dto.Contact, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, errInvalidBody
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var contacts []dto.Contact
		if err := json.Unmarshal(raw, &contacts); err != nil {
			return nil, errInvalidBody
		}
		return contacts, nil
	}

	var batch dto.ContactBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, errInvalidBody
	}
	if batch.Contacts == nil {
		return nil, errContactsRequired
	}

	return batch.Contacts, nil
}

// contactId reads the id from the JSON body, falling back to the id query parameter.
// The body id may be a number or a numeric string. A missing id is returned as 0
// and rejected by the service.
func contactId(c echo.Context) (int, error) {
	var body struct {
		Id json.Number `json:"id"`
	}

	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return 0, errInvalidBody
	}
	if raw = bytes.TrimSpace(raw); len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return 0, errInvalidBody
		}
	}

	param := body.Id.String()
	if param == "" || param == "0" {
		param = c.QueryParam("id")
	}
	if param == "" {
		return 0, nil
	}

	id, err := strconv.Atoi(param)
	if err != nil {
		return 0, errors.New("Invalid contact id " + param)
	}
	return id, nil
}
