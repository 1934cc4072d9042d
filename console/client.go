package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dilshat/contacts-admin/model"
	"github.com/dilshat/contacts-admin/service/dto"
)

const contactPath = "/api/contact"

// APIError is a non-2xx answer from the contact service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Client talks to the contact service HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for baseURL. A nil httpClient gets a 10 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) List(ctx context.Context) ([]model.Contact, error) {
	var contacts []model.Contact
	err := c.do(ctx, http.MethodGet, contactPath, nil, &contacts)
	return contacts, err
}

func (c *Client) Create(ctx context.Context, contacts []dto.Contact) ([]model.Contact, error) {
	var created []model.Contact
	err := c.do(ctx, http.MethodPost, contactPath, dto.ContactBatch{Contacts: contacts}, &created)
	return created, err
}

func (c *Client) Delete(ctx context.Context, id int) (model.Contact, error) {
	var deleted model.Contact
	err := c.do(ctx, http.MethodDelete, contactPath, dto.Id{Id: id}, &deleted)
	return deleted, err
}

func (c *Client) Broadcast(ctx context.Context, request dto.Broadcast) (dto.BroadcastReceipt, error) {
	var receipt dto.BroadcastReceipt
	err := c.do(ctx, http.MethodPost, "/api/broadcast", request, &receipt)
	return receipt, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func newAPIError(status int, raw []byte) *APIError {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &body)

	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}
