// ABOUTME: Contact operations against the GoHighLevel REST API
// ABOUTME: Create, update, search by email, custom field listing, and notes
package ghl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Contact is the remote CRM record. The CRM is the system of record; this
// client only reads and writes through its API.
type Contact struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	LocationID  string `json:"locationId,omitempty"`
}

// ContactRequest is the payload for create and update calls.
type ContactRequest struct {
	FirstName    string         `json:"firstName,omitempty"`
	LastName     string         `json:"lastName,omitempty"`
	Email        string         `json:"email,omitempty"`
	Phone        string         `json:"phone,omitempty"`
	CompanyName  string         `json:"companyName,omitempty"`
	LocationID   string         `json:"locationId,omitempty"`
	CustomFields map[string]any `json:"customFields,omitempty"`
}

// ContactResult wraps the provider's create/update response.
type ContactResult struct {
	Contact Contact `json:"contact"`
}

type searchResponse struct {
	Contacts []Contact `json:"contacts"`
}

// CustomField is a CRM-defined attribute definition.
type CustomField struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FieldKey string `json:"fieldKey"`
}

type customFieldsResponse struct {
	CustomFields []CustomField `json:"customFields"`
}

// Note is a timestamped text record attached to a contact.
type Note struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

type noteResult struct {
	Note Note `json:"note"`
}

// CreateContact creates a contact in the given location.
func (c *Client) CreateContact(ctx context.Context, locationID string, req ContactRequest) (*ContactResult, error) {
	req.LocationID = locationID

	var result ContactResult
	if err := c.doJSON(ctx, http.MethodPost, "/contacts/", req, &result, "create contact"); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateContact updates an existing contact by CRM id.
func (c *Client) UpdateContact(ctx context.Context, contactID string, req ContactRequest) (*ContactResult, error) {
	// The update endpoint rejects locationId in the body
	req.LocationID = ""

	var result ContactResult
	if err := c.doJSON(ctx, http.MethodPut, "/contacts/"+contactID, req, &result, "update contact"); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchContactByEmail looks up a contact by email. Returns (nil, nil)
// when nothing matches; the first match wins when the CRM returns several.
func (c *Client) SearchContactByEmail(ctx context.Context, locationID, email string) (*Contact, error) {
	query := url.Values{}
	query.Set("locationId", locationID)
	query.Set("query", email)

	var result searchResponse
	if err := c.doJSON(ctx, http.MethodGet, "/contacts/?"+query.Encode(), nil, &result, "search contacts"); err != nil {
		return nil, err
	}

	if len(result.Contacts) == 0 {
		return nil, nil
	}
	return &result.Contacts[0], nil
}

// GetCustomFields lists the custom field definitions for a location.
func (c *Client) GetCustomFields(ctx context.Context, locationID string) ([]CustomField, error) {
	var result customFieldsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/locations/"+locationID+"/customFields", nil, &result, "get custom fields"); err != nil {
		return nil, err
	}
	return result.CustomFields, nil
}

// AddNote attaches a text note to a contact.
func (c *Client) AddNote(ctx context.Context, contactID, body string) (*Note, error) {
	payload := map[string]string{"body": body}

	var result noteResult
	if err := c.doJSON(ctx, http.MethodPost, "/contacts/"+contactID+"/notes", payload, &result, "add note"); err != nil {
		return nil, err
	}
	return &result.Note, nil
}

// doJSON issues a request with an optional JSON body and decodes the JSON
// response. Non-2xx responses become errors carrying the provider status.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out any, action string) error {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", action, err)
		}
		body = encoded
	}

	resp, err := c.Request(ctx, method, endpoint, body, nil)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to %s: %s", action, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", action, err)
		}
	}
	return nil
}
