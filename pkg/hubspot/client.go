package hubspot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Property describes one property definition from the live HubSpot schema.
type Property struct {
	Name                 string `json:"name"`
	Label                string `json:"label"`
	Type                 string `json:"type"` // string, number, enumeration, datetime, bool
	FieldType            string `json:"fieldType"`
	Calculated           bool   `json:"calculated"`
	ModificationMetadata struct {
		ReadOnlyValue bool `json:"readOnlyValue"`
	} `json:"modificationMetadata"`
	Options []PropertyOption `json:"options"`
}

type PropertyOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type propertiesResponse struct {
	Results []Property `json:"results"`
}

type objectResponse struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type errorResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

// ConflictError is returned when HubSpot reports the entity already exists.
// The message carries the existing record id, e.g.
// "Contact already exists. Existing ID: 12345".
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("hubspot conflict: %s", e.Message)
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(method, path string, payload interface{}) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func (c *Client) checkStatus(status int, body []byte, context string) error {
	if status >= 200 && status < 300 {
		return nil
	}

	var errResp errorResponse
	message := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		message = errResp.Message
	}

	if status == http.StatusConflict {
		return &ConflictError{Message: message}
	}

	return fmt.Errorf("hubspot %s failed with status %d: %s", context, status, message)
}

// FetchProperties returns the live property schema for an object type
// ("contacts" or "deals").
func (c *Client) FetchProperties(objectType string) ([]Property, error) {
	status, body, err := c.do("GET", "/crm/v3/properties/"+objectType, nil)
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(status, body, "fetch properties"); err != nil {
		return nil, err
	}

	var resp propertiesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse properties response: %w", err)
	}
	return resp.Results, nil
}

func (c *Client) createObject(objectType string, properties map[string]string) (string, error) {
	payload := map[string]interface{}{"properties": properties}
	status, body, err := c.do("POST", "/crm/v3/objects/"+objectType, payload)
	if err != nil {
		return "", err
	}
	if err := c.checkStatus(status, body, "create "+objectType); err != nil {
		return "", err
	}

	var resp objectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse create response: %w", err)
	}
	return resp.ID, nil
}

func (c *Client) updateObject(objectType, id string, properties map[string]string) error {
	payload := map[string]interface{}{"properties": properties}
	status, body, err := c.do("PATCH", "/crm/v3/objects/"+objectType+"/"+id, payload)
	if err != nil {
		return err
	}
	return c.checkStatus(status, body, "update "+objectType)
}

func (c *Client) CreateContact(properties map[string]string) (string, error) {
	return c.createObject("contacts", properties)
}

func (c *Client) UpdateContact(id string, properties map[string]string) error {
	return c.updateObject("contacts", id, properties)
}

func (c *Client) CreateDeal(properties map[string]string) (string, error) {
	return c.createObject("deals", properties)
}

func (c *Client) UpdateDeal(id string, properties map[string]string) error {
	return c.updateObject("deals", id, properties)
}

// AssociateDealWithContact links a deal to a contact using the default
// deal_to_contact association type.
func (c *Client) AssociateDealWithContact(dealID, contactID string) error {
	path := fmt.Sprintf("/crm/v3/objects/deals/%s/associations/contacts/%s/deal_to_contact", dealID, contactID)
	status, body, err := c.do("PUT", path, nil)
	if err != nil {
		return err
	}
	return c.checkStatus(status, body, "associate deal")
}
