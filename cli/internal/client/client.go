// Package client is a thin HTTP client for the controller service's
// capability façade.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/adam-platform/instrument-bridge/common/contract"
)

// ControllerClient talks to a controller's /v0.1 API.
type ControllerClient struct {
	baseURL string
	http    *http.Client
}

// NewControllerClient creates a client for the controller at baseURL.
func NewControllerClient(baseURL string) *ControllerClient {
	return &ControllerClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ListActions fetches the supported action names.
func (c *ControllerClient) ListActions() ([]string, error) {
	var out struct {
		ActionNames []string `json:"actionNames"`
	}
	if err := c.get("/v0.1/actions", &out); err != nil {
		return nil, err
	}
	return out.ActionNames, nil
}

// ListActivities fetches the supported activity names.
func (c *ControllerClient) ListActivities() ([]string, error) {
	var out struct {
		ActivityNames []string `json:"activityNames"`
	}
	if err := c.get("/v0.1/activities", &out); err != nil {
		return nil, err
	}
	return out.ActivityNames, nil
}

// PerformAction submits an action command.
func (c *ControllerClient) PerformAction(cmd contract.PerformActionCmd) (*contract.ActionReply, error) {
	var reply contract.ActionReply
	if err := c.post("/v0.1/actions/perform", cmd, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// StartActivity submits a start request.
func (c *ControllerClient) StartActivity(req contract.StartActivityRequest) (*contract.StartActivityReply, error) {
	var reply contract.StartActivityReply
	if err := c.post("/v0.1/activities/start", req, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// CancelActivity submits a cancel command.
func (c *ControllerClient) CancelActivity(cmd contract.CancelActivityCmd) (*contract.CancelReply, error) {
	var reply contract.CancelReply
	if err := c.post("/v0.1/activities/cancel", cmd, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ActivityStatus fetches the current status of an activity.
func (c *ControllerClient) ActivityStatus(activityID string) (*contract.ActivityStatusReply, error) {
	var reply contract.ActivityStatusReply
	if err := c.get(fmt.Sprintf("/v0.1/activities/%s/status", activityID), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// ActivityData fetches the data products of an activity.
func (c *ControllerClient) ActivityData(activityID string) (*contract.ActivityDataReply, error) {
	var reply contract.ActivityDataReply
	if err := c.get(fmt.Sprintf("/v0.1/activities/%s/data", activityID), &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func (c *ControllerClient) get(path string, out interface{}) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func (c *ControllerClient) post(path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func decode(resp *http.Response, out interface{}) error {
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (HTTP %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
