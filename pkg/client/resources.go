package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// ----- projects -----

func (c *Client) ListProjects(ctx context.Context, page, limit int) (ProjectList, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}

	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	path := "/projects"
	if len(q) != 0 {
		path += "?" + q.Encode()
	}

	var resp ProjectList
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return ProjectList{}, err
	}

	return resp, nil
}

func (c *Client) GetProject(ctx context.Context, id int64) (Project, error) {
	var p Project
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, &p); err != nil {
		return Project{}, err
	}

	return p, nil
}

func (c *Client) CreateProject(ctx context.Context, name, location string) (Project, error) {
	body := map[string]string{"name": name, "location": location}

	var resp struct {
		Project Project `json:"project"`
	}

	if err := c.do(ctx, http.MethodPost, "/projects", body, &resp); err != nil {
		return Project{}, err
	}

	return resp.Project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id int64, name, location *string) (Project, error) {
	body := map[string]*string{"name": name, "location": location}

	var resp struct {
		Project Project `json:"project"`
	}

	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/projects/%d", id), body, &resp); err != nil {
		return Project{}, err
	}

	return resp.Project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, nil)
}

// ----- incidents -----

func (c *Client) ListIncidents(ctx context.Context, filter IncidentFilter) ([]Incident, error) {
	q := url.Values{}
	if filter.ProjectID > 0 {
		q.Set("project_id", strconv.FormatInt(filter.ProjectID, 10))
	}

	if filter.Severity != "" {
		q.Set("severity", filter.Severity)
	}

	if filter.Status != "" {
		q.Set("status", filter.Status)
	}

	path := "/incidents"
	if len(q) != 0 {
		path += "?" + q.Encode()
	}

	incidents := make([]Incident, 0)
	if err := c.do(ctx, http.MethodGet, path, nil, &incidents); err != nil {
		return nil, err
	}

	return incidents, nil
}

func (c *Client) GetIncident(ctx context.Context, id int64) (IncidentDetails, error) {
	var details IncidentDetails
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/incidents/%d", id), nil, &details); err != nil {
		return IncidentDetails{}, err
	}

	return details, nil
}

func (c *Client) CreateIncident(ctx context.Context, req CreateIncidentRequest) (int64, error) {
	var resp struct {
		IncidentID int64 `json:"incident_id"` //nolint:tagliatelle
	}

	if err := c.do(ctx, http.MethodPost, "/incidents", req, &resp); err != nil {
		return 0, err
	}

	return resp.IncidentID, nil
}

func (c *Client) UpdateIncident(ctx context.Context, id int64, req UpdateIncidentRequest) (Incident, error) {
	var resp struct {
		Incident Incident `json:"incident"`
	}

	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/incidents/%d", id), req, &resp); err != nil {
		return Incident{}, err
	}

	return resp.Incident, nil
}

func (c *Client) DeleteIncident(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/incidents/%d", id), nil, nil)
}

// Upload is one file for AddAttachments. Content is held in memory so the
// request can be rebuilt for the post-refresh replay.
type Upload struct {
	Name    string
	Content []byte
}

func (c *Client) AddAttachments(ctx context.Context, incidentID int64, files []Upload) (int, error) {
	path := fmt.Sprintf("/incidents/%d/attachment", incidentID)

	access, refresh := c.store.Tokens()

	uploaded, err := c.sendAttachments(ctx, path, files, access)
	if err == nil || refresh == "" {
		return uploaded, err
	}

	var apiErr APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return 0, err
	}

	token, err := c.rf.do(func() (string, error) { return c.refreshTokens(ctx) })
	if err != nil {
		return 0, err
	}

	return c.sendAttachments(ctx, path, files, token)
}

func (c *Client) sendAttachments(ctx context.Context, path string, files []Upload, access string) (int, error) {
	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	for _, f := range files {
		fw, err := mw.CreateFormFile("image", f.Name)
		if err != nil {
			return 0, fmt.Errorf("create form file error: %w", err)
		}

		if _, err := fw.Write(f.Content); err != nil {
			return 0, fmt.Errorf("write form file error: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("close multipart writer error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return 0, fmt.Errorf("build request error: %w", err)
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())

	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return 0, decodeAPIError(resp)
	}

	var m struct {
		Uploaded int `json:"uploaded"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return 0, fmt.Errorf("decode response error: %w", err)
	}

	return m.Uploaded, nil
}
