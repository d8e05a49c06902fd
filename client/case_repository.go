package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/Aashish23092/case-intake/dto"
)

// Structured remote failures. Not-found is distinguished from server errors so
// the workflow can tell a bad case id from a retryable outage.
var (
	ErrCaseNotFound      = errors.New("case not found")
	ErrApplicantNotFound = errors.New("applicant not found")
)

// CaseRepositoryClient talks to the remote case repository.
type CaseRepositoryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCaseRepositoryClient(baseURL string, timeout time.Duration) *CaseRepositoryClient {
	return &CaseRepositoryClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchCase loads case data by case identifier.
func (c *CaseRepositoryClient) FetchCase(ctx context.Context, caseID string) (*dto.CaseData, error) {
	var data dto.CaseData
	if err := c.get(ctx, "/api/v1/cases/"+url.PathEscape(caseID), ErrCaseNotFound, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// FetchApplicant loads applicant data by client identifier.
func (c *CaseRepositoryClient) FetchApplicant(ctx context.Context, clientID string) (*dto.ApplicantData, error) {
	var data dto.ApplicantData
	if err := c.get(ctx, "/api/v1/applicants/"+url.PathEscape(clientID), ErrApplicantNotFound, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// CreateApplication persists a finished record and settles payment.
func (c *CaseRepositoryClient) CreateApplication(ctx context.Context, record *dto.ApplicationRecord) (*dto.SubmissionResponse, error) {
	var resp dto.SubmissionResponse
	if err := c.send(ctx, http.MethodPost, "/api/v1/applications", record, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateApplication saves an edited record over an existing case.
func (c *CaseRepositoryClient) UpdateApplication(ctx context.Context, caseID string, record *dto.ApplicationRecord) (*dto.ApplicationRecord, error) {
	var resp dto.ApplicationRecord
	if err := c.send(ctx, http.MethodPut, "/api/v1/cases/"+url.PathEscape(caseID), record, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *CaseRepositoryClient) get(ctx context.Context, path string, notFound error, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("case repository request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return notFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("case repository returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *CaseRepositoryClient) send(ctx context.Context, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("case repository request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("Case repository %s %s returned status %d", method, path, resp.StatusCode)
		return fmt.Errorf("case repository returned status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
