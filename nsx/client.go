package nsx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhc-net/nsg-sync/types"
)

type INsxClient interface {
	GetSecurityGroups(ctx context.Context) ([]types.SecurityGroup, error)
	AddSecurityGroup(ctx context.Context, group types.SecurityGroup) error
	PatchSecurityGroup(ctx context.Context, id string, patch types.SecurityGroupPatch) error
	Hostname() string
}

type NsxClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

func NewNsxClient(baseURL string, token string, logger *logrus.Logger) *NsxClient {
	return &NsxClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	}
}

func (nsxClient *NsxClient) Hostname() string {
	parsed, err := url.Parse(nsxClient.BaseURL)
	if err != nil {
		return nsxClient.BaseURL
	}
	return parsed.Host
}

type securityGroupList struct {
	Results []types.SecurityGroup `json:"results"`
}

func (nsxClient *NsxClient) GetSecurityGroups(ctx context.Context) ([]types.SecurityGroup, error) {
	req, err := nsxClient.newRequest(ctx, http.MethodGet, "/api/v1/nsx-security-groups/", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstreamFetch, err)
	}

	nsxClient.Logger.Debugf("GET %s", req.URL)
	resp, err := nsxClient.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: listing security groups: %v", types.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: listing security groups returned %d: %s", types.ErrUpstreamFetch, resp.StatusCode, readBody(resp))
	}

	payload := securityGroupList{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding security group list: %v", types.ErrUpstreamFetch, err)
	}
	return payload.Results, nil
}

func (nsxClient *NsxClient) AddSecurityGroup(ctx context.Context, group types.SecurityGroup) error {
	req, err := nsxClient.newRequest(ctx, http.MethodPost, "/api/v1/nsx-security-groups/", group)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrUpstreamWrite, err)
	}

	nsxClient.Logger.Debugf("POST %s", req.URL)
	resp, err := nsxClient.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: creating security group %s: %v", types.ErrUpstreamWrite, group.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: creating security group %s returned %d: %s", types.ErrUpstreamWrite, group.Name, resp.StatusCode, readBody(resp))
	}
	return nil
}

func (nsxClient *NsxClient) PatchSecurityGroup(ctx context.Context, id string, patch types.SecurityGroupPatch) error {
	req, err := nsxClient.newRequest(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/nsx-security-groups/%s/", id), patch)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrUpstreamWrite, err)
	}

	nsxClient.Logger.Debugf("PATCH %s", req.URL)
	resp, err := nsxClient.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: patching security group %s: %v", types.ErrUpstreamWrite, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("%w: patching security group %s returned %d: %s", types.ErrUpstreamWrite, id, resp.StatusCode, readBody(resp))
	}
	return nil
}

func (nsxClient *NsxClient) newRequest(ctx context.Context, method string, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %v", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, nsxClient.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %v", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+nsxClient.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func readBody(resp *http.Response) string {
	body, _ := io.ReadAll(resp.Body)
	return strings.TrimSpace(string(body))
}
