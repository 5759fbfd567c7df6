package netbox

import (
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

type INetboxClient interface {
	GetCustomFields(ctx context.Context) ([]types.CustomField, error)
	GetCustomFieldChoiceSet(ctx context.Context, id int) (*types.ChoiceSet, error)
	GetPrefixes(ctx context.Context, filterField string, key string) ([]types.Prefix, error)
	Hostname() string
}

type NetboxClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

func NewNetboxClient(baseURL string, token string, logger *logrus.Logger) *NetboxClient {
	return &NetboxClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	}
}

func (netboxClient *NetboxClient) Hostname() string {
	parsed, err := url.Parse(netboxClient.BaseURL)
	if err != nil {
		return netboxClient.BaseURL
	}
	return parsed.Host
}

type customFieldList struct {
	Results []types.CustomField `json:"results"`
}

func (netboxClient *NetboxClient) GetCustomFields(ctx context.Context) ([]types.CustomField, error) {
	payload := customFieldList{}
	if err := netboxClient.get(ctx, "/api/extras/custom-fields/", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func (netboxClient *NetboxClient) GetCustomFieldChoiceSet(ctx context.Context, id int) (*types.ChoiceSet, error) {
	payload := types.ChoiceSet{}
	if err := netboxClient.get(ctx, fmt.Sprintf("/api/extras/custom-field-choice-sets/%d/", id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

type prefixList struct {
	Results []types.Prefix `json:"results"`
}

func (netboxClient *NetboxClient) GetPrefixes(ctx context.Context, filterField string, key string) ([]types.Prefix, error) {
	// brief=false so VRF and status come back expanded, not as ids. The
	// prefix API cannot combine a custom-field filter with VRF/status
	// server-side, so eligibility filtering happens in the reconciler.
	query := url.Values{}
	query.Set(filterField, key)
	query.Set("brief", "false")

	payload := prefixList{}
	if err := netboxClient.get(ctx, "/api/ipam/prefixes/", query, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

func (netboxClient *NetboxClient) get(ctx context.Context, path string, query url.Values, out any) error {
	requestURL := netboxClient.BaseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("%w: building request for %s: %v", types.ErrUpstreamFetch, path, err)
	}
	req.Header.Set("Authorization", "Token "+netboxClient.Token)
	req.Header.Set("Accept", "application/json")

	netboxClient.Logger.Debugf("GET %s", requestURL)
	resp, err := netboxClient.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", types.ErrUpstreamFetch, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: GET %s returned %d: %s", types.ErrUpstreamFetch, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", types.ErrUpstreamFetch, path, err)
	}
	return nil
}
