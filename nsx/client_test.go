package nsx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/nhc-net/nsg-sync/types"
)

func TestGetSecurityGroups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/nsx-security-groups/", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"_id": "sg-1", "name": "nsg-consumer-acme", "ipAddresses": [{"ip": "10.0.0.0/24"}]}]}`))
	}))
	defer server.Close()

	nsxClient := NewNsxClient(server.URL, "secret", logrus.New())
	groups, err := nsxClient.GetSecurityGroups(context.Background())

	assert.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, "sg-1", groups[0].ID)
	assert.Equal(t, "nsg-consumer-acme", groups[0].Name)
	assert.Equal(t, []types.IPAddressEntry{{IP: "10.0.0.0/24"}}, groups[0].IPAddresses)
}

func TestAddSecurityGroup(t *testing.T) {
	var received types.SecurityGroup
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/nsx-security-groups/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	nsxClient := NewNsxClient(server.URL, "secret", logrus.New())
	err := nsxClient.AddSecurityGroup(context.Background(), types.SecurityGroup{
		Name:        "nsg-consumer-acme",
		Description: "Managed by NAM",
		Scope:       "consumer",
		Tag:         "acme",
		IPAddresses: []types.IPAddressEntry{{IP: "10.0.0.0/24"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, "nsg-consumer-acme", received.Name)
	assert.Equal(t, "Managed by NAM", received.Description)
	assert.Equal(t, []types.IPAddressEntry{{IP: "10.0.0.0/24"}}, received.IPAddresses)
}

func TestPatchSecurityGroup(t *testing.T) {
	var received types.SecurityGroupPatch
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/nsx-security-groups/sg-1/", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	nsxClient := NewNsxClient(server.URL, "secret", logrus.New())
	err := nsxClient.PatchSecurityGroup(context.Background(), "sg-1", types.SecurityGroupPatch{
		IPAddresses: []types.IPAddressEntry{{IP: "10.0.0.0/24"}, {IP: "10.0.2.0/24"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, []types.IPAddressEntry{{IP: "10.0.0.0/24"}, {IP: "10.0.2.0/24"}}, received.IPAddresses)
}

func TestAddSecurityGroup_ErrorStatusWrapsUpstreamWrite(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	nsxClient := NewNsxClient(server.URL, "secret", logrus.New())
	err := nsxClient.AddSecurityGroup(context.Background(), types.SecurityGroup{Name: "nsg-consumer-acme"})

	assert.ErrorIs(t, err, types.ErrUpstreamWrite)
	assert.Contains(t, err.Error(), "503")
}

func TestGetSecurityGroups_ErrorStatusWrapsUpstreamFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	nsxClient := NewNsxClient(server.URL, "secret", logrus.New())
	groups, err := nsxClient.GetSecurityGroups(context.Background())

	assert.Nil(t, groups)
	assert.ErrorIs(t, err, types.ErrUpstreamFetch)
}
