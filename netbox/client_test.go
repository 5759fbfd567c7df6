package netbox

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/nhc-net/nsg-sync/types"
)

func TestGetCustomFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/extras/custom-fields/", r.URL.Path)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"id": 1, "name": "domain", "choice_set": {"id": 10}}, {"id": 2, "name": "env", "choice_set": {"id": 20}}]}`))
	}))
	defer server.Close()

	netboxClient := NewNetboxClient(server.URL, "secret", logrus.New())
	fields, err := netboxClient.GetCustomFields(context.Background())

	assert.NoError(t, err)
	assert.Len(t, fields, 2)
	assert.Equal(t, "domain", fields[0].Name)
	assert.Equal(t, 10, fields[0].ChoiceSet.ID)
}

func TestGetCustomFieldChoiceSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/extras/custom-field-choice-sets/10/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 10, "name": "domains", "extra_choices": [["na", "N/A"], ["acme", "Acme"]]}`))
	}))
	defer server.Close()

	netboxClient := NewNetboxClient(server.URL, "secret", logrus.New())
	choiceSet, err := netboxClient.GetCustomFieldChoiceSet(context.Background(), 10)

	assert.NoError(t, err)
	assert.Equal(t, 10, choiceSet.ID)
	assert.Equal(t, [][2]string{{"na", "N/A"}, {"acme", "Acme"}}, choiceSet.ExtraChoices)
}

func TestGetPrefixes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ipam/prefixes/", r.URL.Path)
		assert.Equal(t, "acme", r.URL.Query().Get("cf_domain"))
		assert.Equal(t, "false", r.URL.Query().Get("brief"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [{"prefix": "10.0.0.0/24", "vrf": {"name": "nhc"}, "status": {"value": "active"}, "custom_fields": {"domain": "acme"}}]}`))
	}))
	defer server.Close()

	netboxClient := NewNetboxClient(server.URL, "secret", logrus.New())
	prefixes, err := netboxClient.GetPrefixes(context.Background(), "cf_domain", "acme")

	assert.NoError(t, err)
	assert.Len(t, prefixes, 1)
	assert.Equal(t, "10.0.0.0/24", prefixes[0].Prefix)
	assert.Equal(t, "nhc", prefixes[0].Vrf.Name)
	assert.Equal(t, "active", prefixes[0].Status.Value)
}

func TestGet_ErrorStatusWrapsUpstreamFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	netboxClient := NewNetboxClient(server.URL, "bad-token", logrus.New())
	fields, err := netboxClient.GetCustomFields(context.Background())

	assert.Nil(t, fields)
	assert.ErrorIs(t, err, types.ErrUpstreamFetch)
	assert.Contains(t, err.Error(), "403")
}

func TestHostname(t *testing.T) {
	netboxClient := NewNetboxClient("https://netbox.example.com:8443/", "secret", logrus.New())
	assert.Equal(t, "netbox.example.com:8443", netboxClient.Hostname())
}
