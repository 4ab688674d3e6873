package remote

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/wagiedev/agent-protocol-go/internal/server"
)

const defaultAPIKeyHeader = "X-API-Key"

// headerTransport sets one header on every outgoing request.
type headerTransport struct {
	base  http.RoundTripper
	name  string
	value string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(t.name, t.value)

	return t.base.RoundTrip(req)
}

// AuthenticatedClient returns an HTTP client that authenticates as desc requires.
// base is used for the underlying round trips and defaults to http.DefaultClient.
func AuthenticatedClient(ctx context.Context, base *http.Client, desc server.Descriptor) (*http.Client, error) {
	if base == nil {
		base = http.DefaultClient
	}

	roundTripper := base.Transport
	if roundTripper == nil {
		roundTripper = http.DefaultTransport
	}

	details := desc.AuthDetails
	if details == nil && desc.AuthType != server.AuthNone && desc.AuthType != "" {
		return nil, fmt.Errorf("server %q: auth type %s requires auth details", desc.Name, desc.AuthType)
	}

	switch desc.AuthType {
	case server.AuthNone, "":
		return base, nil
	case server.AuthAPIKey:
		name := details.HeaderName
		if name == "" {
			name = defaultAPIKeyHeader
		}

		return withTransport(base, &headerTransport{base: roundTripper, name: name, value: details.APIKey}), nil
	case server.AuthBearer:
		return withTransport(base, &headerTransport{
			base:  roundTripper,
			name:  "Authorization",
			value: "Bearer " + details.Token,
		}), nil
	case server.AuthOAuth2:
		cfg := clientcredentials.Config{
			ClientID:     details.ClientID,
			ClientSecret: details.ClientSecret,
			TokenURL:     details.TokenURL,
			Scopes:       details.Scopes,
		}

		// Token refreshes outlive the call that first dialed the server.
		tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, base)

		return withTransport(base, &oauth2.Transport{
			Source: cfg.TokenSource(tokenCtx),
			Base:   roundTripper,
		}), nil
	default:
		return nil, fmt.Errorf("server %q: unsupported auth type %q", desc.Name, desc.AuthType)
	}
}

func withTransport(base *http.Client, rt http.RoundTripper) *http.Client {
	c := *base
	c.Transport = rt

	return &c
}
