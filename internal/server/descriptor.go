package server

import (
	"fmt"
	"slices"
)

// AuthType selects how requests to a server are authenticated.
type AuthType string

const (
	// AuthNone sends no credentials.
	AuthNone AuthType = "none"
	// AuthAPIKey sends an API key header.
	AuthAPIKey AuthType = "api_key"
	// AuthBearer sends a static bearer token.
	AuthBearer AuthType = "bearer"
	// AuthOAuth2 obtains tokens with the client-credentials flow.
	AuthOAuth2 AuthType = "oauth2"
)

// AuthDetails holds the credentials matching an AuthType.
// Only the fields relevant to the chosen type are populated.
type AuthDetails struct {
	// APIKey and HeaderName apply to AuthAPIKey. HeaderName defaults to X-API-Key.
	APIKey     string `json:"apiKey,omitempty"`
	HeaderName string `json:"headerName,omitempty"`

	// Token applies to AuthBearer.
	Token string `json:"token,omitempty"`

	// ClientID, ClientSecret, TokenURL and Scopes apply to AuthOAuth2.
	ClientID     string   `json:"clientId,omitempty"`
	ClientSecret string   `json:"clientSecret,omitempty"`
	TokenURL     string   `json:"tokenUrl,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
}

// Descriptor describes one external protocol-compatible endpoint.
type Descriptor struct {
	Name         string       `json:"name"`
	Endpoint     string       `json:"endpoint"`
	Capabilities []string     `json:"capabilities,omitempty"`
	AuthType     AuthType     `json:"authType"`
	AuthDetails  *AuthDetails `json:"authDetails,omitempty"`
	IsActive     bool         `json:"isActive"`

	// Priority orders servers that share a capability. With the default
	// Ascending order, lower values are preferred.
	Priority    int    `json:"priority"`
	Description string `json:"description,omitempty"`
}

// HasCapability reports whether the server advertises the given tag.
func (d Descriptor) HasCapability(tag string) bool {
	return slices.Contains(d.Capabilities, tag)
}

// Validate checks that the descriptor is usable and its auth details match its auth type.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("server descriptor: name is required")
	}

	if d.Endpoint == "" {
		return fmt.Errorf("server %q: endpoint is required", d.Name)
	}

	details := d.AuthDetails
	if details == nil {
		details = &AuthDetails{}
	}

	switch d.AuthType {
	case "", AuthNone:
		return nil
	case AuthAPIKey:
		if details.APIKey == "" {
			return fmt.Errorf("server %q: api_key auth requires apiKey", d.Name)
		}
	case AuthBearer:
		if details.Token == "" {
			return fmt.Errorf("server %q: bearer auth requires token", d.Name)
		}
	case AuthOAuth2:
		if details.ClientID == "" || details.TokenURL == "" {
			return fmt.Errorf("server %q: oauth2 auth requires clientId and tokenUrl", d.Name)
		}
	default:
		return fmt.Errorf("server %q: unknown auth type %q", d.Name, d.AuthType)
	}

	return nil
}

// clone returns a deep copy so callers cannot mutate registry state.
func (d Descriptor) clone() Descriptor {
	out := d
	out.Capabilities = slices.Clone(d.Capabilities)

	if d.AuthDetails != nil {
		details := *d.AuthDetails
		details.Scopes = slices.Clone(d.AuthDetails.Scopes)
		out.AuthDetails = &details
	}

	return out
}
