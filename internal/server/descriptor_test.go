package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorValidate(t *testing.T) {
	base := func() Descriptor {
		return Descriptor{Name: "s", Endpoint: "https://s.example.com/mcp"}
	}

	tests := []struct {
		name    string
		mutate  func(d *Descriptor)
		wantErr bool
	}{
		{name: "no auth", mutate: func(*Descriptor) {}},
		{name: "explicit none", mutate: func(d *Descriptor) { d.AuthType = AuthNone }},
		{name: "missing name", mutate: func(d *Descriptor) { d.Name = "" }, wantErr: true},
		{name: "missing endpoint", mutate: func(d *Descriptor) { d.Endpoint = "" }, wantErr: true},
		{name: "api key ok", mutate: func(d *Descriptor) {
			d.AuthType = AuthAPIKey
			d.AuthDetails = &AuthDetails{APIKey: "k"}
		}},
		{name: "api key missing", mutate: func(d *Descriptor) { d.AuthType = AuthAPIKey }, wantErr: true},
		{name: "bearer ok", mutate: func(d *Descriptor) {
			d.AuthType = AuthBearer
			d.AuthDetails = &AuthDetails{Token: "t"}
		}},
		{name: "bearer missing", mutate: func(d *Descriptor) {
			d.AuthType = AuthBearer
			d.AuthDetails = &AuthDetails{APIKey: "k"}
		}, wantErr: true},
		{name: "oauth2 ok", mutate: func(d *Descriptor) {
			d.AuthType = AuthOAuth2
			d.AuthDetails = &AuthDetails{ClientID: "id", TokenURL: "https://auth.example.com/token"}
		}},
		{name: "oauth2 missing token url", mutate: func(d *Descriptor) {
			d.AuthType = AuthOAuth2
			d.AuthDetails = &AuthDetails{ClientID: "id"}
		}, wantErr: true},
		{name: "unknown auth", mutate: func(d *Descriptor) { d.AuthType = "kerberos" }, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := base()
			tc.mutate(&d)

			err := d.Validate()
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestDescriptorHasCapability(t *testing.T) {
	d := Descriptor{Capabilities: []string{"search", "code"}}

	require.True(t, d.HasCapability("code"))
	require.False(t, d.HasCapability("files"))
}
