package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_WellFormed(t *testing.T) {
	rec, err := ParseLine("1.2.3.4,8080,US,ExampleOrg")
	require.NoError(t, err)
	assert.Equal(t, ProxyRecord{Address: "1.2.3.4", Port: 8080, Country: "US", Organization: "ExampleOrg"}, rec)
}

func TestParseLine_KeepsExactSubstrings(t *testing.T) {
	_, err := ParseLine("proxy.example.net,443, DE ,Some Org, Ltd.")
	// five fields: the organization may not contain a comma
	require.ErrorIs(t, err, ErrMalformedLine)

	rec, err := ParseLine("proxy.example.net,443, DE , Some Org Ltd. ")
	require.NoError(t, err)
	assert.Equal(t, " DE ", rec.Country)
	assert.Equal(t, " Some Org Ltd. ", rec.Organization)
}

func TestParseLine_Rejections(t *testing.T) {
	cases := []struct {
		name string
		line string
		want error
	}{
		{"too few fields", "1.2.3.4,8080,US", ErrMalformedLine},
		{"single field", "1.2.3.4", ErrMalformedLine},
		{"non-numeric port", "1.2.3.4,abc,US,Org", ErrInvalidPort},
		{"port out of range", "1.2.3.4,65536,US,Org", ErrInvalidPort},
		{"negative port", "1.2.3.4,-1,US,Org", ErrInvalidPort},
		{"empty port", "1.2.3.4,,US,Org", ErrInvalidPort},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseLine(tc.line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestParseLine_PortBounds(t *testing.T) {
	rec, err := ParseLine("h,0,US,Org")
	require.NoError(t, err)
	assert.Equal(t, uint16(0), rec.Port)

	rec, err = ParseLine("h,65535,US,Org")
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), rec.Port)
}

func TestAliveEntry_String(t *testing.T) {
	e := AliveEntry{Address: "1.2.3.4", Port: 8080, Country: "US", Organization: "Acme Inc"}
	assert.Equal(t, "1.2.3.4,8080,US,Acme Inc", e.String())
}
