package validator

import (
	"strings"
	"unicode"

	"liuproxy_scanner/proxypool/model"
)

const (
	defaultIPField  = "clientIp"
	defaultOrgField = "asOrganization"
)

// Status is the disposition of one proxy.
type Status int

const (
	StatusAlive Status = iota
	StatusDead
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusAlive:
		return "alive"
	case StatusDead:
		return "dead"
	case StatusFailed:
		return "error"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of evaluating one probe. Entry is set only when
// Status is StatusAlive; Reason is for logs.
type Verdict struct {
	Status Status
	Entry  *model.AliveEntry
	Reason string
}

// Policy decides whether a probed proxy is alive relative to the baseline IP.
type Policy struct {
	IPField  string
	OrgField string
}

// DefaultPolicy reads the fields served by speed.cloudflare.com/meta.
func DefaultPolicy() Policy {
	return Policy{IPField: defaultIPField, OrgField: defaultOrgField}
}

// Evaluate is deterministic in its inputs.
func (p Policy) Evaluate(baseline string, payload Payload, probeErr error, rec model.ProxyRecord) Verdict {
	if probeErr != nil {
		return Verdict{Status: StatusFailed, Reason: probeErr.Error()}
	}

	ip := p.stringField(payload, p.ipField())
	if ip == "" {
		return Verdict{Status: StatusDead, Reason: "no client IP"}
	}
	if ip == baseline {
		return Verdict{Status: StatusDead, Reason: "same IP"}
	}

	org := rec.Organization
	if asOrg := p.stringField(payload, p.orgField()); asOrg != "" {
		org = asOrg
	}

	return Verdict{
		Status: StatusAlive,
		Reason: "egress " + ip,
		Entry: &model.AliveEntry{
			Address:      rec.Address,
			Port:         rec.Port,
			Country:      rec.Country,
			Organization: CleanOrgName(org),
		},
	}
}

// ClientIP extracts the client IP field, or "" when absent or not a string.
func (p Policy) ClientIP(payload Payload) string {
	return p.stringField(payload, p.ipField())
}

func (p Policy) ipField() string {
	if p.IPField == "" {
		return defaultIPField
	}
	return p.IPField
}

func (p Policy) orgField() string {
	if p.OrgField == "" {
		return defaultOrgField
	}
	return p.OrgField
}

func (p Policy) stringField(payload Payload, key string) string {
	s, _ := payload[key].(string)
	return s
}

// CleanOrgName drops every rune that is not alphabetic, numeric or whitespace.
// Combining vowel signs (Other_Alphabetic) count as alphabetic.
func CleanOrgName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.Is(unicode.Other_Alphabetic, r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, name)
}
