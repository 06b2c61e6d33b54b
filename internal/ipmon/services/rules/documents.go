package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Priority bases for Azure NSG rules. The IPv6 block starts far above the
// IPv4 block so the two families never share a priority.
const (
	azurePriorityIPv4 = 100
	azurePriorityIPv6 = 2000
)

type awsSecurityGroup struct {
	Description   string          `json:"Description"`
	GroupName     string          `json:"GroupName"`
	IPPermissions []awsPermission `json:"IpPermissions"`
}

type awsPermission struct {
	IPProtocol string         `json:"IpProtocol"`
	IPRanges   []awsIPRange   `json:"IpRanges,omitempty"`
	IPv6Ranges []awsIPv6Range `json:"Ipv6Ranges,omitempty"`
}

type awsIPRange struct {
	CidrIP      string `json:"CidrIp"`
	Description string `json:"Description"`
}

type awsIPv6Range struct {
	CidrIPv6    string `json:"CidrIpv6"`
	Description string `json:"Description"`
}

type azureNSG struct {
	SecurityRules []azureRule `json:"securityRules"`
}

type azureRule struct {
	Name       string          `json:"name"`
	Properties azureProperties `json:"properties"`
}

type azureProperties struct {
	Protocol                 string `json:"protocol"`
	SourcePortRange          string `json:"sourcePortRange"`
	DestinationPortRange     string `json:"destinationPortRange"`
	SourceAddressPrefix      string `json:"sourceAddressPrefix"`
	DestinationAddressPrefix string `json:"destinationAddressPrefix"`
	Access                   string `json:"access"`
	Priority                 int    `json:"priority"`
	Direction                string `json:"direction"`
}

type jsonExport struct {
	GeneratedAt string       `json:"generated_at"`
	TotalRanges int          `json:"total_ranges"`
	IPv4        familyExport `json:"ipv4"`
	IPv6        familyExport `json:"ipv6"`
}

type familyExport struct {
	Count  int      `json:"count"`
	Ranges []string `json:"ranges"`
}

// renderAWS writes one permission per prefix, protocol "-1" (all traffic).
func renderAWS(in Input) (string, []error, error) {
	doc := awsSecurityGroup{
		Description:   "Google IP Ranges Security Group",
		GroupName:     "google-ip-ranges",
		IPPermissions: make([]awsPermission, 0, in.Total()),
	}
	for _, p := range in.IPv4 {
		doc.IPPermissions = append(doc.IPPermissions, awsPermission{
			IPProtocol: "-1",
			IPRanges:   []awsIPRange{{CidrIP: p, Description: rangeDescription}},
		})
	}
	for _, p := range in.IPv6 {
		doc.IPPermissions = append(doc.IPPermissions, awsPermission{
			IPProtocol: "-1",
			IPv6Ranges: []awsIPv6Range{{CidrIPv6: p, Description: rangeDescriptionV6}},
		})
	}
	s, err := marshalIndent(doc)
	return s, nil, err
}

// renderAzure numbers IPv4 rules from azurePriorityIPv4 and IPv6 rules from
// azurePriorityIPv6, in input order.
func renderAzure(in Input) (string, []error, error) {
	doc := azureNSG{SecurityRules: make([]azureRule, 0, in.Total())}
	for idx, p := range in.IPv4 {
		doc.SecurityRules = append(doc.SecurityRules, azureInbound(fmt.Sprintf("AllowGoogleIPv4_%d", idx+1), p, azurePriorityIPv4+idx))
	}
	for idx, p := range in.IPv6 {
		doc.SecurityRules = append(doc.SecurityRules, azureInbound(fmt.Sprintf("AllowGoogleIPv6_%d", idx+1), p, azurePriorityIPv6+idx))
	}
	s, err := marshalIndent(doc)
	return s, nil, err
}

func azureInbound(name, prefix string, priority int) azureRule {
	return azureRule{
		Name: name,
		Properties: azureProperties{
			Protocol:                 "*",
			SourcePortRange:          "*",
			DestinationPortRange:     "*",
			SourceAddressPrefix:      prefix,
			DestinationAddressPrefix: "*",
			Access:                   "Allow",
			Priority:                 priority,
			Direction:                "Inbound",
		},
	}
}

func renderJSON(in Input) (string, []error, error) {
	doc := jsonExport{
		GeneratedAt: in.timestamp(),
		TotalRanges: in.Total(),
		IPv4:        familyExport{Count: len(in.IPv4), Ranges: nonNil(in.IPv4)},
		IPv6:        familyExport{Count: len(in.IPv6), Ranges: nonNil(in.IPv6)},
	}
	s, err := marshalIndent(doc)
	return s, nil, err
}

// marshalIndent encodes v with two-space indentation and without HTML
// escaping, so literals such as "::/0" and "&" stay readable.
func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
