package rules

import (
	"fmt"
	"strings"
)

// lines joins rule lines with a newline and no trailing newline.
type lines []string

func (l *lines) add(s string) { *l = append(*l, s) }

func (l *lines) addf(format string, args ...any) { *l = append(*l, fmt.Sprintf(format, args...)) }

func (l lines) String() string { return strings.Join(l, "\n") }

func renderIPTables(in Input) (string, []error, error) {
	var out lines
	out.add("#!/bin/bash")
	out.add("# Google IP Ranges - iptables rules")
	out.addf("# Generated: %s", in.timestamp())
	out.add("# Allow incoming traffic from Google IPs")
	out.add("")
	out.add("# IPv4 Rules")
	for _, p := range in.IPv4 {
		out.addf("iptables -A INPUT -s %s -j ACCEPT", p)
	}
	out.add("")
	out.add("# IPv6 Rules")
	for _, p := range in.IPv6 {
		out.addf("ip6tables -A INPUT -s %s -j ACCEPT", p)
	}
	return out.String(), nil, nil
}

// renderCisco writes an extended ACL. IOS needs network + wildcard syntax for
// IPv4 but accepts CIDR literals for IPv6.
func renderCisco(in Input) (string, []error, error) {
	var out lines
	var skipped []error
	out.add("! Google IP Ranges - Cisco ACL")
	out.addf("! Generated: %s", in.timestamp())
	out.add("!")
	out.add("ip access-list extended GOOGLE-IPS-V4")
	for _, p := range in.IPv4 {
		network, wildcard, err := splitIPv4Prefix(p)
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		out.addf(" permit ip %s %s any", network, wildcard)
	}
	out.add("!")
	out.add("ipv6 access-list GOOGLE-IPS-V6")
	for _, p := range in.IPv6 {
		out.addf(" permit ipv6 %s any", p)
	}
	out.add("!")
	return out.String(), skipped, nil
}

func renderPfSense(in Input) (string, []error, error) {
	var out lines
	out.add("# Google IP Ranges - pfSense Alias")
	out.addf("# Generated: %s", in.timestamp())
	out.add("# Import via Firewall > Aliases > Import")
	out.add("")
	out.add("# IPv4 Networks")
	out = append(out, in.IPv4...)
	out.add("")
	out.add("# IPv6 Networks")
	out = append(out, in.IPv6...)
	return out.String(), nil, nil
}

func renderMikroTik(in Input) (string, []error, error) {
	var out lines
	out.add("# Google IP Ranges - MikroTik RouterOS")
	out.addf("# Generated: %s", in.timestamp())
	out.add("")
	out.add("# Create address list")
	out.add("/ip firewall address-list")
	for _, p := range in.IPv4 {
		out.addf(`add list=google-ips address=%s comment="Google IPv4"`, p)
	}
	out.add("")
	out.add("/ipv6 firewall address-list")
	for _, p := range in.IPv6 {
		out.addf(`add list=google-ips-v6 address=%s comment="Google IPv6"`, p)
	}
	return out.String(), nil, nil
}

func renderPlainText(in Input) (string, []error, error) {
	var out lines
	out.add("Google IP Ranges - Plain Text")
	out.addf("Generated: %s", in.timestamp())
	out.addf("Total IPv4: %d", len(in.IPv4))
	out.addf("Total IPv6: %d", len(in.IPv6))
	out.add("")
	out.add("=== IPv4 Ranges ===")
	out = append(out, in.IPv4...)
	out.add("")
	out.add("=== IPv6 Ranges ===")
	out = append(out, in.IPv6...)
	return out.String(), nil, nil
}

// renderCSV writes type,prefix,description rows, all IPv4 rows first.
// Prefix literals never contain commas or quotes, so no field quoting is
// needed.
func renderCSV(in Input) (string, []error, error) {
	var out lines
	out.add("type,prefix,description")
	for _, p := range in.IPv4 {
		out.addf("IPv4,%s,%s", p, rangeDescription)
	}
	for _, p := range in.IPv6 {
		out.addf("IPv6,%s,%s", p, rangeDescription)
	}
	return out.String(), nil, nil
}
