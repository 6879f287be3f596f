// Package net normalizes and validates user supplied source URLs before
// they reach the extractor command line.
package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// ErrInvalidURL marks a source URL rejected before any subprocess starts.
var ErrInvalidURL = errors.New("invalid source url")

// NormalizeHost validates and normalizes a host for comparison.
// Internationalized names are converted to their ASCII form.
func NormalizeHost(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	host = strings.TrimSuffix(host, ".")
	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		return strings.ToLower(ip.String()), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", raw, err)
	}
	return strings.ToLower(ascii), nil
}

// NormalizeSourceURL accepts absolute http(s) URLs and returns them with a
// normalized host and without fragment. Userinfo is rejected.
func NormalizeSourceURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: url is empty", ErrInvalidURL)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: scheme %q not supported", ErrInvalidURL, u.Scheme)
	}
	if u.User != nil {
		return "", fmt.Errorf("%w: credentials in url", ErrInvalidURL)
	}
	hostname := u.Hostname()
	if hostname == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	host, err := NormalizeHost(hostname)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" {
		host = host + ":" + port
	}

	u.Scheme = scheme
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}
