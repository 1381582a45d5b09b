// Package useragent classifies raw User-Agent strings into the coarse
// device/browser/OS buckets the click analytics store.
package useragent

import (
	"fmt"
	"os"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Parser wraps the uap-go parser with device type classification.
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo is the parsed result of a single User-Agent string.
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string // Chrome, Firefox, Safari, ...
	OS         string // Windows, iOS, Android, ...
}

// NewParser creates a parser from a uap-core regexes file.
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file %s: %w", regexFilePath, err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))

	return &Parser{
		parser: parser,
		log:    log,
	}, nil
}

// Parse returns device information for a User-Agent string.
func (p *Parser) Parse(userAgent string) *DeviceInfo {
	if userAgent == "" {
		return &DeviceInfo{DeviceType: "unknown", Browser: "unknown", OS: "unknown"}
	}

	client := p.parser.Parse(userAgent)

	info := &DeviceInfo{
		Browser: orUnknown(client.UserAgent.Family),
		OS:      orUnknown(client.Os.Family),
	}
	info.DeviceType = p.deviceType(client, userAgent)

	return info
}

func (p *Parser) deviceType(client *uaparser.Client, userAgent string) string {
	if isBot(client.UserAgent.Family) || isBot(userAgent) {
		return "bot"
	}

	osFamily := client.Os.Family
	device := client.Device.Family

	switch {
	case containsAny(device, "iPad", "Tablet", "Kindle", "Surface"):
		return "tablet"
	case containsAny(device, "iPhone", "Android", "BlackBerry", "Phone", "Mobile"):
		return "mobile"
	}

	if containsAny(osFamily, "iOS", "Android", "Windows Phone", "BlackBerry OS") {
		// iPads and Android tablets report a mobile OS; the raw string
		// disambiguates (Android tablets omit "Mobile", iPads say iPad).
		if strings.Contains(userAgent, "iPad") ||
			(containsAny(osFamily, "Android") && !strings.Contains(userAgent, "Mobile")) {
			return "tablet"
		}
		return "mobile"
	}

	if containsAny(osFamily, "Windows", "Mac OS X", "macOS", "Linux", "Ubuntu", "Chrome OS", "FreeBSD") {
		return "desktop"
	}

	return "unknown"
}

// ClassifyDeviceType is the keyword fallback used when no regexes file is
// available. It only distinguishes the coarse buckets.
func ClassifyDeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case ua == "":
		return "unknown"
	case strings.Contains(ua, "bot") || strings.Contains(ua, "spider") || strings.Contains(ua, "crawler"):
		return "bot"
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet") || strings.Contains(ua, "kindle"):
		return "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return "mobile"
	default:
		return "desktop"
	}
}

func isBot(s string) bool {
	ls := strings.ToLower(s)
	for _, indicator := range []string{"bot", "crawler", "spider", "scraper", "facebookexternalhit", "whatsapp", "telegram", "slurp"} {
		if strings.Contains(ls, indicator) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(strings.ToLower(s), strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func orUnknown(s string) string {
	if s == "" || s == "Other" {
		return "unknown"
	}
	return s
}
