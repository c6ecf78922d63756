package entity

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// AlertChannel is the closed set of notification channels a ticket can
// subscribe to. String tags from clients are parsed through ParseAlertChannel
// so unknown channels are rejected at the boundary.
type AlertChannel string

const (
	ChannelEmail    AlertChannel = "email"
	ChannelTelegram AlertChannel = "telegram"
	ChannelBrowser  AlertChannel = "browser"
)

func ParseAlertChannel(s string) (AlertChannel, error) {
	switch AlertChannel(s) {
	case ChannelEmail, ChannelTelegram, ChannelBrowser:
		return AlertChannel(s), nil
	default:
		return "", fmt.Errorf("unknown alert channel: %q", s)
	}
}

// AlertChannels is stored as a single comma-joined text column.
type AlertChannels []AlertChannel

func (c AlertChannels) Contains(ch AlertChannel) bool {
	for _, v := range c {
		if v == ch {
			return true
		}
	}
	return false
}

func (c AlertChannels) Value() (driver.Value, error) {
	if len(c) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(c))
	for _, ch := range c {
		parts = append(parts, string(ch))
	}
	return strings.Join(parts, ","), nil
}

func (c *AlertChannels) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan type %T into AlertChannels", value)
	}

	if raw == "" {
		*c = nil
		return nil
	}

	parts := strings.Split(raw, ",")
	channels := make(AlertChannels, 0, len(parts))
	for _, p := range parts {
		ch, err := ParseAlertChannel(strings.TrimSpace(p))
		if err != nil {
			return err
		}
		channels = append(channels, ch)
	}
	*c = channels
	return nil
}
