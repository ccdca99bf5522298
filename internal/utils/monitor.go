package utils

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func GetMonitorID(ctx *gin.Context) (uint64, error) {
	monitorIDStr := ctx.Param("monitor_id")

	if monitorIDStr == "" {
		return 0, errors.New("Monitor ID not found")
	}

	monitorID, err := strconv.ParseUint(monitorIDStr, 10, 32)

	if err != nil {
		return 0, errors.New("Invalid Monitor ID")
	}

	return monitorID, nil
}

// ValidateTargetURL checks that a monitor target is an absolute http(s)
// URL with a hostname.
func ValidateTargetURL(input string) (string, error) {
	if input == "" {
		return "", errors.New("url cannot be empty")
	}

	trimmed := strings.TrimSpace(input)

	parsed, err := url.Parse(trimmed)

	if err != nil {
		return "", errors.New("invalid URL format")
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("url must use http or https")
	}

	if parsed.Hostname() == "" {
		return "", errors.New("no hostname found in URL")
	}

	return trimmed, nil
}
