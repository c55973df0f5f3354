package api

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"cctvmap/pkg/logging"
)

// Captures key=value or key="value with spaces"
var logRegex = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// maxParamLen drops noisy attributes from the status bar line.
const maxParamLen = 32

// handleLatestLog handles GET /api/log/latest.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"log": formatLogLine(logging.GlobalLogCapture.GetLastLine()),
	}, "log")
}

// formatLogLine turns a slog text line into "HH:MM:SS [LEVEL] msg (k=v, ...)".
// INFO lines carry no level tag; params are sorted and long values dropped.
func formatLogLine(raw string) string {
	matches := logRegex.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return raw
	}

	var msg, timeStr, level string
	var params []string

	for _, m := range matches {
		key := m[1]
		val := m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				timeStr = t.Format("15:04:05")
			}
		case "level":
			if val != "INFO" {
				level = val
			}
		case "msg":
			msg = val
		case "component":
			// Implied by the message.
		default:
			if len(val) <= maxParamLen {
				params = append(params, fmt.Sprintf("%s=%s", key, val))
			}
		}
	}

	if msg == "" {
		return raw
	}

	sort.Strings(params)

	output := msg
	if level != "" {
		output = fmt.Sprintf("[%s] %s", level, output)
	}
	if timeStr != "" {
		output = fmt.Sprintf("%s %s", timeStr, output)
	}
	if len(params) > 0 {
		return fmt.Sprintf("%s (%s)", output, strings.Join(params, ", "))
	}
	return output
}
