package param

import (
	"net/http"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Cleanse removes unexpected characters from an input parameter value.
// This is useful for sanitizing dynamic SQL queries built from user input.
func Cleanse(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return -1
	}, name)
}

// when requesting a param, also validate it against a regexp to ensure it is what we expect
var wordRegexp = regexp.MustCompile(`^[\w]+$`)
var uuidRegexp = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
var dateRegexp = regexp.MustCompile(`^[\d]{4}-[\d]{2}-[\d]{2}$`)
var paramRegexp = map[string]*regexp.Regexp{
	"type":      wordRegexp,
	"category":  wordRegexp,
	"date":      dateRegexp,
	"messageId": uuidRegexp,
	"userId":    uuidRegexp,
	"days":      regexp.MustCompile(`^[\d]+$`),
}

// SafeRead returns the value of a query parameter only if it matches the given regexp.
// this should be used to validate query parameters that are not otherwise validated.
func SafeRead(req *http.Request, name string) string {
	re, ok := paramRegexp[name]
	if !ok {
		log.Fatalf("code BUG: request for unknown param %s", name) // revive:disable-line:deep-exit
	}
	value := req.URL.Query().Get(name)
	if value == "" || re.MatchString(value) {
		return value
	}
	log.Warnf("invalid value for %s param: %q", name, value)
	return ""
}
