package shortener

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const defaultScheme = "https://"

var validate = validator.New()

// NormalizeTargetURL prepares a user supplied target for storage.
// - Prepends https:// unless the value already starts with http:// or https://
// - Rejects anything that does not parse as an absolute URL with a host
func NormalizeTargetURL(rawURL string) (string, error) {
	target := rawURL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = defaultScheme + target
	}

	if err := validate.Var(target, "required,url"); err != nil {
		return "", ErrInvalidURL
	}

	u, err := url.Parse(target)
	if err != nil || u.Hostname() == "" || !validPort(u.Host) {
		return "", ErrInvalidURL
	}

	return target, nil
}

// validPort rejects hosts like "ftp:" left behind when a foreign scheme got the default one prepended.
func validPort(host string) bool {
	_, port, err := net.SplitHostPort(host)
	if err != nil {
		// No port at all.
		return true
	}

	n, err := strconv.Atoi(port)

	return err == nil && n >= 1 && n <= 65535
}
