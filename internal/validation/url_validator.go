package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/veranemoloko/downloadtask/internal/domain"
)

var forbiddenHosts = []string{
	"localhost",
	"127.0.0.1",
	"::1",
	"0.0.0.0",
	"169.254.169.254",
}

// Validator checks incoming download requests.
type Validator struct {
	validate          *validator.Validate
	allowPrivateHosts bool
	maxDownloads      int
}

// New returns a Validator. With allowPrivateHosts set, loopback and private
// addresses pass safe_url; maxDownloads caps the number of downloads per task.
func New(allowPrivateHosts bool, maxDownloads int) *Validator {
	v := &Validator{
		validate:          validator.New(),
		allowPrivateHosts: allowPrivateHosts,
		maxDownloads:      maxDownloads,
	}
	_ = v.validate.RegisterValidation("safe_url", v.validateSafeURL)
	_ = v.validate.RegisterValidation("safe_filename", validateSafeFilename)
	return v
}

// ValidateCreateTask validates the request struct tags and the download limit.
func (v *Validator) ValidateCreateTask(req *domain.CreateTaskRequest) error {
	if err := v.validate.Struct(req); err != nil {
		return err
	}
	if v.maxDownloads > 0 && len(req.Downloads) > v.maxDownloads {
		return fmt.Errorf("too many downloads: %d (max %d)", len(req.Downloads), v.maxDownloads)
	}
	return nil
}

// ValidateURLs checks every URL against the safe_url rule.
func (v *Validator) ValidateURLs(urls []string) error {
	for _, u := range urls {
		if err := v.validate.Var(u, "required,safe_url"); err != nil {
			return fmt.Errorf("invalid URL %q: %w", u, err)
		}
	}
	return nil
}

func (v *Validator) validateSafeURL(fl validator.FieldLevel) bool {
	urlStr := fl.Field().String()

	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	if u.Host == "" {
		return false
	}

	if v.allowPrivateHosts {
		return true
	}

	host := u.Hostname()

	for _, forbidden := range forbiddenHosts {
		if strings.EqualFold(host, forbidden) {
			return false
		}
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return false
		}
	}

	return true
}

// validateSafeFilename accepts a single path element that stays inside the
// download directory.
func validateSafeFilename(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" || name == "." || name == ".." || len(name) > 255 {
		return false
	}
	return !strings.ContainsAny(name, "/\\\x00")
}
