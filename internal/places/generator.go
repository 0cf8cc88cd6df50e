package places

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/welcometomycity/citycore/internal/models"
)

// Generator failures, classified so callers can pick a user-facing message
var (
	ErrQuotaExceeded      = errors.New("generation quota exceeded")
	ErrInvalidCredentials = errors.New("invalid generation credentials")
	ErrNotConfigured      = errors.New("place generation not configured")
	ErrInvalidResponse    = errors.New("invalid generation response")
)

// Generated list bounds
const (
	MinGenerated = 10
	MaxGenerated = 15
)

// Generator produces a list of attractions for a city
type Generator interface {
	Generate(ctx context.Context, city models.City) ([]models.Place, error)
}

// Classify wraps err with the matching sentinel based on the provider's message
func Classify(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{ErrQuotaExceeded, ErrInvalidCredentials, ErrNotConfigured, ErrInvalidResponse} {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	msg := err.Error()
	switch {
	case containsAny(msg, "429", "RESOURCE_EXHAUSTED", "quota"):
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	case containsAny(msg, "401", "403", "API key not valid", "PERMISSION_DENIED", "UNAUTHENTICATED"):
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return err
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Message maps a generation failure to the text shown to users and reports
// whether the failure needs operator setup
func Message(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return "AI quota exceeded. Showing curated attractions instead.", true
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid AI API key. Showing curated attractions instead.", true
	case errors.Is(err, ErrNotConfigured):
		return "AI place generation not configured. Showing curated attractions instead.", true
	default:
		return "Failed to load attractions. Please try again.", false
	}
}

// ImageURL builds the placeholder image reference for an image query
func ImageURL(query string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	return "/placeholder.svg?height=300&width=400&query=" + escaped
}
