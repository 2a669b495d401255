package github

import (
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/violinyanev/praier/internal/domain/port/driven"
)

// mapAPIError translates go-github errors into the driven port's error
// taxonomy so callers can branch with errors.Is. Anything unrecognized stays
// a plain wrapped transport error and is retried on the next cycle.
func mapAPIError(op string, err error) error {
	if err == nil {
		return nil
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%s: %w: %w", op, driven.ErrRateLimited, err)
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound, http.StatusGone:
			return fmt.Errorf("%s: %w: %w", op, driven.ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w: %w", op, driven.ErrPermission, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w: %w", op, driven.ErrRateLimited, err)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
