// Package identity talks to the external authentication service that owns
// identity accounts. Accounts are created in a pending state with an emailed
// activation invite; the service also supports delete-by-id, which is the
// compensation used when a later provisioning step fails.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// InviteRequest asks the identity service to create a pending account and
// email an activation invite pointing at RedirectTo.
type InviteRequest struct {
	Email      string         `json:"email"`
	RedirectTo string         `json:"redirect_to"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type inviteResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"msg"`
}

func (e errorResponse) text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// conflictPhrases are the upstream's known ways of saying "this email already
// has an account". The upstream has no stable error codes, so matching these
// is how a duplicate identity is told apart from a generic failure.
var conflictPhrases = []string{
	"already registered",
	"already exists",
	"already been registered",
	"duplicate",
}

// Client is an HTTP client for the identity service admin API.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient constructs an identity service client. serviceKey authenticates
// this backend against the admin API.
func NewClient(baseURL, serviceKey string, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetAuthToken(serviceKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, logger: logger}
}

// Invite creates a pending identity account and triggers the activation
// invite email. Returns sentinel.ErrConflict when the upstream reports the
// email is already taken.
func (c *Client) Invite(ctx context.Context, req InviteRequest) (domain.IdentityID, error) {
	var created inviteResponse
	var upstreamErr errorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&created).
		SetError(&upstreamErr).
		Post("/admin/invitations")
	if err != nil {
		return domain.IdentityID{}, fmt.Errorf("identity invite: %w", err)
	}

	if resp.IsError() {
		message := upstreamErr.text()
		c.logger.WarnContext(ctx, "identity invite rejected",
			"status", resp.StatusCode(),
			"upstream_error", message,
		)
		if isConflict(resp.StatusCode(), message) {
			return domain.IdentityID{}, fmt.Errorf("identity invite: %s: %w", message, sentinel.ErrConflict)
		}
		return domain.IdentityID{}, fmt.Errorf("identity invite failed with status %d: %s", resp.StatusCode(), message)
	}

	id, err := uuid.Parse(created.ID)
	if err != nil || id == uuid.Nil {
		return domain.IdentityID{}, fmt.Errorf("identity invite returned invalid id %q", created.ID)
	}
	return domain.IdentityID(id), nil
}

// Delete removes an identity account by id. Used as the saga compensation
// for a successful invite. Deleting an unknown id is not an error: the goal
// state (no account) already holds.
func (c *Client) Delete(ctx context.Context, id domain.IdentityID) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/admin/identities/" + id.String())
	if err != nil {
		return fmt.Errorf("identity delete: %w", err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("identity delete failed with status %d: %s", resp.StatusCode(), errorText(resp))
	}
	return nil
}

// Activate flips a pending identity account to active once the invite link
// is followed.
func (c *Client) Activate(ctx context.Context, id domain.IdentityID) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Post("/admin/identities/" + id.String() + "/activate")
	if err != nil {
		return fmt.Errorf("identity activate: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("identity activate: %w", sentinel.ErrNotFound)
	}
	if resp.IsError() {
		return fmt.Errorf("identity activate failed with status %d: %s", resp.StatusCode(), errorText(resp))
	}
	return nil
}

func isConflict(status int, message string) bool {
	if status == http.StatusConflict {
		return true
	}
	lowered := strings.ToLower(message)
	for _, phrase := range conflictPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func errorText(resp *resty.Response) string {
	var upstream errorResponse
	if err := json.Unmarshal(resp.Body(), &upstream); err == nil && upstream.text() != "" {
		return upstream.text()
	}
	return strings.TrimSpace(string(resp.Body()))
}
