package facades

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/models"
)

const DefaultLogoutPath = "/api/users/logout"

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AuthHTTPFacade calls the authentication server on behalf of a signed-in client.
type AuthHTTPFacade struct {
	client     Doer
	endpoint   string
	logoutPath string
}

// NewAuthHTTPFacade creates a facade for the server at endpoint. An empty logoutPath means DefaultLogoutPath.
func NewAuthHTTPFacade(client Doer, endpoint, logoutPath string) *AuthHTTPFacade {
	if client == nil {
		client = http.DefaultClient
	}
	if logoutPath == "" {
		logoutPath = DefaultLogoutPath
	}
	return &AuthHTTPFacade{client: client, endpoint: endpoint, logoutPath: logoutPath}
}

// Logout tells the server the session behind token has ended.
func (f *AuthHTTPFacade) Logout(ctx context.Context, token string) error {
	url := strings.TrimRight(f.endpoint, "/") + "/" + strings.TrimLeft(f.logoutPath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Log.Errorw("failed to call logout endpoint", "url", url, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg models.MessageResponse
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if json.Unmarshal(body, &msg) == nil && msg.Message != "" {
			return fmt.Errorf("logout rejected with status %d: %s", resp.StatusCode, msg.Message)
		}
		return fmt.Errorf("logout rejected with status %d", resp.StatusCode)
	}
	return nil
}
