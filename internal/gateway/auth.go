package gateway

import (
	"context"
	"net/http"

	"github.com/centsible/centsible-go/internal/domain"

	"go.uber.org/zap"
)

// Login authenticates with the backend and stores the issued credential pair
// in the session. The strict unwrap applies: a success=false envelope throws
// with the envelope's own message.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.User, error) {
	raw, err := c.Request(ctx, "/auth/login", RequestOptions{
		Method:    http.MethodPost,
		Operation: "auth.login",
		JSON:      map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}

	data, err := UnwrapObject[domain.LoginData](raw, "auth.login")
	if err != nil {
		return nil, err
	}

	if err := c.session.SetTokens(domain.AuthTokens{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
	}); err != nil {
		return nil, err
	}
	return &data.User, nil
}

// Logout tells the backend to revoke the session, then erases the credential
// pair locally regardless of the outcome. A dead server must not keep the
// user signed in.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Request(ctx, "/auth/logout", RequestOptions{
		Method:    http.MethodPost,
		Operation: "auth.logout",
	})
	if err != nil {
		c.logger.Warn("gateway: server-side logout failed, clearing local session anyway",
			zap.Error(err),
		)
	}
	c.session.Invalidate()
	return err
}

// Refresh exchanges the stored refresh token for a fresh credential pair.
func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.session.RefreshToken()
	if refresh == "" {
		return &domain.DomainError{Op: "auth.refresh", Message: "no refresh token stored"}
	}

	raw, err := c.Request(ctx, "/auth/refresh", RequestOptions{
		Method:    http.MethodPost,
		Operation: "auth.refresh",
		JSON:      map[string]string{"refreshToken": refresh},
	})
	if err != nil {
		return err
	}

	data, err := UnwrapObject[domain.LoginData](raw, "auth.refresh")
	if err != nil {
		return err
	}
	return c.session.SetTokens(domain.AuthTokens{
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
	})
}

// CurrentUser fetches the signed-in user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	raw, err := c.Request(ctx, "/auth/me", RequestOptions{Operation: "auth.me"})
	if err != nil {
		return nil, err
	}
	user, err := UnwrapObject[domain.User](raw, "auth.me")
	if err != nil {
		return nil, err
	}
	return &user, nil
}
