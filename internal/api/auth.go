package api

import (
	"context"
	"net/http"

	"storefront/clientcore/internal/model"
)

// Session is the result of login, register and the "who am I" call.
type Session struct {
	User  *model.Profile
	Token string
}

type AuthAPI struct {
	c *Client
}

func NewAuthAPI(c *Client) *AuthAPI {
	return &AuthAPI{c: c}
}

func (a *AuthAPI) Login(ctx context.Context, creds model.Credentials) (*Session, error) {
	body, err := a.c.do(ctx, "auth.login", http.MethodPost, "/auth/login", nil, creds)
	if err != nil {
		return nil, err
	}
	sess, err := normalizeSession(body)
	if err != nil {
		return nil, err
	}
	a.c.saveToken(ctx, sess.Token)
	return sess, nil
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Register signs a new user up. The profile in the returned Session is nil
// when the backend answers without one; callers fetch it with Me.
// A 409 is reported with Code USER_EXISTS and the email field flagged.
func (a *AuthAPI) Register(ctx context.Context, reg model.Registration) (*Session, error) {
	req := registerRequest{
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Password:  reg.Password,
		Phone:     reg.Phone,
		Address:   reg.Address,
	}
	body, err := a.c.do(ctx, "auth.register", http.MethodPost, "/auth/register", nil, req)
	if err != nil {
		if apiErr, ok := AsError(err); ok && apiErr.Kind == KindConflict {
			apiErr.Code = CodeUserExists
			if apiErr.Fields == nil {
				apiErr.Fields = map[string]string{}
			}
			if _, ok := apiErr.Fields["email"]; !ok {
				apiErr.Fields["email"] = apiErr.Message
			}
		}
		return nil, err
	}
	sess, err := normalizeSession(body)
	if err != nil {
		return &Session{}, nil
	}
	a.c.saveToken(ctx, sess.Token)
	return sess, nil
}

// Logout invalidates the remote session. The stored token is dropped even
// when the call fails.
func (a *AuthAPI) Logout(ctx context.Context) error {
	defer a.c.dropToken(ctx)
	_, err := a.c.do(ctx, "auth.logout", http.MethodPost, "/auth/logout", nil, struct{}{})
	return err
}

func (a *AuthAPI) Me(ctx context.Context) (*model.Profile, error) {
	body, err := a.c.do(ctx, "auth.me", http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}
	sess, err := normalizeSession(body)
	if err != nil {
		return nil, err
	}
	return sess.User, nil
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.Profile, error) {
	body, err := a.c.do(ctx, "auth.update", http.MethodPut, "/auth/me", nil, update)
	if err != nil {
		return nil, err
	}
	sess, err := normalizeSession(body)
	if err != nil {
		return nil, err
	}
	return sess.User, nil
}
