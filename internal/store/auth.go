package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"storefront/clientcore/internal/api"
	"storefront/clientcore/internal/model"
)

type AuthStatus string

const (
	StatusAnonymous      AuthStatus = "anonymous"
	StatusAuthenticating AuthStatus = "authenticating"
	StatusAuthenticated  AuthStatus = "authenticated"
	StatusLoggingOut     AuthStatus = "loggingOut"
)

const (
	OpLogin          = "auth/login"
	OpRegister       = "auth/register"
	OpLogout         = "auth/logout"
	OpGetCurrentUser = "auth/getCurrentUser"
	OpUpdateProfile  = "auth/updateProfile"
)

type AuthState struct {
	User            *model.Profile `json:"user"`
	IsAuthenticated bool           `json:"isAuthenticated"`
	Status          AuthStatus     `json:"status"`
	Loading         bool           `json:"loading"`
	Error           string         `json:"error,omitempty"`
	ErrorDetails    *api.Error     `json:"errorDetails,omitempty"`

	// session counts logouts. A profile refresh started under an older value
	// is dropped.
	session uint64
}

// ErrSessionEnded is returned by GetCurrentUser when the user logged out
// while the profile request was in flight.
var ErrSessionEnded = errors.New("session ended before the profile arrived")

type ClearAuthError struct{}

func (ClearAuthError) Type() string { return "auth/clearError" }

// ForceLogout drops the local session without a remote call, e.g. after the
// API answered 401.
type ForceLogout struct{}

func (ForceLogout) Type() string { return "auth/forceLogout" }

// profileRefreshed is the fulfilled phase of a profile refresh, tagged with
// the session it was started in.
type profileRefreshed struct {
	profile *model.Profile
	session uint64
}

func (profileRefreshed) Type() string { return OpGetCurrentUser + "/" + string(PhaseFulfilled) }

func anonymous() AuthState {
	return AuthState{Status: StatusAnonymous}
}

func reduceAuth(s AuthState, a Action) AuthState {
	next := reduceAuthFields(s, a)
	next.session = s.session
	if endsSession(a) {
		next.session++
	}
	return next
}

func endsSession(a Action) bool {
	switch a := a.(type) {
	case ForceLogout:
		return true
	case AsyncAction:
		return a.Op == OpLogout && a.Phase == PhasePending
	}
	return false
}

func reduceAuthFields(s AuthState, a Action) AuthState {
	switch a := a.(type) {
	case profileRefreshed:
		if a.session != s.session {
			return s
		}
		s.User = a.profile
		s.IsAuthenticated = true
		s.Status = StatusAuthenticated
		s.Loading = false
		return s
	case ClearAuthError:
		s.Error = ""
		s.ErrorDetails = nil
		return s
	case ForceLogout:
		return anonymous()
	case AsyncAction:
		switch a.Op {
		case OpLogin, OpRegister:
			return reduceSignIn(s, a)
		case OpLogout:
			if a.Phase == PhasePending {
				s.Status = StatusLoggingOut
				s.Loading = true
				return s
			}
			return anonymous()
		case OpGetCurrentUser:
			switch a.Phase {
			case PhasePending:
				s.Loading = true
				if !s.IsAuthenticated {
					s.Status = StatusAuthenticating
				}
			case PhaseFulfilled:
				s.User, _ = a.Payload.(*model.Profile)
				s.IsAuthenticated = true
				s.Status = StatusAuthenticated
				s.Loading = false
			case PhaseRejected:
				return anonymous()
			}
			return s
		case OpUpdateProfile:
			switch a.Phase {
			case PhasePending:
				s.Loading = true
				s.Error, s.ErrorDetails = "", nil
			case PhaseFulfilled:
				if p, ok := a.Payload.(*model.Profile); ok && p != nil {
					s.User = p
				}
				s.Loading = false
			case PhaseRejected:
				s.Loading = false
				s.Error, s.ErrorDetails = errorMessage(a.Err), errorDetails(a.Err)
			}
			return s
		}
	}
	return s
}

func reduceSignIn(s AuthState, a AsyncAction) AuthState {
	switch a.Phase {
	case PhasePending:
		s.Status = StatusAuthenticating
		s.Loading = true
		s.Error, s.ErrorDetails = "", nil
	case PhaseFulfilled:
		if p, ok := a.Payload.(*model.Profile); ok && p != nil {
			s.User = p
		}
		s.IsAuthenticated = true
		s.Status = StatusAuthenticated
		s.Loading = false
	case PhaseRejected:
		s = anonymous()
		s.Error, s.ErrorDetails = errorMessage(a.Err), errorDetails(a.Err)
	}
	return s
}

func errorDetails(err error) *api.Error {
	if apiErr, ok := api.AsError(err); ok {
		return apiErr
	}
	if err == nil {
		return nil
	}
	return &api.Error{Kind: api.KindUnknown, Code: api.CodeUnknown, Message: err.Error(), Err: err}
}

func (s *Store) Login(ctx context.Context, creds model.Credentials) (*model.Profile, error) {
	s.pending(ctx, OpLogin)
	sess, err := s.auth.Login(ctx, creds)
	if err != nil {
		s.rejected(ctx, OpLogin, err)
		return nil, err
	}
	s.fulfilled(ctx, OpLogin, sess.User)
	return sess.User, nil
}

// Register validates the form locally, signs up, and then refreshes the
// profile in the background. A failure of that refresh is logged only; the
// registration has already succeeded.
func (s *Store) Register(ctx context.Context, reg model.Registration) (*model.Profile, error) {
	s.pending(ctx, OpRegister)
	if err := s.validateRegistration(reg); err != nil {
		s.rejected(ctx, OpRegister, err)
		return nil, err
	}
	sess, err := s.auth.Register(ctx, reg)
	if err != nil {
		s.rejected(ctx, OpRegister, err)
		return nil, err
	}
	session := s.Dispatch(ctx, AsyncAction{Op: OpRegister, Phase: PhaseFulfilled, Payload: sess.User}).Auth.session

	bg := context.WithoutCancel(ctx)
	s.goFollowUp(func() {
		p, err := s.auth.Me(bg)
		if err != nil {
			s.logger.Warn("profile refresh after registration failed", zap.Error(err))
			return
		}
		if !s.refreshProfile(bg, p, session) {
			s.logger.Debug("dropped profile refresh after logout")
		}
	})
	return sess.User, nil
}

// Logout always ends anonymous. The remote error, if any, is returned for
// logging but does not change the outcome.
func (s *Store) Logout(ctx context.Context) error {
	s.pending(ctx, OpLogout)
	var err error
	if s.auth != nil {
		err = s.auth.Logout(ctx)
	}
	if err != nil {
		s.logger.Warn("remote logout failed", zap.Error(err))
	}
	s.fulfilled(ctx, OpLogout, nil)
	return err
}

// GetCurrentUser refreshes the profile. Any failure resets the slice to
// anonymous and clears the durable flag. If the user logs out meanwhile the
// profile is dropped and ErrSessionEnded is returned.
func (s *Store) GetCurrentUser(ctx context.Context) (*model.Profile, error) {
	session := s.Dispatch(ctx, AsyncAction{Op: OpGetCurrentUser, Phase: PhasePending}).Auth.session
	p, err := s.auth.Me(ctx)
	if err == nil && p == nil {
		err = errors.New("empty profile")
	}
	if err != nil {
		s.rejected(ctx, OpGetCurrentUser, err)
		return nil, err
	}
	if !s.refreshProfile(ctx, p, session) {
		return nil, ErrSessionEnded
	}
	return p, nil
}

// refreshProfile applies p unless a logout happened after session was read.
// It reports whether p was applied.
func (s *Store) refreshProfile(ctx context.Context, p *model.Profile, session uint64) bool {
	return s.Dispatch(ctx, profileRefreshed{profile: p, session: session}).Auth.session == session
}

func (s *Store) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.Profile, error) {
	s.pending(ctx, OpUpdateProfile)
	p, err := s.auth.UpdateProfile(ctx, update)
	if err != nil {
		s.rejected(ctx, OpUpdateProfile, err)
		return nil, err
	}
	s.fulfilled(ctx, OpUpdateProfile, p)
	return p, nil
}

func (s *Store) ClearAuthError(ctx context.Context) {
	s.Dispatch(ctx, ClearAuthError{})
}

func (s *Store) ForceLogout(ctx context.Context) {
	s.Dispatch(ctx, ForceLogout{})
}

// CurrentUser returns the signed-in user, or nil.
func (s *Store) CurrentUser() *model.Profile {
	auth := s.State().Auth
	if !auth.IsAuthenticated {
		return nil
	}
	return auth.User
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

var fieldLabels = map[string]string{
	"firstName": "First name",
	"lastName":  "Last name",
	"email":     "Email",
	"password":  "Password",
}

// validateRegistration returns an *api.Error of kind ValidationError with one
// message per offending field.
func (s *Store) validateRegistration(reg model.Registration) error {
	err := s.validate.Struct(reg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return api.NewValidationError(err.Error(), nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		if label == "" {
			label = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = label + " is required"
		case "email":
			fields[fe.Field()] = "Invalid email address"
		case "min":
			fields[fe.Field()] = fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		case "max":
			fields[fe.Field()] = fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		default:
			fields[fe.Field()] = label + " is invalid"
		}
	}
	return api.NewValidationError("Please correct the highlighted fields", fields)
}
