package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/obarros/lojinha/internal/config"
	"github.com/obarros/lojinha/internal/constants"
	inErrors "github.com/obarros/lojinha/internal/errors"
	"github.com/obarros/lojinha/internal/otel"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}

// SignUpResult distinguishes "account created and signed in" from
// "account created, email confirmation pending". The provider signals
// the latter by returning a user without a session.
type SignUpResult struct {
	User                 User `json:"user"`
	RequiresConfirmation bool `json:"requires_confirmation"`
}

// Client talks to the hosted auth provider and holds the user-state
// cell every session change is published through.
type Client struct {
	baseUrl string
	key     string
	http    *http.Client

	mu       sync.RWMutex
	user     *User
	watchers []chan *User
}

func NewClient(cfg config.Store) *Client {
	return &Client{
		baseUrl: strings.TrimRight(cfg.Url, "/"),
		key:     cfg.Key,
		http:    otelhttp.DefaultClient,
	}
}

// User returns the currently signed-in user, nil when signed out.
func (cl *Client) User() *User {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.user
}

// Subscribe returns a channel that receives the user on every session
// change (nil on sign-out). Slow subscribers miss updates instead of
// blocking sign-in/out.
func (cl *Client) Subscribe() <-chan *User {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	ch := make(chan *User, 1)
	cl.watchers = append(cl.watchers, ch)
	return ch
}

func (cl *Client) setUser(user *User) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.user = user
	for _, ch := range cl.watchers {
		select {
		case ch <- user:
		default:
		}
	}
}

type authError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

func (e authError) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Msg != "":
		return e.Msg
	default:
		return e.ErrorDescription
	}
}

func (cl *Client) post(
	c context.Context,
	path string,
	token string,
	body interface{},
	out interface{},
) error {
	payload := &bytes.Buffer{}
	if body != nil {
		if err := json.NewEncoder(payload).Encode(body); err != nil {
			return fmt.Errorf("failed encoding request body with error=%w", err)
		}
	}

	req, err := http.NewRequestWithContext(c, http.MethodPost, cl.baseUrl+path, payload)
	if err != nil {
		return fmt.Errorf("failed creating request to auth provider with error=%w", err)
	}
	req.Header.Set("apikey", cl.key)
	req.Header.Set("Content-Type", "application/json")
	if token == "" {
		token = cl.key
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := cl.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed sending request to auth provider with error=%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		authErr := authError{}
		_ = json.NewDecoder(resp.Body).Decode(&authErr)
		return fmt.Errorf("auth provider returned status=%d message=%s", resp.StatusCode, authErr.text())
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (cl *Client) SignIn(c context.Context, email string, password string) (Session, error) {
	c, span := otel.Tracer.Start(c, "AuthClient SignIn")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "AuthClient SignIn").
		Str(constants.KEY_EMAIL, email).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "signing in").Logger()
	logger.Info().Msg("signing in")
	session := Session{}
	err := cl.post(
		c,
		"/auth/v1/token?grant_type=password",
		"",
		map[string]string{"email": email, "password": password},
		&session,
	)
	if err != nil {
		err = fmt.Errorf("failed signing in with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}
	logger.Info().Msg("signed in")

	cl.setUser(&session.User)

	return session, nil
}

func (cl *Client) SignUp(c context.Context, email string, password string) (SignUpResult, error) {
	c, span := otel.Tracer.Start(c, "AuthClient SignUp")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "AuthClient SignUp").
		Str(constants.KEY_EMAIL, email).
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "signing up").Logger()
	logger.Info().Msg("signing up")
	signUpResponse := struct {
		User    *User    `json:"user"`
		Session *Session `json:"session"`
		// the sign-up endpoint answers with the bare user object when
		// confirmation is pending
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
	}{}
	err := cl.post(
		c,
		"/auth/v1/signup",
		"",
		map[string]string{"email": email, "password": password},
		&signUpResponse,
	)
	if err != nil {
		err = fmt.Errorf("failed signing up with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return SignUpResult{}, err
	}
	logger.Info().Msg("signed up")

	user := signUpResponse.User
	if user == nil && signUpResponse.ID != uuid.Nil {
		user = &User{ID: signUpResponse.ID, Email: signUpResponse.Email}
	}
	// A missing user is the provider's fake success for an already
	// registered email, never a bare success.
	if user == nil {
		otel.RecordError(inErrors.ErrSignUpFailed, span)
		logger.Error().Err(inErrors.ErrSignUpFailed).Msg(inErrors.ErrSignUpFailed.Error())
		return SignUpResult{}, inErrors.ErrSignUpFailed
	}

	if signUpResponse.Session == nil {
		logger.Info().Msg("sign up requires email confirmation")
		return SignUpResult{User: *user, RequiresConfirmation: true}, nil
	}

	cl.setUser(user)
	return SignUpResult{User: *user}, nil
}

func (cl *Client) SignOut(c context.Context, accessToken string) error {
	c, span := otel.Tracer.Start(c, "AuthClient SignOut")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "AuthClient SignOut").
		Str(constants.KEY_PROCESS, "signing out").
		Logger()

	logger.Info().Msg("signing out")
	err := cl.post(c, "/auth/v1/logout", accessToken, nil, nil)
	if err != nil {
		err = fmt.Errorf("failed signing out with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("signed out")

	cl.setUser(nil)

	return nil
}
