package google

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vtarasov/blog-service/internal/config"
	"github.com/vtarasov/blog-service/internal/service"
	"golang.org/x/oauth2"
)

const (
	authURL     = "https://accounts.google.com/o/oauth2/auth"
	tokenURL    = "https://oauth2.googleapis.com/token"
	userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	stateCookie = "oauth_state"
)

// Client handles login through Google as an external identity provider
type Client struct {
	oauth     *oauth2.Config
	svc       *service.Service
	client    *http.Client
	log       *logrus.Logger
	clientURL string
}

// NewClient initializes a new Google login client
func NewClient(cfg *config.Config, svc *service.Service, log *logrus.Logger) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
		},
		svc: svc,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log:       log,
		clientURL: cfg.ClientURL,
	}
}

// Login redirects the browser to the provider's consent page
func (c *Client) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   300,
	})
	http.Redirect(w, r, c.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback exchanges the provider's code, resolves or creates the user and
// redirects to the client with the issued token in a query parameter.
// Carrying the token in the URL mirrors the observed client contract.
func (c *Client) Callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		c.fail(w, r, fmt.Errorf("state mismatch"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		c.fail(w, r, fmt.Errorf("no code in callback"))
		return
	}

	oauthToken, err := c.oauth.Exchange(r.Context(), code)
	if err != nil {
		c.fail(w, r, fmt.Errorf("code exchange failed: %w", err))
		return
	}

	info, err := c.fetchUserInfo(r, oauthToken)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	result, err := c.svc.LoginExternal(info.ID, info.Email, info.Name)
	if err != nil {
		c.fail(w, r, fmt.Errorf("external login failed: %w", err))
		return
	}

	redirect := fmt.Sprintf("%s/auth/callback?token=%s", c.clientURL, url.QueryEscape(result.Token))
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

type userInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (c *Client) fetchUserInfo(r *http.Request, t *oauth2.Token) (*userInfo, error) {
	client := oauth2.NewClient(r.Context(), oauth2.StaticTokenSource(t))
	client.Timeout = c.client.Timeout

	resp, err := client.Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected userinfo status code: %d", resp.StatusCode)
	}

	info := &userInfo{}
	if err := json.NewDecoder(resp.Body).Decode(info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("incomplete userinfo from provider")
	}
	return info, nil
}

func (c *Client) fail(w http.ResponseWriter, r *http.Request, err error) {
	c.log.Errorf("Google login failed: %v", err)
	http.Redirect(w, r, c.clientURL+"/login", http.StatusTemporaryRedirect)
}
