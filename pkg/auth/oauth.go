package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	// ClientSecretsFile holds the Google API credentials downloaded from the
	// cloud console. It lives in the taskboard home directory.
	ClientSecretsFile = "credentials.json"

	// TokenFile is where the OAuth token (access + refresh) is cached.
	TokenFile = "token.json"

	// LocalhostAuthPort is the port the local redirect listener binds.
	LocalhostAuthPort = "6789"
)

// Scopes needed to mirror tasks onto a calendar.
var Scopes = []string{
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}

// GetConfig creates an oauth2.Config from the client secrets file in dir.
func GetConfig(dir string, scopes []string, log *slog.Logger) (*oauth2.Config, error) {
	clientSecretsFile := filepath.Join(dir, ClientSecretsFile)
	b, err := os.ReadFile(clientSecretsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", clientSecretsFile, err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	parsedURL, parseErr := url.Parse(config.RedirectURL)
	switch {
	case parseErr != nil:
		log.Warn("could not parse redirect url, using it as is", slog.String("url", config.RedirectURL), slog.Any("error", parseErr))
	case parsedURL.Hostname() == "localhost" || parsedURL.Hostname() == "127.0.0.1":
		// The listener always binds LocalhostAuthPort, so the redirect must match it.
		if parsedURL.Port() != "" && parsedURL.Port() != LocalhostAuthPort {
			log.Warn("forcing localhost redirect port", slog.String("configured", parsedURL.Port()), slog.String("port", LocalhostAuthPort))
		}
		parsedURL.Host = fmt.Sprintf("%s:%s", parsedURL.Hostname(), LocalhostAuthPort)
		config.RedirectURL = parsedURL.String()
	case config.RedirectURL == "urn:ietf:wg:oauth:2.0:oob":
		config.RedirectURL = fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
		log.Info("overriding out-of-band redirect", slog.String("url", config.RedirectURL))
	default:
		log.Warn("redirect url is neither a localhost callback nor out-of-band", slog.String("url", config.RedirectURL))
	}

	return config, nil
}

// GetClient returns an authenticated *http.Client. It loads the cached token
// or runs the browser authorization flow when there is none.
func GetClient(ctx context.Context, dir string, scopes []string, log *slog.Logger) (*http.Client, error) {
	config, err := GetConfig(dir, scopes, log)
	if err != nil {
		return nil, err
	}

	tokenFile := filepath.Join(dir, TokenFile)
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		log.Info("no cached token, starting web authorization", slog.String("path", tokenFile))
		tok, err = getTokenFromWeb(ctx, config, log)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := saveToken(tokenFile, tok); err != nil {
			return nil, err
		}
	}

	// Persist the token again if the source refreshed it.
	src := config.TokenSource(ctx, tok)
	if current, err := src.Token(); err != nil {
		log.Warn("could not refresh token", slog.Any("error", err))
	} else if current.AccessToken != tok.AccessToken || current.RefreshToken != tok.RefreshToken {
		log.Debug("token refreshed, saving")
		if err := saveToken(tokenFile, current); err != nil {
			log.Warn("could not save refreshed token", slog.Any("error", err))
		}
	}

	return oauth2.NewClient(ctx, src), nil
}

// getTokenFromWeb runs the authorization code flow through a local listener.
func getTokenFromWeb(ctx context.Context, config *oauth2.Config, log *slog.Logger) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}
	defer listener.Close()

	server := &http.Server{
		Handler:      callbackHandler(codeCh, errCh),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	defer server.Shutdown(context.Background())

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errCh <- fmt.Errorf("HTTP server error: %w", err):
			default:
			}
		}
	}()

	// AccessTypeOffline makes Google return a refresh token.
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open the following URL in your browser to authorize taskboard:\n%s\n", authURL)
	log.Info("waiting for authorization code", slog.String("redirect", config.RedirectURL))

	select {
	case authCode := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := config.Exchange(exchangeCtx, authCode)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("authorization timed out, please try again")
	}
}

func callbackHandler(codeCh chan<- string, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Authorization code not found", http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("authorization code not found in redirect URL"):
			default:
			}
			return
		}
		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		select {
		case codeCh <- code:
		default:
		}
	})
}

// tokenFromFile reads an oauth2.Token from a JSON file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", file, err)
	}
	return tok, nil
}

// saveToken writes an oauth2.Token readable by the owner only.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// ResetToken removes the cached token so the next call re-authorizes.
func ResetToken(dir string) error {
	err := os.Remove(filepath.Join(dir, TokenFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete token file: %w", err)
	}
	return nil
}

// GetCalendarService creates an authenticated Google Calendar service.
func GetCalendarService(ctx context.Context, dir string, log *slog.Logger) (*calendar.Service, error) {
	client, err := GetClient(ctx, dir, Scopes, log)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client for Calendar API: %w", err)
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google Calendar service: %w", err)
	}
	return srv, nil
}
