package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"bloodbridge-backend/internal/domain"
	"bloodbridge-backend/internal/logger"
)

// signInEndpoint is the Identity Toolkit password sign-in REST endpoint. The
// Admin SDK cannot exchange a password for a session token, so logins go
// through the same API the web client uses.
const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// FirebaseProvider implements Provider on Firebase Authentication.
type FirebaseProvider struct {
	client *auth.Client
	apiKey string
	http   *http.Client
}

type FirebaseOptions struct {
	ProjectID       string
	CredentialsFile string
	// WebAPIKey authorizes the password sign-in REST call.
	WebAPIKey string
}

func NewFirebaseProvider(ctx context.Context, opts FirebaseOptions) (*FirebaseProvider, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: opts.ProjectID}, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	return &FirebaseProvider{
		client: client,
		apiKey: opts.WebAPIKey,
		http:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (p *FirebaseProvider) VerifySession(ctx context.Context, token string) (*domain.Session, error) {
	logger.ExternalServiceCall("firebase", "VerifyIDToken")
	decoded, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	logger.ExternalServiceResult("firebase", "VerifyIDToken", err)
	if err != nil {
		if auth.IsIDTokenRevoked(err) || auth.IsIDTokenExpired(err) || auth.IsIDTokenInvalid(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, domain.Transientf("verify session: %v", err)
	}
	return sessionFromClaims(decoded), nil
}

func sessionFromClaims(t *auth.Token) *domain.Session {
	s := &domain.Session{UID: t.UID}
	if v, ok := t.Claims["email"].(string); ok {
		s.Email = v
	}
	if v, ok := t.Claims["name"].(string); ok {
		s.DisplayName = v
	}
	if v, ok := t.Claims["picture"].(string); ok {
		s.AvatarURL = v
	}
	return s
}

func (p *FirebaseProvider) LoginWithCredentials(ctx context.Context, email, password string) (string, *domain.Session, error) {
	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return "", nil, err
	}

	url := fmt.Sprintf("%s?key=%s", signInEndpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	logger.ExternalServiceCall("firebase", "signInWithPassword", "email", email)
	resp, err := p.http.Do(req)
	if err != nil {
		logger.ExternalServiceResult("firebase", "signInWithPassword", err)
		return "", nil, domain.Transientf("sign in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		// Identity Toolkit reports bad credentials as 400 with an error code
		// body; every variant maps to the same caller-facing failure.
		return "", nil, domain.ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return "", nil, domain.Transientf("sign in: unexpected status %d", resp.StatusCode)
	}

	var signIn struct {
		IDToken     string `json:"idToken"`
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		PhotoURL    string `json:"profilePicture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signIn); err != nil {
		return "", nil, domain.Transientf("sign in: decode response: %v", err)
	}

	session := &domain.Session{
		UID:         signIn.LocalID,
		Email:       signIn.Email,
		DisplayName: signIn.DisplayName,
		AvatarURL:   signIn.PhotoURL,
	}
	return signIn.IDToken, session, nil
}

func (p *FirebaseProvider) CreateIdentity(ctx context.Context, email, password, displayName string) (*domain.Session, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}

	logger.ExternalServiceCall("firebase", "CreateUser", "email", email)
	record, err := p.client.CreateUser(ctx, params)
	logger.ExternalServiceResult("firebase", "CreateUser", err)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, domain.Validationf("an identity already exists for %s", email)
		}
		return nil, domain.Transientf("create identity: %v", err)
	}

	return &domain.Session{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		AvatarURL:   record.PhotoURL,
	}, nil
}

func (p *FirebaseProvider) UpdateDisplayProfile(ctx context.Context, email, displayName, avatarURL string) error {
	record, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return domain.ErrNotFound
		}
		return domain.Transientf("lookup identity: %v", err)
	}

	params := &auth.UserToUpdate{}
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	if avatarURL != "" {
		params = params.PhotoURL(avatarURL)
	}

	logger.ExternalServiceCall("firebase", "UpdateUser", "email", email)
	_, err = p.client.UpdateUser(ctx, record.UID, params)
	logger.ExternalServiceResult("firebase", "UpdateUser", err)
	if err != nil {
		return domain.Transientf("update profile: %v", err)
	}
	return nil
}

func (p *FirebaseProvider) RevokeSessions(ctx context.Context, email string) error {
	record, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			// No identity means no sessions to revoke.
			return nil
		}
		return domain.Transientf("lookup identity: %v", err)
	}

	logger.ExternalServiceCall("firebase", "RevokeRefreshTokens", "email", email)
	err = p.client.RevokeRefreshTokens(ctx, record.UID)
	logger.ExternalServiceResult("firebase", "RevokeRefreshTokens", err)
	if err != nil {
		return domain.Transientf("revoke sessions: %v", err)
	}
	return nil
}
