package identity

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bloodbridge-backend/internal/domain"
)

// LocalProvider is a self-contained identity provider for development and
// tests. Identities live in memory; session tokens are HS256 JWTs whose
// issued-at is compared against a per-identity revocation watermark, which
// gives the same revoke-then-reject behavior as the hosted provider.
type LocalProvider struct {
	secret []byte

	mu      sync.RWMutex
	records map[string]*localRecord // keyed by lowercased email
	nextUID int
}

type localRecord struct {
	uid          string
	email        string
	passwordHash []byte
	displayName  string
	avatarURL    string
	revokedAt    time.Time
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func NewLocalProvider(secret string) *LocalProvider {
	return &LocalProvider{
		secret:  []byte(secret),
		records: make(map[string]*localRecord),
	}
}

func (p *LocalProvider) VerifySession(ctx context.Context, tokenString string) (*domain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	p.mu.RLock()
	rec, found := p.records[strings.ToLower(claims.Email)]
	p.mu.RUnlock()
	if !found {
		return nil, domain.ErrUnauthorized
	}
	if claims.IssuedAt == nil || claims.IssuedAt.Time.Before(rec.revokedAt) {
		// Token predates a revocation; the session is dead even though the
		// signature is fine.
		return nil, domain.ErrUnauthorized
	}

	return &domain.Session{
		UID:         rec.uid,
		Email:       rec.email,
		DisplayName: rec.displayName,
		AvatarURL:   rec.avatarURL,
	}, nil
}

func (p *LocalProvider) LoginWithCredentials(ctx context.Context, email, password string) (string, *domain.Session, error) {
	p.mu.RLock()
	rec, found := p.records[strings.ToLower(email)]
	p.mu.RUnlock()
	if !found {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := p.mint(rec)
	if err != nil {
		return "", nil, err
	}
	return token, &domain.Session{
		UID:         rec.uid,
		Email:       rec.email,
		DisplayName: rec.displayName,
		AvatarURL:   rec.avatarURL,
	}, nil
}

func (p *LocalProvider) CreateIdentity(ctx context.Context, email, password, displayName string) (*domain.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := p.records[key]; exists {
		return nil, domain.Validationf("an identity already exists for %s", email)
	}

	p.nextUID++
	rec := &localRecord{
		uid:          "local-" + strconv.Itoa(p.nextUID),
		email:        email,
		passwordHash: hash,
		displayName:  displayName,
	}
	p.records[key] = rec

	return &domain.Session{UID: rec.uid, Email: rec.email, DisplayName: rec.displayName}, nil
}

func (p *LocalProvider) UpdateDisplayProfile(ctx context.Context, email, displayName, avatarURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, found := p.records[strings.ToLower(email)]
	if !found {
		return domain.ErrNotFound
	}
	if displayName != "" {
		rec.displayName = displayName
	}
	if avatarURL != "" {
		rec.avatarURL = avatarURL
	}
	return nil
}

func (p *LocalProvider) RevokeSessions(ctx context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, found := p.records[strings.ToLower(email)]
	if !found {
		return nil
	}
	rec.revokedAt = time.Now()
	return nil
}

func (p *LocalProvider) mint(rec *localRecord) (string, error) {
	claims := sessionClaims{
		Email: rec.email,
		Name:  rec.displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   rec.uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "bloodbridge-local",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}
