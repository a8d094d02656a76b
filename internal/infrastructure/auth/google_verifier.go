package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/you/authsvc/domain"
)

const (
	googleJWKSURL   = "https://www.googleapis.com/oauth2/v3/certs"
	googleIssuer    = "https://accounts.google.com"
	googleIssuerAlt = "accounts.google.com"
)

// GoogleVerifierConfig configures the Google ID token verifier. Zero values
// fall back to Google's published endpoints and issuers.
type GoogleVerifierConfig struct {
	ClientID   string
	JWKSURL    string
	Issuers    []string
	HTTPClient *http.Client
}

// GoogleVerifier implements domain.IdentityVerifier against Google's OpenID
// key set. The provider's public keys are the only trust root that lives
// outside the service; an unverified payload is never accepted.
type GoogleVerifier struct {
	clientID   string
	jwksURL    string
	issuers    []string
	httpClient *http.Client
}

// NewGoogleVerifier creates a verifier for the given OAuth client ID.
func NewGoogleVerifier(cfg GoogleVerifierConfig) *GoogleVerifier {
	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = googleJWKSURL
	}
	issuers := cfg.Issuers
	if len(issuers) == 0 {
		issuers = []string{googleIssuer, googleIssuerAlt}
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	return &GoogleVerifier{
		clientID:   cfg.ClientID,
		jwksURL:    jwksURL,
		issuers:    issuers,
		httpClient: httpClient,
	}
}

type jwksDocument struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Verify implements domain.IdentityVerifier
func (v *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*domain.ExternalIdentity, error) {
	keySet, err := v.fetchJWKS(ctx)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(
		rawToken,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			kid, _ := token.Header["kid"].(string)
			if strings.TrimSpace(kid) != "" {
				key, ok := keySet[kid]
				if !ok {
					return nil, fmt.Errorf("unknown key id: %s", kid)
				}
				return key, nil
			}
			if len(keySet) == 1 {
				for _, key := range keySet {
					return key, nil
				}
			}
			return nil, fmt.Errorf("missing key id")
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("validate id token: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid id token")
	}

	issuer := stringClaim(claims, "iss")
	if !v.trustedIssuer(issuer) {
		return nil, fmt.Errorf("untrusted issuer: %s", issuer)
	}

	subject := stringClaim(claims, "sub")
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("id token missing sub")
	}

	return &domain.ExternalIdentity{
		Subject:    subject,
		Email:      strings.ToLower(strings.TrimSpace(stringClaim(claims, "email"))),
		GivenName:  strings.TrimSpace(stringClaim(claims, "given_name")),
		FamilyName: strings.TrimSpace(stringClaim(claims, "family_name")),
	}, nil
}

func (v *GoogleVerifier) trustedIssuer(issuer string) bool {
	for _, trusted := range v.issuers {
		if issuer == trusted {
			return true
		}
	}
	return false
}

func (v *GoogleVerifier) fetchJWKS(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("jwks fetch failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for i, key := range doc.Keys {
		if strings.ToUpper(strings.TrimSpace(key.Kty)) != "RSA" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(key.N))
		if err != nil {
			return nil, fmt.Errorf("decode jwks n: %w", err)
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(key.E))
		if err != nil {
			return nil, fmt.Errorf("decode jwks e: %w", err)
		}
		eBig := new(big.Int).SetBytes(eBytes)
		if !eBig.IsInt64() || eBig.Int64() <= 1 {
			return nil, fmt.Errorf("invalid jwks exponent for key %s", key.Kid)
		}

		kid := strings.TrimSpace(key.Kid)
		if kid == "" {
			kid = fmt.Sprintf("key-%d", i)
		}
		keys[kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nBytes),
			E: int(eBig.Int64()),
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no RSA keys found in jwks")
	}
	return keys, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, ok := claims[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
