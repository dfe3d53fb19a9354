package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// KakaoClient handles the Kakao OAuth 2.0 flow.
type KakaoClient struct {
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
}

func NewKakaoClient(clientID, clientSecret, redirectURI string) *KakaoClient {
	return &KakaoClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IsConfigured returns true if the REST API key is set. Kakao treats the
// client secret as optional.
func (c *KakaoClient) IsConfigured() bool {
	return c.clientID != ""
}

// AuthURL returns the Kakao authorization URL.
func (c *KakaoClient) AuthURL(state, codeChallenge string) string {
	params := url.Values{
		"client_id":             {c.clientID},
		"redirect_uri":          {c.redirectURI},
		"response_type":         {"code"},
		"state":                 {state},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"S256"},
	}
	return "https://kauth.kakao.com/oauth/authorize?" + params.Encode()
}

// ExchangeCode exchanges the authorization code for tokens.
func (c *KakaoClient) ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenResponse, error) {
	data := url.Values{
		"client_id":     {c.clientID},
		"code":          {code},
		"code_verifier": {codeVerifier},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {c.redirectURI},
	}
	if c.clientSecret != "" {
		data.Set("client_secret", c.clientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://kauth.kakao.com/oauth/token",
		strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed: %s", string(body))
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	return &token, nil
}

// kakaoUserInfo is the raw /v2/user/me payload. The avatar lives under
// properties.profile_image rather than a top-level field.
type kakaoUserInfo struct {
	ID         int64 `json:"id"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
	KakaoAccount struct {
		Email           string `json:"email"`
		IsEmailVerified bool   `json:"is_email_verified"`
	} `json:"kakao_account"`
}

// GetUserInfo fetches and normalizes the user's Kakao profile.
func (c *KakaoClient) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", "https://kapi.kakao.com/v2/user/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %s", string(body))
	}

	var raw kakaoUserInfo
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo: %w", err)
	}
	if raw.ID == 0 {
		return nil, errors.New("invalid userinfo: missing id")
	}

	return &UserInfo{
		Sub:           strconv.FormatInt(raw.ID, 10),
		Email:         raw.KakaoAccount.Email,
		EmailVerified: raw.KakaoAccount.IsEmailVerified,
		Name:          raw.Properties.Nickname,
		AvatarURL:     raw.Properties.ProfileImage,
	}, nil
}
