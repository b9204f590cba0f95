package services

import (
	"context"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/yungbote/typecast-backend/internal/platform/ctxutil"
)

// ClientMetadata is stored with each quiz session for funnel analysis. The
// raw IP address is never stored.
type ClientMetadata struct {
	UserAgent string `json:"user_agent,omitempty"`
	Locale    string `json:"locale,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	IPHash    string `json:"ip_hash,omitempty"`
}

// HashIP returns a keyed, truncated digest of ip, or "" for an empty ip.
func HashIP(ip, salt string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}
	key := []byte(salt)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		return ""
	}
	_, _ = h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ProfileClaims are the optional identity-provider claims used to name a new
// profile.
type ProfileClaims struct {
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

func claimsFromContext(ctx context.Context, identity string) ProfileClaims {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.Identity != identity {
		return ProfileClaims{}
	}
	return ProfileClaims{DisplayName: rd.DisplayName, Email: rd.Email}
}
