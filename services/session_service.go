package services

import (
	"encoding/json"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/walletsign/go-walletsign-server/global"
	"github.com/walletsign/go-walletsign-server/types"
	"github.com/walletsign/go-walletsign-server/util"
)

const sessionIssuer = "walletsign"

// SessionService issues and validates stateless bearer tokens. A token is a
// compact JWS over the session claims, signed with the server ed25519 key.
// Nothing is stored server side, expiry and integrity come from the token
// itself.
type SessionService struct{}

func NewSessionService() *SessionService {
	return &SessionService{}
}

// Issue signs a session token for the verified (email, wallet) pair
func (ss *SessionService) Issue(email, wallet string) (string, error) {
	if global.PrivateKey == nil {
		return "", types.ErrMisconfigured
	}
	now := time.Now().UTC()
	claims := &types.SessionClaims{
		Email:         util.NormalizeEmail(email),
		WalletAddress: util.NormalizeWalletAddress(wallet),
		Issuer:        sessionIssuer,
		IssuedAt:      now.Unix(),
		ExpiresAt:     now.Add(time.Duration(global.Conf.Session.TTL()) * time.Minute).Unix(),
	}
	payload, mErr := json.Marshal(claims)
	if mErr != nil {
		return "", mErr
	}

	signer, sErr := jose.NewSigner(jose.SigningKey{Algorithm: jose.EdDSA, Key: global.PrivateKey}, nil)
	if sErr != nil {
		return "", sErr
	}
	object, signErr := signer.Sign(payload)
	if signErr != nil {
		return "", signErr
	}
	return object.CompactSerialize()
}

// Validate checks the token signature and expiry and returns the embedded
// claims. A tampered or undecodable token is ErrTokenMalformed, a genuine but
// stale one is ErrTokenExpired.
func (ss *SessionService) Validate(token string) (*types.SessionClaims, error) {
	if global.PublicKey == nil {
		return nil, types.ErrMisconfigured
	}
	object, pErr := jose.ParseSigned(token)
	if pErr != nil {
		return nil, types.ErrTokenMalformed
	}
	payload, vErr := object.Verify(global.PublicKey)
	if vErr != nil {
		return nil, types.ErrTokenMalformed
	}
	var claims types.SessionClaims
	if uErr := json.Unmarshal(payload, &claims); uErr != nil {
		return nil, types.ErrTokenMalformed
	}
	if claims.ExpiresAt < time.Now().UTC().Unix() {
		return nil, types.ErrTokenExpired
	}
	return &claims, nil
}
