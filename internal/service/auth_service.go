package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"github.com/meal-mate-devs/payouts/internal"
	"github.com/meal-mate-devs/payouts/internal/storage"
	"golang.org/x/crypto/bcrypt"
	"time"
)

var (
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnknownChef       = errors.New("user is not linked to a chef account")
	ErrChefNotVerified   = errors.New("chef session was not accepted by the backend")
)

const (
	tokenExpiry = 72 * time.Hour
	// user id (4 bytes) + expiry unix seconds (8 bytes), followed by the signature
	tokenPayloadLen = 12
)

type AuthService interface {
	RegisterUser(ctx context.Context, login string, pass string, chefToken string) (internal.Token, error)
	AuthUser(ctx context.Context, login string, pass string) (internal.Token, error)
	CheckToken(token string) (internal.UserID, error)
	ResolveChef(ctx context.Context, userID internal.UserID) (internal.ChefID, error)
}

// ChefVerifier exchanges a chef's backend session token for the chef id it
// belongs to.
type ChefVerifier interface {
	VerifyChef(ctx context.Context, chefToken string) (internal.ChefID, error)
}

type AuthServiceImpl struct {
	Store     storage.UserStorage
	Chefs     ChefVerifier
	SecretKey []byte
}

// RegisterUser links a new login to the chef that owns chefToken. A chef can
// be linked to one login only.
func (a *AuthServiceImpl) RegisterUser(ctx context.Context, login string, pass string, chefToken string) (internal.Token, error) {
	if chefToken == "" {
		return "", ErrChefNotVerified
	}
	chefID, err := a.Chefs.VerifyChef(ctx, chefToken)
	if err != nil {
		return "", err
	}
	hashedPass, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("create password hash error: %w", err)
	}
	userID, err := a.Store.AddUser(ctx, login, hex.EncodeToString(hashedPass), chefID)
	if err != nil {
		return "", err
	}
	return a.CreateToken(userID)
}

func (a *AuthServiceImpl) AuthUser(ctx context.Context, login string, pass string) (internal.Token, error) {
	userID, hashedPass, err := a.Store.GetUser(ctx, login)
	if err != nil {
		return "", err
	}
	hash, err := hex.DecodeString(hashedPass)
	if err != nil {
		return "", fmt.Errorf("decode hashed password error: %w", err)
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(pass)) != nil {
		return "", ErrIncorrectPassword
	}
	return a.CreateToken(userID)
}

func (a *AuthServiceImpl) ResolveChef(ctx context.Context, userID internal.UserID) (internal.ChefID, error) {
	chefID, err := a.Store.GetChefID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && chefID == "") {
		return "", ErrUnknownChef
	}
	return chefID, err
}

func (a *AuthServiceImpl) CreateToken(id internal.UserID) (internal.Token, error) {
	payload := binary.BigEndian.AppendUint32(make([]byte, 0, tokenPayloadLen+sha256.Size), uint32(id))
	payload = binary.BigEndian.AppendUint64(payload, uint64(time.Now().Add(tokenExpiry).Unix()))
	return internal.Token(hex.EncodeToString(append(payload, a.sign(payload)...))), nil
}

func (a *AuthServiceImpl) CheckToken(token string) (internal.UserID, error) {
	data, err := hex.DecodeString(token)
	if err != nil || len(data) <= tokenPayloadLen {
		return 0, ErrUnauthorized
	}
	payload, signature := data[:tokenPayloadLen], data[tokenPayloadLen:]
	if !hmac.Equal(a.sign(payload), signature) {
		return 0, ErrUnauthorized
	}
	expTime := binary.BigEndian.Uint64(payload[4:])
	if time.Now().Unix() > int64(expTime) {
		return 0, ErrUnauthorized
	}
	return internal.UserID(binary.BigEndian.Uint32(payload[:4])), nil
}

func (a *AuthServiceImpl) sign(payload []byte) []byte {
	h := hmac.New(sha256.New, a.SecretKey)
	h.Write(payload)
	return h.Sum(nil)
}

var _ AuthService = (*AuthServiceImpl)(nil)
