package groupable

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/groupable/groupable/internal/models"
	"gorm.io/gorm"
)

// inviteCodeAlphabet is the character set for generated invite codes.
const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Invites generates invite codes and resolves them against the configured
// expiry window. Codes are random enough that collisions are negligible;
// no uniqueness is enforced beyond that.
type Invites struct {
	db  *gorm.DB
	cfg Config
}

// NewInvites constructs an invite store on the given connection.
func NewInvites(db *gorm.DB, cfg Config) *Invites {
	return &Invites{db: db, cfg: cfg}
}

// Create issues a new invite for the group. The code is generated once at
// creation; a pre-set code on the row is never overwritten.
func (i *Invites) Create(ctx context.Context, groupID uint64) (*models.Invite, error) {
	invite := models.Invite{GroupID: groupID}
	code, errCode := NewCode(i.cfg.InviteCodeLength)
	if errCode != nil {
		return nil, errCode
	}
	invite.Code = code
	if errCreate := i.db.WithContext(ctx).Create(&invite).Error; errCreate != nil {
		return nil, errCreate
	}
	return &invite, nil
}

// ResolveActive returns the newest invite matching code whose age is
// within the expiry window, or ErrNotFound.
func (i *Invites) ResolveActive(ctx context.Context, code string) (*models.Invite, error) {
	if code == "" {
		return nil, ErrNotFound
	}
	cutoff := time.Now().UTC().Add(-i.cfg.InviteExpiry())

	var invite models.Invite
	errFind := i.db.WithContext(ctx).
		Where("code = ? AND created_at >= ?", code, cutoff).
		Order("created_at DESC").
		First(&invite).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errFind
	}
	return &invite, nil
}

// ExpiresAt returns the moment the invite stops being resolvable.
func (i *Invites) ExpiresAt(invite *models.Invite) time.Time {
	return invite.CreatedAt.Add(i.cfg.InviteExpiry())
}

// Expired reports whether the invite's age exceeds the expiry window.
func (i *Invites) Expired(invite *models.Invite) bool {
	return time.Now().UTC().After(i.ExpiresAt(invite))
}

// NewCode generates a random alphanumeric code of the given length using
// a cryptographic source.
func NewCode(length int) (string, error) {
	if length <= 0 {
		length = DefaultInviteCodeLength
	}
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	out := make([]byte, length)
	for idx := range out {
		n, errRand := rand.Int(rand.Reader, max)
		if errRand != nil {
			return "", fmt.Errorf("generate invite code: %w", errRand)
		}
		out[idx] = inviteCodeAlphabet[n.Int64()]
	}
	return string(out), nil
}
