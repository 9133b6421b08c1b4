package groupable

import (
	"context"
	"strings"

	"github.com/groupable/groupable/internal/models"
	"github.com/groupable/groupable/internal/security"
)

// Group-level credentials sit outside membership policy: a group may carry
// an auth name and a hashed secret for host applications that authenticate
// the group itself elsewhere.

// SetCredentials stores the group's auth name and secret digest.
func (g *Groups) SetCredentials(ctx context.Context, group *models.Group, authName, secret string) error {
	trimmedName := strings.TrimSpace(authName)
	digest := ""
	if secret != "" {
		hashed, errHash := security.HashSecret(secret)
		if errHash != nil {
			return errHash
		}
		digest = hashed
	}
	errUpdate := g.db.WithContext(ctx).Model(group).Updates(map[string]any{
		"auth_name":     trimmedName,
		"secret_digest": digest,
	}).Error
	if errUpdate != nil {
		return errUpdate
	}
	group.AuthName = trimmedName
	group.SecretDigest = digest
	return nil
}

// CheckSecret verifies a plaintext secret against the group's digest.
// Groups without a stored digest never authenticate.
func (g *Groups) CheckSecret(group *models.Group, secret string) bool {
	if group.SecretDigest == "" {
		return false
	}
	return security.CheckSecret(group.SecretDigest, secret)
}
