package services

import (
	"github.com/Josh363/small-business-app/internal/domain/entities"
)

// CanMutate reports whether user may change a resource owned by ownerID.
// Admins may change anything; everyone else only what they own.
func CanMutate(user *entities.User, ownerID string) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin() || (ownerID != "" && user.ID == ownerID)
}
