package utils

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pagewatch-dev/pagewatch/internal/middleware"
	"github.com/pagewatch-dev/pagewatch/internal/types"
)

// GetCurrentUserID returns the ID of the user placed in the request
// context by the auth middleware.
func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	value, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return 0, errors.New("User not authenticated")
	}

	user, ok := value.(middleware.AuthenticatedUser)

	if !ok {
		return 0, errors.New("Invalid user type in context")
	}

	return user.ID, nil
}
