package service

import (
	"eventgate/internal/apperr"
	"eventgate/internal/model"
)

// requireActor rejects missing or deactivated callers.
func requireActor(actor *model.User) error {
	if actor == nil {
		return apperr.Unauthenticated("authentication required")
	}
	if !actor.IsActive {
		return apperr.Unauthenticated("account is deactivated")
	}
	return nil
}

// requireRole rejects actors whose role is not in the allowed set.
func requireRole(actor *model.User, roles ...model.Role) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return apperr.Forbidden("insufficient role for this operation")
}

// requireOwner rejects actors that do not own the resource.
func requireOwner(actor *model.User, ownerID, what string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.ID != ownerID {
		return apperr.Forbidden("you do not have permission to access this " + what)
	}
	return nil
}
