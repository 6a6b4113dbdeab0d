package policy

import (
	apperrors "forumhub/internal/errors"
	"forumhub/internal/model"
)

// Decision is the outcome of an ownership check. It carries a reason the
// caller can surface and the taxonomy error to return; it never performs the
// mutation itself.
type Decision struct {
	Allowed bool
	Reason  string
	Err     error
}

// Allow returns a permitting decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a rejecting decision with a user-facing reason.
func Deny(reason string, err error) Decision {
	return Decision{Reason: reason, Err: err}
}

// GuardConfig tunes the guard's policy knobs.
type GuardConfig struct {
	// LockedPostRoles are the roles still allowed to post in a locked thread,
	// so moderators can communicate closure rulings.
	LockedPostRoles []model.Role
}

// DefaultGuardConfig permits only elevated roles to post in locked threads.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		LockedPostRoles: []model.Role{model.RoleAdmin, model.RoleMod},
	}
}

// Guard decides whether a user may modify a specific thread or post. All
// methods are pure over their inputs; callers load the entities and, for
// post deletion, the reply count in a single snapshot.
type Guard struct {
	cfg GuardConfig
}

// NewGuard creates a guard with the given configuration.
func NewGuard(cfg GuardConfig) *Guard {
	if len(cfg.LockedPostRoles) == 0 {
		cfg = DefaultGuardConfig()
	}
	return &Guard{cfg: cfg}
}

// CanEditThread allows elevated roles and the thread's author.
func (g *Guard) CanEditThread(actor *model.User, thread *model.Thread) Decision {
	if Elevated(actor.Role) || thread.Author == actor.ID {
		return Allow()
	}
	return Deny("not authorized to edit this thread", apperrors.ErrForbidden)
}

// CanEditPost allows elevated roles and the post's author. A post whose
// author account was removed can only be modified by elevated roles.
func (g *Guard) CanEditPost(actor *model.User, post *model.Post) Decision {
	if Elevated(actor.Role) {
		return Allow()
	}
	if post.Author != nil && *post.Author == actor.ID {
		return Allow()
	}
	return Deny("not authorized to edit this post", apperrors.ErrForbidden)
}

// CanDeletePost applies the edit rule, then the reply-chain rule: a post with
// later posts in the same thread cannot be deleted by anyone, elevated or
// not. Content integrity short-circuits permissions.
func (g *Guard) CanDeletePost(actor *model.User, post *model.Post, repliesAfter int64) Decision {
	if d := g.CanEditPost(actor, post); !d.Allowed {
		return d
	}
	if repliesAfter > 0 {
		return Deny("cannot delete a post that has answers", apperrors.ErrConflict)
	}
	return Allow()
}

// CanPostInThread rejects posting into a locked thread unless the actor's
// role is in the configured locked-post set.
func (g *Guard) CanPostInThread(actor *model.User, thread *model.Thread) Decision {
	if !thread.Locked {
		return Allow()
	}
	for _, r := range g.cfg.LockedPostRoles {
		if actor.Role == r {
			return Allow()
		}
	}
	return Deny("thread is locked", apperrors.ErrForbidden)
}
