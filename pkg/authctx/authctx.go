// Package authctx turns the go-auth request identity into the Viewer passed
// to go-worklog commands and queries.
package authctx

import (
	"context"

	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-worklog/pkg/types"
	"github.com/google/uuid"
)

const (
	textCodeActorMissing   = "ACTOR_CONTEXT_MISSING"
	textCodeActorInvalid   = "ACTOR_CONTEXT_INVALID"
	textCodeProfileMissing = "PROFILE_MISSING"
)

// ProfileLoader loads the stored profile of the signed-in user.
type ProfileLoader interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*types.Profile, error)
}

// ActorFromContext is a thin wrapper around go-auth helpers so callers do not
// need to import auth directly when they only need the actor payload.
func ActorFromContext(ctx context.Context) (*auth.ActorContext, bool) {
	return auth.ActorFromContext(ctx)
}

// ActorFromRouterContext extracts the actor payload from router contexts using
// go-auth helpers.
func ActorFromRouterContext(ctx router.Context) (*auth.ActorContext, bool) {
	return auth.ActorFromRouterContext(ctx)
}

// ResolveActorContext returns the actor metadata stored by go-auth middleware
// or rebuilds it from JWT claims when the ContextEnricher hook was not
// configured.
func ResolveActorContext(ctx context.Context) (*auth.ActorContext, error) {
	if ctx == nil {
		return nil, errors.New("go-worklog: missing request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}

	if actor, ok := auth.ActorFromContext(ctx); ok && actor != nil {
		return actor, nil
	}

	if claims, ok := auth.GetClaims(ctx); ok && claims != nil {
		if actor := auth.ActorContextFromClaims(claims); actor != nil {
			return actor, nil
		}
	}

	return nil, errors.New("go-worklog: auth actor context not found on request", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(textCodeActorMissing)
}

// ResolveActorContextFromRouter mirrors ResolveActorContext for router
// transports where middleware stores actor metadata directly in the router
// context.
func ResolveActorContextFromRouter(ctx router.Context) (*auth.ActorContext, error) {
	if ctx == nil {
		return nil, errors.New("go-worklog: missing router context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}

	if actor, ok := auth.ActorFromRouterContext(ctx); ok && actor != nil {
		return actor, nil
	}

	return ResolveActorContext(ctx.Context())
}

// ActorIDFromActorContext parses the actor id carried by the auth payload.
func ActorIDFromActorContext(actor *auth.ActorContext) (uuid.UUID, error) {
	if actor == nil {
		return uuid.Nil, errors.New("go-worklog: actor context is nil", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	if actor.ActorID == "" {
		return uuid.Nil, errors.New("go-worklog: actor context missing actor_id", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	id, err := uuid.Parse(actor.ActorID)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CategoryAuth, "go-worklog: invalid actor_id on auth context").
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	return id, nil
}

// ResolveViewer loads the signed-in user's profile and derives the Viewer
// from it. The admin and superuser flags always come from the stored
// profile, never from token claims.
func ResolveViewer(ctx context.Context, profiles ProfileLoader) (types.Viewer, *types.Profile, error) {
	actor, err := ResolveActorContext(ctx)
	if err != nil {
		return types.Viewer{}, nil, err
	}
	return viewerForActor(ctx, actor, profiles)
}

// ResolveViewerFromRouter mirrors ResolveViewer for router handlers.
func ResolveViewerFromRouter(ctx router.Context, profiles ProfileLoader) (types.Viewer, *types.Profile, error) {
	actor, err := ResolveActorContextFromRouter(ctx)
	if err != nil {
		return types.Viewer{}, nil, err
	}
	return viewerForActor(ctx.Context(), actor, profiles)
}

func viewerForActor(ctx context.Context, actor *auth.ActorContext, profiles ProfileLoader) (types.Viewer, *types.Profile, error) {
	if profiles == nil {
		return types.Viewer{}, nil, types.ErrServiceNotReady
	}
	id, err := ActorIDFromActorContext(actor)
	if err != nil {
		return types.Viewer{}, nil, err
	}
	profile, err := profiles.GetProfile(ctx, id)
	if err != nil {
		if types.IsNotFound(err) {
			return types.Viewer{}, nil, errors.Wrap(err, errors.CategoryAuth, "go-worklog: no profile for signed-in user").
				WithCode(errors.CodeUnauthorized).
				WithTextCode(textCodeProfileMissing)
		}
		return types.Viewer{}, nil, err
	}
	return types.ViewerFromProfile(profile), profile, nil
}
