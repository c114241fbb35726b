package graph

import (
	"context"
	"fmt"
	"strconv"

	entity "github.com/hanpama/newsgraph/internal/entity"
	executor "github.com/hanpama/newsgraph/internal/executor"
	fetch "github.com/hanpama/newsgraph/internal/fetch"
	store "github.com/hanpama/newsgraph/internal/store"
)

// Resolvers implements executor.Resolver for the news feed schema.
//
// Scalar projections resolve synchronously off the source entity. Entity
// references and reverse lookups register on the Fetcher and return
// deferreds; the executor batches them per depth. Mutations write through
// the store directly and return the created entity.
type Resolvers struct {
	store *store.Memory
}

func NewResolvers(st *store.Memory) *Resolvers {
	return &Resolvers{store: st}
}

// New assembles a ready-to-run executor over the given store.
func New(st *store.Memory) *executor.Executor {
	return executor.NewExecutor(NewResolvers(st), Schema(), st, Relations())
}

func (r *Resolvers) Resolve(ctx context.Context, objectType, field string, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
	switch objectType {
	case "Query":
		return r.resolveQuery(ctx, field, args, fx)
	case "Mutation":
		return r.resolveMutation(ctx, field, args)
	case "Link":
		return r.resolveLink(field, source.(*entity.Link), fx)
	case "User":
		return r.resolveUser(field, source.(*entity.User), fx)
	case "Vote":
		return r.resolveVote(field, source.(*entity.Vote), fx)
	}
	return nil, fmt.Errorf("no resolver for type %s", objectType)
}

func (r *Resolvers) resolveQuery(ctx context.Context, field string, args map[string]any, fx *fetch.Fetcher) (any, error) {
	switch field {
	case "link":
		id, err := idArg(args, "id")
		if err != nil {
			return nil, err
		}
		return fx.ByIDs(entity.KindLink, id).One(id), nil
	case "user":
		id, err := idArg(args, "id")
		if err != nil {
			return nil, err
		}
		return fx.ByIDs(entity.KindUser, id).One(id), nil
	case "allLinks":
		return r.store.All(ctx, entity.KindLink)
	case "allUsers":
		return r.store.All(ctx, entity.KindUser)
	}
	return nil, fmt.Errorf("no resolver for Query.%s", field)
}

func (r *Resolvers) resolveMutation(ctx context.Context, field string, args map[string]any) (any, error) {
	switch field {
	case "createUser":
		name, err := stringArg(args, "name")
		if err != nil {
			return nil, err
		}
		email, err := stringArg(args, "email")
		if err != nil {
			return nil, err
		}
		return r.store.CreateUser(ctx, name, email)
	case "createLink":
		url, err := stringArg(args, "url")
		if err != nil {
			return nil, err
		}
		description, _ := args["description"].(string)
		postedBy, err := idArg(args, "postedById")
		if err != nil {
			return nil, err
		}
		return r.store.CreateLink(ctx, url, description, postedBy)
	case "createVote":
		userID, err := idArg(args, "userId")
		if err != nil {
			return nil, err
		}
		linkID, err := idArg(args, "linkId")
		if err != nil {
			return nil, err
		}
		return r.store.CreateVote(ctx, userID, linkID)
	}
	return nil, fmt.Errorf("no resolver for Mutation.%s", field)
}

func (r *Resolvers) resolveLink(field string, l *entity.Link, fx *fetch.Fetcher) (any, error) {
	switch field {
	case "id":
		return l.ID, nil
	case "url":
		return l.URL, nil
	case "description":
		if l.Description == "" {
			return nil, nil
		}
		return l.Description, nil
	case "createdAt":
		return l.CreatedAt, nil
	case "postedBy":
		return fx.ByIDs(entity.KindUser, l.PostedByID).One(l.PostedByID), nil
	case "votes":
		return fx.ByRelation(RelVotesByLink, l.ID).For(l.ID), nil
	}
	return nil, fmt.Errorf("no resolver for Link.%s", field)
}

func (r *Resolvers) resolveUser(field string, u *entity.User, fx *fetch.Fetcher) (any, error) {
	switch field {
	case "id":
		return u.ID, nil
	case "name":
		return u.Name, nil
	case "email":
		return u.Email, nil
	case "createdAt":
		return u.CreatedAt, nil
	case "links":
		return fx.ByRelation(RelLinksByUser, u.ID).For(u.ID), nil
	case "votes":
		return fx.ByRelation(RelVotesByUser, u.ID).For(u.ID), nil
	}
	return nil, fmt.Errorf("no resolver for User.%s", field)
}

func (r *Resolvers) resolveVote(field string, v *entity.Vote, fx *fetch.Fetcher) (any, error) {
	switch field {
	case "id":
		return v.ID, nil
	case "createdAt":
		return v.CreatedAt, nil
	case "user":
		return fx.ByIDs(entity.KindUser, v.UserID).One(v.UserID), nil
	case "link":
		return fx.ByIDs(entity.KindLink, v.LinkID).One(v.LinkID), nil
	}
	return nil, fmt.Errorf("no resolver for Vote.%s", field)
}

func idArg(args map[string]any, name string) (entity.ID, error) {
	s, ok := args[name].(string)
	if !ok {
		return 0, fmt.Errorf("argument %q is required", name)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("argument %q is not a valid id: %q", name, s)
	}
	return id, nil
}

func stringArg(args map[string]any, name string) (string, error) {
	s, ok := args[name].(string)
	if !ok {
		return "", fmt.Errorf("argument %q is required", name)
	}
	return s, nil
}
