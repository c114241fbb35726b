package graph

import (
	entity "github.com/hanpama/newsgraph/internal/entity"
	relation "github.com/hanpama/newsgraph/internal/relation"
)

// Relation names used by the resolvers. Each one is its own batch bucket.
const (
	RelLinksByUser = "linksByUser"
	RelVotesByUser = "votesByUser"
	RelVotesByLink = "votesByLink"
)

// Relations returns the registry of the news feed's reverse lookups.
func Relations() *relation.Registry {
	reg := relation.NewRegistry()
	reg.MustRegister(relation.Relation{
		Name:    RelLinksByUser,
		Source:  entity.KindUser,
		Related: entity.KindLink,
		Keys:    func(e entity.Entity) []entity.ID { return []entity.ID{e.(*entity.Link).PostedByID} },
	})
	reg.MustRegister(relation.Relation{
		Name:    RelVotesByUser,
		Source:  entity.KindUser,
		Related: entity.KindVote,
		Keys:    func(e entity.Entity) []entity.ID { return []entity.ID{e.(*entity.Vote).UserID} },
	})
	reg.MustRegister(relation.Relation{
		Name:    RelVotesByLink,
		Source:  entity.KindLink,
		Related: entity.KindVote,
		Keys:    func(e entity.Entity) []entity.ID { return []entity.ID{e.(*entity.Vote).LinkID} },
	})
	return reg
}
