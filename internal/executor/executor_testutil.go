package executor

import (
	"context"
	"strconv"
	"testing"

	entity "github.com/hanpama/newsgraph/internal/entity"
	fetch "github.com/hanpama/newsgraph/internal/fetch"
	language "github.com/hanpama/newsgraph/internal/language"
	relation "github.com/hanpama/newsgraph/internal/relation"
	schema "github.com/hanpama/newsgraph/internal/schema"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

// testSchema is a pared-down news feed schema used across executor tests.
func testSchema() *schema.Schema {
	id := schema.NonNullType(schema.NamedType("ID"))
	str := schema.NonNullType(schema.NamedType("String"))
	return &schema.Schema{
		QueryType: "Query",
		Types: map[string]*schema.Type{
			"Query": {Name: "Query", Kind: schema.TypeKindObject, Fields: []*schema.Field{
				{Name: "link", Type: schema.NamedType("Link"), Arguments: []*schema.InputValue{
					{Name: "id", Type: schema.NonNullType(schema.NamedType("ID"))},
				}},
				{Name: "greeting", Type: schema.NamedType("String"), Arguments: []*schema.InputValue{
					{Name: "name", Type: schema.NamedType("String"), DefaultValue: "world"},
				}},
			}},
			"Link": {Name: "Link", Kind: schema.TypeKindObject, Fields: []*schema.Field{
				{Name: "id", Type: id},
				{Name: "url", Type: str},
				{Name: "description", Type: schema.NamedType("String")},
				{Name: "postedBy", Type: schema.NonNullType(schema.NamedType("User"))},
			}},
			"User": {Name: "User", Kind: schema.TypeKindObject, Fields: []*schema.Field{
				{Name: "id", Type: id},
				{Name: "name", Type: str},
				{Name: "links", Type: schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("Link"))))},
			}},
			"ID":     {Name: "ID", Kind: schema.TypeKindScalar},
			"String": {Name: "String", Kind: schema.TypeKindScalar},
		},
	}
}

func testRelations(t *testing.T) *relation.Registry {
	t.Helper()
	reg := relation.NewRegistry()
	reg.MustRegister(relation.Relation{
		Name: "linksByUser", Source: entity.KindUser, Related: entity.KindLink,
		Keys: func(e entity.Entity) []entity.ID { return []entity.ID{e.(*entity.Link).PostedByID} },
	})
	return reg
}

func testEntities() []entity.Entity {
	return []entity.Entity{
		&entity.User{ID: 7, Name: "alice"},
		&entity.User{ID: 8, Name: "bob"},
		&entity.Link{ID: 1, URL: "http://a", PostedByID: 7},
		&entity.Link{ID: 2, URL: "http://b", PostedByID: 7},
		&entity.Link{ID: 3, URL: "http://c", PostedByID: 8},
	}
}

// testResolvers wires the test schema's fields: scalar projections resolve
// synchronously off the source entity, entity references defer through fx.
func testResolvers() *MockResolverMap {
	mustID := func(args map[string]any) entity.ID {
		n, err := strconv.ParseInt(args["id"].(string), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return NewMockResolverMap(map[string]MockResolver{
		"Query.link": func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
			id := mustID(args)
			return fx.ByIDs(entity.KindLink, id).One(id), nil
		},
		"Query.greeting": func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
			name, _ := args["name"].(string)
			return "hello " + name, nil
		},
		"Link.id": func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
			return source.(*entity.Link).ID, nil
		},
		"Link.url": func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
			return source.(*entity.Link).URL, nil
		},
		"Link.description": func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
			return source.(*entity.Link).Description, nil
		},
		"Link.postedBy": func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
			uid := source.(*entity.Link).PostedByID
			return fx.ByIDs(entity.KindUser, uid).One(uid), nil
		},
		"User.id": func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
			return source.(*entity.User).ID, nil
		},
		"User.name": func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
			return source.(*entity.User).Name, nil
		},
		"User.links": func(ctx context.Context, source any, args map[string]any, fx *fetch.Fetcher) (any, error) {
			uid := source.(*entity.User).ID
			return fx.ByRelation("linksByUser", uid).For(uid), nil
		},
	})
}
