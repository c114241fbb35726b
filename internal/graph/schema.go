// Package graph defines the news feed GraphQL surface: the schema, the
// relation registry and the resolvers that bridge fields to the store
// through the fetch layer.
package graph

import (
	schema "github.com/hanpama/newsgraph/internal/schema"
)

func named(name string) *schema.TypeRef   { return schema.NamedType(name) }
func nonNull(name string) *schema.TypeRef { return schema.NonNullType(schema.NamedType(name)) }
func listOf(name string) *schema.TypeRef {
	return schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType(name))))
}

// Schema returns the news feed schema. Types are assembled in code; the
// executor needs no SDL round trip.
func Schema() *schema.Schema {
	return &schema.Schema{
		QueryType:    "Query",
		MutationType: "Mutation",
		Types: map[string]*schema.Type{
			"Query": {Name: "Query", Kind: schema.TypeKindObject, Fields: []*schema.Field{
				{Name: "link", Type: named("Link"), Arguments: []*schema.InputValue{
					{Name: "id", Type: nonNull("ID")},
				}},
				{Name: "user", Type: named("User"), Arguments: []*schema.InputValue{
					{Name: "id", Type: nonNull("ID")},
				}},
				{Name: "allLinks", Type: listOf("Link")},
				{Name: "allUsers", Type: listOf("User")},
			}},
			"Mutation": {Name: "Mutation", Kind: schema.TypeKindObject, Fields: []*schema.Field{
				{Name: "createUser", Type: nonNull("User"), Arguments: []*schema.InputValue{
					{Name: "name", Type: nonNull("String")},
					{Name: "email", Type: nonNull("String")},
				}},
				{Name: "createLink", Type: nonNull("Link"), Arguments: []*schema.InputValue{
					{Name: "url", Type: nonNull("String")},
					{Name: "description", Type: named("String"), DefaultValue: ""},
					{Name: "postedById", Type: nonNull("ID")},
				}},
				{Name: "createVote", Type: nonNull("Vote"), Arguments: []*schema.InputValue{
					{Name: "userId", Type: nonNull("ID")},
					{Name: "linkId", Type: nonNull("ID")},
				}},
			}},
			"Link": {Name: "Link", Kind: schema.TypeKindObject, Fields: []*schema.Field{
				{Name: "id", Type: nonNull("ID")},
				{Name: "url", Type: nonNull("String")},
				{Name: "description", Type: named("String")},
				{Name: "createdAt", Type: nonNull("String")},
				{Name: "postedBy", Type: nonNull("User")},
				{Name: "votes", Type: listOf("Vote")},
			}},
			"User": {Name: "User", Kind: schema.TypeKindObject, Fields: []*schema.Field{
				{Name: "id", Type: nonNull("ID")},
				{Name: "name", Type: nonNull("String")},
				{Name: "email", Type: nonNull("String")},
				{Name: "createdAt", Type: nonNull("String")},
				{Name: "links", Type: listOf("Link")},
				{Name: "votes", Type: listOf("Vote")},
			}},
			"Vote": {Name: "Vote", Kind: schema.TypeKindObject, Fields: []*schema.Field{
				{Name: "id", Type: nonNull("ID")},
				{Name: "createdAt", Type: nonNull("String")},
				{Name: "user", Type: nonNull("User")},
				{Name: "link", Type: nonNull("Link")},
			}},
			"ID":      {Name: "ID", Kind: schema.TypeKindScalar},
			"String":  {Name: "String", Kind: schema.TypeKindScalar},
			"Int":     {Name: "Int", Kind: schema.TypeKindScalar},
			"Float":   {Name: "Float", Kind: schema.TypeKindScalar},
			"Boolean": {Name: "Boolean", Kind: schema.TypeKindScalar},
		},
	}
}
