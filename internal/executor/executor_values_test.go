package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	fetch "github.com/hanpama/newsgraph/internal/fetch"
)

// Pattern: Result comparison
func TestValues_Variables_CoerceAndFlowIntoArguments(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `query Q($id: ID!) { link(id: $id) { url } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "Q", map[string]any{"id": "2"})

	wantRes := &ExecutionResult{
		Data:   map[string]any{"link": map[string]any{"url": "http://b"}},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestValues_NumericIDVariable_CoercesToString(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `query Q($id: ID!) { link(id: $id) { url } }`)

	// JSON-decoded variables carry numbers as float64
	gotRes := exec.ExecuteRequest(context.Background(), doc, "Q", map[string]any{"id": float64(3)})

	wantRes := &ExecutionResult{
		Data:   map[string]any{"link": map[string]any{"url": "http://c"}},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestValues_MissingRequiredVariable_FailsTheRequest(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `query Q($id: ID!) { link(id: $id) { url } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "Q", nil)
	if gotRes.Data != nil || len(gotRes.Errors) != 1 {
		t.Fatalf("expected a single variable error, got %+v", gotRes)
	}
}

func TestValues_ArgumentDefault_Applies(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `{ greeting }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)
	wantRes := &ExecutionResult{Data: map[string]any{"greeting": "hello world"}, Errors: []GraphQLError{}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestCollect_SkipAndInclude_Directives(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `query Q($yes: Boolean!, $no: Boolean!) {
		a: greeting @skip(if: $no)
		b: greeting @skip(if: $yes)
		c: greeting @include(if: $yes)
		d: greeting @include(if: $no)
	}`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "Q", map[string]any{"yes": true, "no": false})

	wantRes := &ExecutionResult{
		Data:   map[string]any{"a": "hello world", "c": "hello world"},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestCollect_FragmentsAndTypename(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `{
		link(id: "1") {
			__typename
			... on Link { url }
			...linkFields
		}
	}
	fragment linkFields on Link { description }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{
			"link": map[string]any{
				"__typename":  "Link",
				"url":         "http://a",
				"description": "",
			},
		},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}
