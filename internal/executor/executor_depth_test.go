package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	entity "github.com/hanpama/newsgraph/internal/entity"
	fetch "github.com/hanpama/newsgraph/internal/fetch"
)

// Pattern: Result comparison
func TestExecute_SyncFieldsOnly_NeverTouchesTheStore(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `{ greeting }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)

	wantRes := &ExecutionResult{Data: map[string]any{"greeting": "hello world"}, Errors: []GraphQLError{}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
	if len(src.Calls()) != 0 {
		t.Fatalf("expected no store calls, got %v", src.Calls())
	}
}

// Pattern: Store call comparison
func TestExecute_DeferredChain_OneFlushPerDepth(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `{ link(id: "1") { url postedBy { name } } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{
			"link": map[string]any{
				"url":      "http://a",
				"postedBy": map[string]any{"name": "alice"},
			},
		},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	// depth 1 fetches the link, depth 2 fetches its author; nothing more
	wantCalls := []fetch.SourceCall{
		{Mode: "ids", Kind: entity.KindLink, Keys: []entity.ID{1}},
		{Mode: "ids", Kind: entity.KindUser, Keys: []entity.ID{7}},
	}
	if diff := cmp.Diff(wantCalls, src.Calls()); diff != "" {
		t.Fatalf("store calls mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Store call comparison
func TestExecute_SiblingFields_MergeIntoOneStoreCall(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `{ a: link(id: "1") { url } b: link(id: "2") { url } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{
			"a": map[string]any{"url": "http://a"},
			"b": map[string]any{"url": "http://b"},
		},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []fetch.SourceCall{
		{Mode: "ids", Kind: entity.KindLink, Keys: []entity.ID{1, 2}},
	}
	if diff := cmp.Diff(wantCalls, src.Calls()); diff != "" {
		t.Fatalf("store calls mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Store call comparison
func TestExecute_SharedAuthor_FetchedOnce(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	// links 1 and 2 are both posted by user 7
	doc := mustParseQuery(t, `{
		a: link(id: "1") { postedBy { name } }
		b: link(id: "2") { postedBy { name } }
	}`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)
	if len(gotRes.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", gotRes.Errors)
	}

	wantCalls := []fetch.SourceCall{
		{Mode: "ids", Kind: entity.KindLink, Keys: []entity.ID{1, 2}},
		{Mode: "ids", Kind: entity.KindUser, Keys: []entity.ID{7}},
	}
	if diff := cmp.Diff(wantCalls, src.Calls()); diff != "" {
		t.Fatalf("store calls mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestExecute_RelationField_DemultiplexesIntoList(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `{ link(id: "1") { postedBy { name links { url } } } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{
			"link": map[string]any{
				"postedBy": map[string]any{
					"name": "alice",
					"links": []any{
						map[string]any{"url": "http://a"},
						map[string]any{"url": "http://b"},
					},
				},
			},
		},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []fetch.SourceCall{
		{Mode: "ids", Kind: entity.KindLink, Keys: []entity.ID{1}},
		{Mode: "ids", Kind: entity.KindUser, Keys: []entity.ID{7}},
		{Mode: "relation", Kind: entity.KindLink, Relation: "linksByUser", Keys: []entity.ID{7}},
	}
	if diff := cmp.Diff(wantCalls, src.Calls()); diff != "" {
		t.Fatalf("store calls mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestExecute_MissingEntity_NullableFieldIsNull(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `{ link(id: "999") { url } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)

	wantRes := &ExecutionResult{Data: map[string]any{"link": nil}, Errors: []GraphQLError{}}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}
