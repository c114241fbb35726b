package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	entity "github.com/hanpama/newsgraph/internal/entity"
	fetch "github.com/hanpama/newsgraph/internal/fetch"
)

// Pattern: Result comparison
func TestExecute_ResolverError_NullableField_RecordsLocatedError(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	resolvers := testResolvers()
	resolvers.SetResolver("Query", "greeting", NewMockErrorResolver(errors.New("greeting broke")))
	exec := NewExecutor(resolvers, testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `{ greeting }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)

	wantRes := &ExecutionResult{
		Data:   map[string]any{"greeting": nil},
		Errors: []GraphQLError{{Message: "greeting broke", Path: Path{"greeting"}}},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_NonNullViolation_PropagatesToNullableAncestor(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	resolvers := testResolvers()
	// User.name is String!; a nil result must null out the nearest
	// nullable ancestor, which is Query.link
	resolvers.SetResolver("User", "name", NewMockValueResolver(nil))
	exec := NewExecutor(resolvers, testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `{ link(id: "1") { url postedBy { name } } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)

	if diff := cmp.Diff(map[string]any{"link": nil}, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if len(gotRes.Errors) != 1 {
		t.Fatalf("expected one error, got %v", gotRes.Errors)
	}
	if !strings.Contains(gotRes.Errors[0].Message, "non-nullable field") {
		t.Fatalf("unexpected error message: %q", gotRes.Errors[0].Message)
	}
	wantPath := Path{"link", "postedBy", "name"}
	if diff := cmp.Diff(wantPath, gotRes.Errors[0].Path); diff != "" {
		t.Fatalf("error path mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_FlushFailure_FailsTheExecution(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	boom := errors.New("store down")
	src.FailIDs(entity.KindLink, boom)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `{ greeting link(id: "1") { url } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)

	// no partial data: the flush failure fails the request as a whole
	if gotRes.Data != nil {
		t.Fatalf("expected nil data, got %v", gotRes.Data)
	}
	if len(gotRes.Errors) != 1 {
		t.Fatalf("expected one execution-level error, got %v", gotRes.Errors)
	}
	if !strings.Contains(gotRes.Errors[0].Message, "store down") {
		t.Fatalf("unexpected error message: %q", gotRes.Errors[0].Message)
	}
}

func TestExecute_NullifiedSubtree_DropsItsQueuedTasks(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	resolvers := testResolvers()
	// url is String!; failing it nulls the link subtree at depth 2. The
	// postedBy task queued just before the violation must be dropped, and
	// with nothing left to complete the depth-2 flush must not happen.
	resolvers.SetResolver("Link", "url", NewMockErrorResolver(errors.New("no url")))
	exec := NewExecutor(resolvers, testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `{ link(id: "1") { postedBy { name } url } }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil)

	if diff := cmp.Diff(map[string]any{"link": nil}, gotRes.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	wantCalls := []fetch.SourceCall{
		{Mode: "ids", Kind: entity.KindLink, Keys: []entity.ID{1}},
	}
	if diff := cmp.Diff(wantCalls, src.Calls()); diff != "" {
		t.Fatalf("store calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_UnknownOperation_ReturnsError(t *testing.T) {
	src := fetch.NewMockSource(testEntities()...)
	exec := NewExecutor(testResolvers(), testSchema(), src, testRelations(t))
	doc := mustParseQuery(t, `query A { greeting } query B { greeting }`)

	gotRes := exec.ExecuteRequest(context.Background(), doc, "C", nil)
	if gotRes.Data != nil || len(gotRes.Errors) != 1 {
		t.Fatalf("expected a single operation-not-found error, got %+v", gotRes)
	}
}
