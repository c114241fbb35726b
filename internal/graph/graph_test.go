package graph

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	entity "github.com/hanpama/newsgraph/internal/entity"
	executor "github.com/hanpama/newsgraph/internal/executor"
	language "github.com/hanpama/newsgraph/internal/language"
	relation "github.com/hanpama/newsgraph/internal/relation"
	store "github.com/hanpama/newsgraph/internal/store"
)

// countingSource wraps the store to record the shape of every lookup.
type countingSource struct {
	*store.Memory

	mu    sync.Mutex
	calls []string
}

func (c *countingSource) GetByIDs(ctx context.Context, kind entity.Kind, ids []entity.ID) (map[entity.ID]entity.Entity, error) {
	c.mu.Lock()
	c.calls = append(c.calls, "ids:"+string(kind))
	c.mu.Unlock()
	return c.Memory.GetByIDs(ctx, kind, ids)
}

func (c *countingSource) GetByRelation(ctx context.Context, rel relation.Relation, sourceKeys []entity.ID) ([]entity.Entity, error) {
	c.mu.Lock()
	c.calls = append(c.calls, "relation:"+rel.Name)
	c.mu.Unlock()
	return c.Memory.GetByRelation(ctx, rel, sourceKeys)
}

func (c *countingSource) callCounts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int)
	for _, call := range c.calls {
		out[call]++
	}
	return out
}

func newTestExecutor(st *store.Memory) (*executor.Executor, *countingSource) {
	src := &countingSource{Memory: st}
	return executor.NewExecutor(NewResolvers(st), Schema(), src, Relations()), src
}

func execute(t *testing.T, exec *executor.Executor, query string, vars map[string]any) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return exec.ExecuteRequest(context.Background(), doc, "", vars)
}

func TestQuery_AllLinksWithAuthors_OneUserLookupForTheWholeList(t *testing.T) {
	exec, src := newTestExecutor(store.NewSeeded())

	res := execute(t, exec, `{ allLinks { url postedBy { name } } }`, nil)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"allLinks": []any{
			map[string]any{"url": "http://howtographql.com", "postedBy": map[string]any{"name": "alice"}},
			map[string]any{"url": "http://graphql.org", "postedBy": map[string]any{"name": "alice"}},
			map[string]any{"url": "https://graphql.org/learn/", "postedBy": map[string]any{"name": "bob"}},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	// three links, two distinct authors, exactly one user lookup
	require.Equal(t, map[string]int{"ids:user": 1}, src.callCounts())
}

func TestQuery_LinkVotesVoters_TwoFlushDepths(t *testing.T) {
	exec, src := newTestExecutor(store.NewSeeded())

	res := execute(t, exec, `{ link(id: "1") { url votes { user { name } } } }`, nil)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"link": map[string]any{
			"url": "http://howtographql.com",
			"votes": []any{
				map[string]any{"user": map[string]any{"name": "bob"}},
			},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, map[string]int{
		"ids:link":            1,
		"relation:votesByLink": 1,
		"ids:user":            1,
	}, src.callCounts())
}

func TestQuery_UserWithLinksAndVotes_IndependentRelationBuckets(t *testing.T) {
	exec, src := newTestExecutor(store.NewSeeded())

	res := execute(t, exec, `{ user(id: "2") { name links { url } votes { id } } }`, nil)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"user": map[string]any{
			"name":  "bob",
			"links": []any{map[string]any{"url": "https://graphql.org/learn/"}},
			"votes": []any{map[string]any{"id": "2"}, map[string]any{"id": "3"}},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, map[string]int{
		"ids:user":            1,
		"relation:linksByUser": 1,
		"relation:votesByUser": 1,
	}, src.callCounts())
}

func TestQuery_MissingLink_IsNull(t *testing.T) {
	exec, _ := newTestExecutor(store.NewSeeded())

	res := execute(t, exec, `{ link(id: "404") { url } }`, nil)
	require.Empty(t, res.Errors)
	if diff := cmp.Diff(map[string]any{"link": nil}, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_CreatedAt_SerializesAsRFC3339(t *testing.T) {
	exec, _ := newTestExecutor(store.NewSeeded())

	res := execute(t, exec, `{ user(id: "1") { createdAt } }`, nil)
	require.Empty(t, res.Errors)

	createdAt := res.Data.(map[string]any)["user"].(map[string]any)["createdAt"].(string)
	_, err := time.Parse(time.RFC3339, createdAt)
	require.NoError(t, err)
}

func TestMutation_CreateLink_ReturnsTheNewEntity(t *testing.T) {
	st := store.NewSeeded()
	exec, _ := newTestExecutor(st)

	res := execute(t, exec, `mutation {
		createLink(url: "http://example.com", description: "example", postedById: "2") {
			id url description postedBy { name }
		}
	}`, nil)
	require.Empty(t, res.Errors)

	want := map[string]any{
		"createLink": map[string]any{
			"id":          "4",
			"url":         "http://example.com",
			"description": "example",
			"postedBy":    map[string]any{"name": "bob"},
		},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	// the write is visible to subsequent executions
	links, err := st.All(context.Background(), entity.KindLink)
	require.NoError(t, err)
	require.Len(t, links, 4)
}

func TestMutation_CreateVote_UnknownLink_Errors(t *testing.T) {
	exec, _ := newTestExecutor(store.NewSeeded())

	res := execute(t, exec, `mutation { createVote(userId: "1", linkId: "404") { id } }`, nil)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "link 404 not found")
	if diff := cmp.Diff(map[string]any{"createVote": nil}, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestMutation_CreateUserThenQuery_NewUserResolves(t *testing.T) {
	st := store.NewSeeded()
	exec, _ := newTestExecutor(st)

	res := execute(t, exec, `mutation { createUser(name: "carol", email: "carol@example.com") { id name email } }`, nil)
	require.Empty(t, res.Errors)
	want := map[string]any{
		"createUser": map[string]any{"id": "3", "name": "carol", "email": "carol@example.com"},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}

	res = execute(t, exec, `{ user(id: "3") { name links { id } } }`, nil)
	require.Empty(t, res.Errors)
	want = map[string]any{
		"user": map[string]any{"name": "carol", "links": []any{}},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestQuery_Variables_FlowThroughArguments(t *testing.T) {
	exec, _ := newTestExecutor(store.NewSeeded())

	doc, err := language.ParseQuery(`query GetLink($id: ID!) { link(id: $id) { url } }`)
	require.NoError(t, err)
	res := exec.ExecuteRequest(context.Background(), doc, "GetLink", map[string]any{"id": "2"})
	require.Empty(t, res.Errors)

	want := map[string]any{"link": map[string]any{"url": "http://graphql.org"}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}
