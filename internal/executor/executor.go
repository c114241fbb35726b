package executor

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"time"

	entity "github.com/hanpama/newsgraph/internal/entity"
	fetch "github.com/hanpama/newsgraph/internal/fetch"
	language "github.com/hanpama/newsgraph/internal/language"
	relation "github.com/hanpama/newsgraph/internal/relation"
	schema "github.com/hanpama/newsgraph/internal/schema"
)

type Path []PathElement

type PathElement any

// executionState holds the state during one query execution
type executionState struct {
	resolver       Resolver
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	context        context.Context
	fetcher        *fetch.Fetcher
	deferredGroup  []deferredTask
	errors         []GraphQLError
	// prefixes of paths that have been nullified (tombstoned)
	nullifiedPrefix map[string]struct{}
}

// deferredTask is a field resolution waiting on the current depth's flush
type deferredTask struct {
	Deferred     fetch.Deferred
	ResponsePath Path
	FieldType    *schema.TypeRef
	Fields       []*language.Field
}

type deferredPending struct{}

// Executor runs GraphQL operations breadth-first: synchronous fields
// expand immediately, deferred fields queue per depth and are resolved by
// exactly one fetch flush per depth.
type Executor struct {
	resolver  Resolver
	schema    *schema.Schema
	source    fetch.Source
	relations *relation.Registry
}

// NewExecutor wires the executor to its resolver, schema and fetching
// configuration. The store and relation registry are explicit
// dependencies; every ExecuteRequest builds its own Fetcher from them so
// executions share nothing.
func NewExecutor(resolver Resolver, sch *schema.Schema, source fetch.Source, relations *relation.Registry) *Executor {
	return &Executor{resolver: resolver, schema: sch, source: source, relations: relations}
}

func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
) *ExecutionResult {
	operation := getOperation(document, operationName)
	if operation == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	coercedVariableValues, err := coerceVariableValues(operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	state := &executionState{
		resolver:        e.resolver,
		schema:          e.schema,
		document:        document,
		variableValues:  coercedVariableValues,
		context:         ctx,
		fetcher:         fetch.New(e.source, e.relations),
		errors:          []GraphQLError{},
		nullifiedPrefix: make(map[string]struct{}),
	}

	responseRoot := make(map[string]any)

	// Root selection set: sync immediate expansion, deferred queued
	rootResult := executeSelectionSet(state, rootType, operation.SelectionSet, nil, Path{})
	for k, v := range rootResult {
		responseRoot[k] = v
	}

	// Depth-wise flush loop
	for len(state.deferredGroup) > 0 {
		tasks := takeDeferredTasks(state)
		if len(tasks) == 0 {
			continue
		}
		if err := state.fetcher.Flush(ctx); err != nil {
			// a failed flush fails the execution as a whole
			return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
		}
		for _, task := range tasks {
			completeDeferredField(state, task, responseRoot)
		}
	}

	return &ExecutionResult{Data: responseRoot, Errors: state.errors}
}

// executeSelectionSet executes a selection set without flushing
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path) map[string]any {
	groupedFields := collectFields(state, objectType, selectionSet)
	resultMap := make(map[string]any)

	for _, collectedField := range groupedFields.orderedFields() {
		responseName := collectedField.ResponseName
		fields := collectedField.Fields
		fieldPath := appendPath(path, responseName)

		fieldResult := executeFieldGroup(state, objectType, objectValue, fields, fieldPath)

		if fields[0].Name == "__typename" {
			resultMap[responseName] = fieldResult
			continue
		}

		fieldDef := objectType.Field(fields[0].Name)
		if fieldDef == nil {
			// Unknown field – error was already recorded in executeFieldGroup
			continue
		}

		if schema.IsNonNull(fieldDef.Type) && isNullish(fieldResult) {
			if len(path) > 0 {
				// the whole object nulls out; tasks queued beneath it are moot
				state.markNullifiedPrefix(path)
				return nil
			}
			// Root level: keep going but write nil
			resultMap[responseName] = nil
			continue
		}

		if isNullish(fieldResult) {
			resultMap[responseName] = nil
		} else {
			resultMap[responseName] = fieldResult
		}
	}

	return resultMap
}

func executeFieldGroup(state *executionState, objectType *schema.Type, objectValue any, fields []*language.Field, path Path) any {
	field := fields[0]
	fieldName := field.Name

	if fieldName == "__typename" {
		return objectType.Name
	}

	fieldDef := objectType.Field(fieldName)
	if fieldDef == nil {
		state.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", fieldName, objectType.Name), path)
		return nil
	}

	argumentValues := coerceArgumentValues(fieldDef, field.Arguments, state.variableValues, state, path)

	resolved, err := state.resolver.Resolve(state.context, objectType.Name, fieldName, objectValue, argumentValues, state.fetcher)
	if err != nil {
		state.addError(err.Error(), path)
		return nil
	}

	// A deferred value suspends this field until the depth's flush.
	if d, ok := resolved.(fetch.Deferred); ok {
		state.deferredGroup = append(state.deferredGroup, deferredTask{
			Deferred:     d,
			ResponsePath: path,
			FieldType:    fieldDef.Type,
			Fields:       fields,
		})
		return deferredPending{}
	}

	return completeValue(state, fieldDef.Type, fields, resolved, path)
}

// takeDeferredTasks drains the current depth's queue, dropping tasks
// under nullified prefixes.
func takeDeferredTasks(state *executionState) []deferredTask {
	tasks := make([]deferredTask, 0, len(state.deferredGroup))
	for _, task := range state.deferredGroup {
		if state.hasNullifiedPrefix(task.ResponsePath) {
			continue
		}
		tasks = append(tasks, task)
	}
	state.deferredGroup = nil
	return tasks
}

// completeDeferredField completes a single flushed task, with non-null
// propagation and pruning
func completeDeferredField(state *executionState, task deferredTask, responseRoot map[string]any) {
	path := task.ResponsePath
	// If this path is already nullified by an ancestor, ignore
	if state.hasNullifiedPrefix(path) {
		return
	}

	value, err := task.Deferred.Value()
	if err != nil {
		state.addError(err.Error(), path)
		if schema.IsNonNull(task.FieldType) {
			top := topLevelFieldPath(path)
			setValueAtPath(responseRoot, top, nil)
			state.markNullifiedPrefix(top)
			return
		}
		setValueAtPath(responseRoot, path, nil)
		state.markNullifiedPrefix(path)
		return
	}

	completed := completeValue(state, task.FieldType, task.Fields, value, path)

	if schema.IsNonNull(task.FieldType) && isNullish(completed) {
		top := topLevelFieldPath(path)
		setValueAtPath(responseRoot, top, nil)
		state.markNullifiedPrefix(top)
		return
	}

	if isNullish(completed) {
		setValueAtPath(responseRoot, path, nil)
		state.markNullifiedPrefix(path)
	} else {
		setValueAtPath(responseRoot, path, completed)
	}
}

// completeValue completes a value
func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !state.hasErrorAtPath(path) {
				state.addError(fmt.Sprintf("Cannot return null for non-nullable field %s", pathToString(path)), path)
			}
			return nil
		}
		completed := completeValue(state, schema.Unwrap(fieldType), fields, result, path)
		if isNullish(completed) {
			// Error already recorded at original path; propagate only
			return nil
		}
		return completed
	}

	if isNullish(result) {
		return nil
	}

	if schema.IsList(fieldType) {
		return completeListValue(state, fieldType, fields, result, path)
	}
	namedType := schema.GetNamedType(fieldType)
	typeObj := state.schema.Types[namedType]
	if typeObj == nil {
		state.addError(fmt.Sprintf("Unknown type: %s", namedType), path)
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar:
		serialized, err := serializeLeafValue(namedType, result)
		if err != nil {
			state.addError(err.Error(), path)
			return nil
		}
		return serialized
	case schema.TypeKindObject:
		sub := mergeSelectionSets(fields)
		return executeSelectionSet(state, typeObj, sub, result, path)
	default:
		state.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", typeObj.Kind), path)
		return nil
	}
}

// completeListValue completes a list value
func completeListValue(state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice {
			state.addError(fmt.Sprintf("Expected list value, got %T", result), path)
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, len(items))
	for i, item := range items {
		p := appendPath(path, i)
		v := completeValue(state, inner, fields, item, p)
		if schema.IsNonNull(inner) && isNullish(v) {
			// Propagate null to the list field; error already recorded by inner completion
			state.markNullifiedPrefix(path)
			return nil
		}
		completed[i] = v
	}
	return completed
}

// serializeLeafValue coerces a scalar value into a JSON-safe Go value.
func serializeLeafValue(typeName string, value any) (any, error) {
	if typeName == "ID" {
		switch v := value.(type) {
		case entity.ID:
			return strconv.FormatInt(v, 10), nil
		case string:
			return v, nil
		}
	}
	switch v := value.(type) {
	case string, bool, int, int32, int64, float32, float64:
		return v, nil
	case time.Time:
		return v.UTC().Format(time.RFC3339), nil
	default:
		return nil, fmt.Errorf("cannot serialize %T as %s", value, typeName)
	}
}

func pathToString(path Path) string {
	result := ""
	for i, elem := range path {
		if i > 0 {
			result += "."
		}
		switch v := elem.(type) {
		case string:
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// Prefix tombstone helpers
func (s *executionState) markNullifiedPrefix(p Path) {
	key := pathToString(p)
	if key != "" {
		s.nullifiedPrefix[key] = struct{}{}
	}
}

func (s *executionState) hasNullifiedPrefix(p Path) bool {
	if len(s.nullifiedPrefix) == 0 {
		return false
	}
	cur := Path{}
	for _, elem := range p {
		cur = append(cur, elem)
		if _, ok := s.nullifiedPrefix[pathToString(cur)]; ok {
			return true
		}
	}
	return false
}

func topLevelFieldPath(p Path) Path {
	for _, elem := range p {
		if name, ok := elem.(string); ok {
			return Path{name}
		}
	}
	return Path{}
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		for _, op := range document.Operations {
			return op
		}
	}
	for _, op := range document.Operations {
		if op.Name == operationName {
			return op
		}
	}
	return nil
}

func (state *executionState) addError(message string, path Path) {
	state.errors = append(state.errors, GraphQLError{Message: message, Path: path})
}

// hasErrorAtPath reports whether an error with the given path already exists.
func (state *executionState) hasErrorAtPath(path Path) bool {
	for _, err := range state.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

// setValueAtPath writes value at path in the response tree
func setValueAtPath(responseRoot map[string]any, path Path, value any) {
	if len(path) == 0 {
		return
	}
	if len(path) == 1 {
		if key, ok := path[0].(string); ok {
			responseRoot[key] = value
			return
		}
	}
	current := any(responseRoot)
	for _, elem := range path[:len(path)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := current.(map[string]any)
			if !ok {
				return
			}
			next, exists := m[e]
			if !exists {
				next = make(map[string]any)
				m[e] = next
			}
			current = next
		case int:
			slice, ok := current.([]any)
			if !ok {
				return
			}
			for len(slice) <= e {
				slice = append(slice, nil)
			}
			if slice[e] == nil {
				slice[e] = make(map[string]any)
			}
			current = slice[e]
		}
	}
	switch fe := path[len(path)-1].(type) {
	case string:
		if m, ok := current.(map[string]any); ok {
			m[fe] = value
		}
	case int:
		if slice, ok := current.([]any); ok {
			for len(slice) <= fe {
				slice = append(slice, nil)
			}
			slice[fe] = value
		}
	}
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
