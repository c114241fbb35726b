package executor

import (
	"fmt"
	"strconv"

	language "github.com/hanpama/newsgraph/internal/language"
	schema "github.com/hanpama/newsgraph/internal/schema"
)

// coerceVariableValues coerces the request's variable values against the
// operation's variable definitions.
func coerceVariableValues(operation *language.OperationDefinition, variableValues map[string]any) (map[string]any, error) {
	coerced := make(map[string]any, len(operation.VariableDefinitions))

	for _, varDef := range operation.VariableDefinitions {
		varName := varDef.Variable
		varType := typeRefFromAST(varDef.Type)

		value, provided := variableValues[varName]
		if !provided {
			if varDef.DefaultValue != nil {
				coerced[varName] = astValueToGo(varDef.DefaultValue, nil)
				continue
			}
			if schema.IsNonNull(varType) {
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", varName, typeRefString(varType))
			}
			continue
		}

		if value == nil {
			if schema.IsNonNull(varType) {
				return nil, fmt.Errorf("variable $%s of non-null type %s must not be null", varName, typeRefString(varType))
			}
			coerced[varName] = nil
			continue
		}

		cv, err := coerceValue(value, varType)
		if err != nil {
			return nil, fmt.Errorf("variable $%s has invalid value: %s", varName, err)
		}
		coerced[varName] = cv
	}

	return coerced, nil
}

// coerceArgumentValues coerces a field's argument values. Invalid or
// missing required arguments record an error at the field's path and the
// argument is omitted.
func coerceArgumentValues(fieldDef *schema.Field, arguments language.ArgumentList, variableValues map[string]any, state *executionState, path Path) map[string]any {
	coerced := make(map[string]any, len(fieldDef.Arguments))

	for _, argDef := range fieldDef.Arguments {
		argAST := arguments.ForName(argDef.Name)

		if argAST == nil {
			if argDef.DefaultValue != nil {
				coerced[argDef.Name] = argDef.DefaultValue
			} else if schema.IsNonNull(argDef.Type) {
				state.addError(fmt.Sprintf("Argument '%s' of required type %s was not provided", argDef.Name, typeRefString(argDef.Type)), path)
			}
			continue
		}

		raw := astValueToGo(argAST.Value, variableValues)
		if raw == nil {
			if schema.IsNonNull(argDef.Type) {
				state.addError(fmt.Sprintf("Argument '%s' of non-null type %s must not be null", argDef.Name, typeRefString(argDef.Type)), path)
			} else if argDef.DefaultValue != nil {
				coerced[argDef.Name] = argDef.DefaultValue
			} else {
				coerced[argDef.Name] = nil
			}
			continue
		}

		cv, err := coerceValue(raw, argDef.Type)
		if err != nil {
			state.addError(fmt.Sprintf("Argument '%s' has invalid value: %s", argDef.Name, err), path)
			continue
		}
		coerced[argDef.Name] = cv
	}

	return coerced
}

// valueFromASTWithVars resolves an AST value, substituting variables.
func valueFromASTWithVars(value *language.Value, variableValues map[string]any) any {
	return astValueToGo(value, variableValues)
}

// astValueToGo converts an AST value literal into a plain Go value.
func astValueToGo(value *language.Value, variableValues map[string]any) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.Variable:
		if variableValues == nil {
			return nil
		}
		return variableValues[value.Raw]
	case language.IntValue:
		n, err := strconv.ParseInt(value.Raw, 10, 64)
		if err != nil {
			return nil
		}
		return n
	case language.FloatValue:
		f, err := strconv.ParseFloat(value.Raw, 64)
		if err != nil {
			return nil
		}
		return f
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.ListValue:
		list := make([]any, 0, len(value.Children))
		for _, child := range value.Children {
			list = append(list, astValueToGo(child.Value, variableValues))
		}
		return list
	case language.ObjectValue:
		obj := make(map[string]any, len(value.Children))
		for _, child := range value.Children {
			obj[child.Name] = astValueToGo(child.Value, variableValues)
		}
		return obj
	default:
		return nil
	}
}

// coerceValue coerces a Go value against a type reference. Scalar inputs
// arrive either as parsed literals (int64, float64, string, bool) or as
// JSON-decoded variables (float64 for all numbers).
func coerceValue(value any, t *schema.TypeRef) (any, error) {
	if schema.IsNonNull(t) {
		if value == nil {
			return nil, fmt.Errorf("expected non-null %s, got null", typeRefString(schema.Unwrap(t)))
		}
		return coerceValue(value, schema.Unwrap(t))
	}
	if value == nil {
		return nil, nil
	}
	if t.Kind == schema.TypeRefKindList {
		items, ok := value.([]any)
		if !ok {
			// single value coerces to a one-item list
			cv, err := coerceValue(value, schema.Unwrap(t))
			if err != nil {
				return nil, err
			}
			return []any{cv}, nil
		}
		coerced := make([]any, len(items))
		for i, item := range items {
			cv, err := coerceValue(item, schema.Unwrap(t))
			if err != nil {
				return nil, fmt.Errorf("list item %d: %s", i, err)
			}
			coerced[i] = cv
		}
		return coerced, nil
	}

	switch t.Named {
	case "Int":
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		case float64:
			if v != float64(int64(v)) {
				return nil, fmt.Errorf("expected Int, got non-integral number %v", v)
			}
			return int64(v), nil
		}
		return nil, fmt.Errorf("expected Int, got %T", value)
	case "Float":
		switch v := value.(type) {
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case float64:
			return v, nil
		}
		return nil, fmt.Errorf("expected Float, got %T", value)
	case "String":
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("expected String, got %T", value)
	case "Boolean":
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("expected Boolean, got %T", value)
	case "ID":
		switch v := value.(type) {
		case string:
			return v, nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			if v != float64(int64(v)) {
				return nil, fmt.Errorf("expected ID, got non-integral number %v", v)
			}
			return strconv.FormatInt(int64(v), 10), nil
		}
		return nil, fmt.Errorf("expected ID, got %T", value)
	default:
		// unknown scalars pass through as-is
		return value, nil
	}
}

// typeRefFromAST converts a parsed AST type into a schema type reference.
func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	var ref *schema.TypeRef
	if t.NamedType != "" {
		ref = schema.NamedType(t.NamedType)
	} else {
		ref = schema.ListType(typeRefFromAST(t.Elem))
	}
	if t.NonNull {
		ref = schema.NonNullType(ref)
	}
	return ref
}

func typeRefString(t *schema.TypeRef) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case schema.TypeRefKindNonNull:
		return typeRefString(t.OfType) + "!"
	case schema.TypeRefKindList:
		return "[" + typeRefString(t.OfType) + "]"
	default:
		return t.Named
	}
}
