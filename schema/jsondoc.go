package schema

// JSONDoc renders a Schema as a JSON Schema document (as a plain Go value
// tree, ready for json.Marshal or direct use with jsonschema.Compiler's
// AddResource, which accepts an already-decoded document). This is the
// bridge between our internal Schema representation and the jsonschema/v6
// validator used in validate.go.
func JSONDoc(s Schema) map[string]any {
	doc := jsonDocBase(s)
	if s.Nullable {
		doc = map[string]any{"anyOf": []any{doc, map[string]any{"type": "null"}}}
	}
	return doc
}

func jsonDocBase(s Schema) map[string]any {
	switch s.Kind {
	case KindString:
		return map[string]any{"type": "string"}
	case KindNumber:
		return map[string]any{"type": "number"}
	case KindBoolean:
		return map[string]any{"type": "boolean"}
	case KindArray:
		items := map[string]any{}
		if s.Items != nil {
			items = JSONDoc(*s.Items)
		}
		return map[string]any{"type": "array", "items": items}
	case KindObject:
		props := make(map[string]any, len(s.Properties))
		for name, field := range s.Properties {
			props[name] = JSONDoc(field)
		}
		doc := map[string]any{"type": "object", "properties": props}
		if len(s.Required) > 0 {
			req := make([]any, len(s.Required))
			for i, r := range s.Required {
				req[i] = r
			}
			doc["required"] = req
		}
		return doc
	case KindEnum:
		vals := make([]any, len(s.Enum))
		for i, v := range s.Enum {
			vals[i] = v
		}
		return map[string]any{"type": "string", "enum": vals}
	case KindLiteral:
		return map[string]any{"const": s.Literal}
	case KindUnion:
		members := make([]any, len(s.Anyof))
		for i, m := range s.Anyof {
			members[i] = JSONDoc(m)
		}
		return map[string]any{"anyOf": members}
	case KindAny:
		fallthrough
	default:
		return map[string]any{}
	}
}
