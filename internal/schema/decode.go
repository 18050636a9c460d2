package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vk/taskgrid/internal/refs"
	"github.com/vk/taskgrid/internal/typesys"
)

// Decode parses a graph-definition document. Structural problems are
// collected exhaustively; the returned definition is only usable when the
// error list is empty.
func Decode(src []byte) (*Definition, []error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, []error{fmt.Errorf("malformed document: %w", err)}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, []error{fmt.Errorf("empty document")}
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, []error{errAt(top, "document root must be a mapping")}
	}

	def := &Definition{
		Types: map[string]*typesys.Decl{},
		Tasks: map[string]*Task{},
	}
	var errs []error

	for i := 0; i+1 < len(top.Content); i += 2 {
		keyNode, valNode := top.Content[i], top.Content[i+1]
		switch keyNode.Value {
		case "types":
			errs = append(errs, decodeTypes(valNode, def)...)
		case "parameters":
			errs = append(errs, decodeParameters(valNode, def)...)
		case "tasks":
			errs = append(errs, decodeTasks(valNode, def)...)
		case "graph":
			errs = append(errs, decodeGraph(valNode, def)...)
		default:
			errs = append(errs, errAt(keyNode, "unknown top-level section %q", keyNode.Value))
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return def, nil
}

func decodeTypes(node *yaml.Node, def *Definition) []error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return []error{errAt(node, "types section must be a mapping")}
	}
	var errs []error
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		name := keyNode.Value
		if typesys.IsPrimitive(name) {
			errs = append(errs, errAt(keyNode, "type %q shadows a built-in primitive", name))
			continue
		}
		decl, err := decodeTypeDecl(valNode)
		if err != nil {
			errs = append(errs, fmt.Errorf("type %q: %w", name, err))
			continue
		}
		def.Types[name] = decl
	}
	return errs
}

func decodeTypeDecl(node *yaml.Node) (*typesys.Decl, error) {
	if isNull(node) {
		return &typesys.Decl{Alias: true}, nil
	}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			return nil, errAt(node, "empty type reference")
		}
		// Scalars use the compact syntax, e.g. "string" or "list<number>".
		decl, err := typesys.ParseString(node.Value)
		if err != nil {
			return nil, errAt(node, "%v", err)
		}
		return decl, nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return nil, errAt(node, "structural type declaration must have exactly one of: list, mapping, tuple, union")
		}
		keyNode, valNode := node.Content[0], node.Content[1]
		switch keyNode.Value {
		case "list":
			elem, err := decodeTypeDecl(valNode)
			if err != nil {
				return nil, err
			}
			return &typesys.Decl{List: elem}, nil
		case "mapping":
			if valNode.Kind != yaml.SequenceNode || len(valNode.Content) != 2 {
				return nil, errAt(valNode, "mapping declaration requires a two-element sequence [key, value]")
			}
			key, err := decodeTypeDecl(valNode.Content[0])
			if err != nil {
				return nil, err
			}
			value, err := decodeTypeDecl(valNode.Content[1])
			if err != nil {
				return nil, err
			}
			return &typesys.Decl{Mapping: &typesys.MappingDecl{Key: key, Value: value}}, nil
		case "tuple", "union":
			if valNode.Kind != yaml.SequenceNode || len(valNode.Content) == 0 {
				return nil, errAt(valNode, "%s declaration requires a non-empty sequence", keyNode.Value)
			}
			decls := make([]*typesys.Decl, 0, len(valNode.Content))
			for _, elem := range valNode.Content {
				d, err := decodeTypeDecl(elem)
				if err != nil {
					return nil, err
				}
				decls = append(decls, d)
			}
			if keyNode.Value == "tuple" {
				return &typesys.Decl{Tuple: decls}, nil
			}
			return &typesys.Decl{Union: decls}, nil
		default:
			return nil, errAt(keyNode, "unknown type constructor %q", keyNode.Value)
		}
	default:
		return nil, errAt(node, "invalid type declaration")
	}
}

func decodeParameters(node *yaml.Node, def *Definition) []error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return []error{errAt(node, "parameters section must be a mapping")}
	}
	var errs []error
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		param := &Parameter{Name: keyNode.Value}

		if isLongFormParameter(valNode) {
			for j := 0; j+1 < len(valNode.Content); j += 2 {
				k, v := valNode.Content[j], valNode.Content[j+1]
				switch k.Value {
				case "type":
					param.Type = v.Value
				case "default":
					raw, err := decodeAny(v)
					if err != nil {
						errs = append(errs, fmt.Errorf("parameter %q default: %w", param.Name, err))
					}
					param.Default = raw
				}
			}
		} else {
			raw, err := decodeAny(valNode)
			if err != nil {
				errs = append(errs, fmt.Errorf("parameter %q: %w", param.Name, err))
				continue
			}
			param.Default = raw
		}
		def.Parameters = append(def.Parameters, param)
	}
	return errs
}

// isLongFormParameter distinguishes `{type: ..., default: ...}` from a
// mapping used directly as a shorthand default value. The long form is
// assumed only when a `type` key is present and no unrelated keys appear.
func isLongFormParameter(node *yaml.Node) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	hasType := false
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch node.Content[i].Value {
		case "type":
			hasType = true
		case "default":
		default:
			return false
		}
	}
	return hasType
}

func decodeTasks(node *yaml.Node, def *Definition) []error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return []error{errAt(node, "tasks section must be a mapping")}
	}
	var errs []error
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		task, taskErrs := decodeTask(keyNode.Value, valNode)
		errs = append(errs, taskErrs...)
		if task != nil {
			def.Tasks[task.Name] = task
		}
	}
	return errs
}

func decodeTask(name string, node *yaml.Node) (*Task, []error) {
	if node.Kind != yaml.MappingNode {
		return nil, []error{errAt(node, "task %q must be a mapping", name)}
	}
	task := &Task{Name: name}
	var errs []error

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		switch keyNode.Value {
		case "plugin":
			ref, err := ParsePluginRef(valNode.Value)
			if err != nil {
				errs = append(errs, fmt.Errorf("task %q: %w", name, err))
				continue
			}
			task.Plugin = ref
		case "inputs":
			for _, item := range valNode.Content {
				input, err := decodeTaskInput(item)
				if err != nil {
					errs = append(errs, fmt.Errorf("task %q: %w", name, err))
					continue
				}
				task.Inputs = append(task.Inputs, input)
			}
		case "outputs":
			for _, item := range valNode.Content {
				output, err := decodeTaskOutput(item)
				if err != nil {
					errs = append(errs, fmt.Errorf("task %q: %w", name, err))
					continue
				}
				task.Outputs = append(task.Outputs, output)
			}
		case "output":
			// Singular form: one implicit, unnamed result value.
			if valNode.Kind != yaml.ScalarNode || valNode.Value == "" {
				errs = append(errs, errAt(valNode, "task %q: output must name a type", name))
				continue
			}
			task.Outputs = append(task.Outputs, &TaskOutput{Type: valNode.Value})
		default:
			errs = append(errs, errAt(keyNode, "task %q: unknown field %q", name, keyNode.Value))
		}
	}

	if task.Plugin == (PluginRef{}) {
		errs = append(errs, errAt(node, "task %q: missing plugin reference", name))
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return task, nil
}

func decodeTaskInput(node *yaml.Node) (*TaskInput, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errAt(node, "input declaration must be a mapping")
	}
	input := &TaskInput{Required: true}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		switch k.Value {
		case "name":
			input.Name = v.Value
		case "type":
			input.Type = v.Value
		case "required":
			var req bool
			if err := v.Decode(&req); err != nil {
				return nil, errAt(v, "required must be a boolean")
			}
			input.Required = req
		default:
			return nil, errAt(k, "unknown input field %q", k.Value)
		}
	}
	if input.Name == "" || input.Type == "" {
		return nil, errAt(node, "input declaration requires name and type")
	}
	return input, nil
}

func decodeTaskOutput(node *yaml.Node) (*TaskOutput, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errAt(node, "output declaration must be a mapping")
	}
	output := &TaskOutput{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		switch k.Value {
		case "name":
			output.Name = v.Value
		case "type":
			output.Type = v.Value
		default:
			return nil, errAt(k, "unknown output field %q", k.Value)
		}
	}
	if output.Name == "" || output.Type == "" {
		return nil, errAt(node, "output declaration requires name and type")
	}
	return output, nil
}

func decodeGraph(node *yaml.Node, def *Definition) []error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return []error{errAt(node, "graph section must be a mapping")}
	}
	var errs []error
	seen := map[string]bool{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		name := keyNode.Value
		if seen[name] {
			errs = append(errs, errAt(keyNode, "duplicate step name %q", name))
			continue
		}
		seen[name] = true

		step, stepErrs := decodeStep(name, valNode)
		errs = append(errs, stepErrs...)
		if step != nil {
			def.Steps = append(def.Steps, step)
		}
	}
	return errs
}

func decodeStep(name string, node *yaml.Node) (*Step, []error) {
	if node.Kind != yaml.MappingNode {
		return nil, []error{errAt(node, "step %q must be a mapping", name)}
	}
	step := &Step{Name: name, Inputs: map[string]*refs.Node{}}
	var errs []error

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Value == "dependencies" {
			if err := valNode.Decode(&step.Dependencies); err != nil {
				errs = append(errs, errAt(valNode, "step %q: dependencies must be a list of step names", name))
			}
			continue
		}
		if step.Task != "" {
			errs = append(errs, errAt(keyNode, "step %q invokes more than one task (%q and %q)", name, step.Task, keyNode.Value))
			continue
		}
		step.Task = keyNode.Value
		bindingErrs := decodeBindings(name, valNode, step)
		errs = append(errs, bindingErrs...)
	}

	if step.Task == "" {
		errs = append(errs, errAt(node, "step %q does not invoke a task", name))
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return step, nil
}

func decodeBindings(stepName string, node *yaml.Node, step *Step) []error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return []error{errAt(node, "step %q: input bindings must be a mapping", stepName)}
	}
	var errs []error
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		raw, err := decodeAny(valNode)
		if err != nil {
			errs = append(errs, fmt.Errorf("step %q input %q: %w", stepName, keyNode.Value, err))
			continue
		}
		binding, err := refs.Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("step %q input %q: %w", stepName, keyNode.Value, err))
			continue
		}
		step.Inputs[keyNode.Value] = binding
		step.InputOrder = append(step.InputOrder, keyNode.Value)
	}
	return errs
}

func decodeAny(node *yaml.Node) (any, error) {
	var out any
	if err := node.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func isNull(node *yaml.Node) bool {
	return node == nil || node.Tag == "!!null" || (node.Kind == 0 && node.Value == "")
}

func errAt(node *yaml.Node, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if node != nil && node.Line > 0 {
		return fmt.Errorf("line %d: %s", node.Line, msg)
	}
	return fmt.Errorf("%s", msg)
}
