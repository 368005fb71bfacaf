package schema

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/networktocode/schema-enforcer/internal/fs"
)

// resolveRefs returns a copy of the schema document with every $ref inlined.
// Fragment references resolve within their own document; relative references
// load the target file from disk, relative to the referencing document.
// This exists only for human inspection - validation always runs on the
// compiled schema, which handles references natively.
func resolveRefs(js *JSONSchema) (any, error) {
	copied, err := fs.DeepCopy(js.Document())
	if err != nil {
		return nil, err
	}
	r := &refResolver{docs: map[string]any{}}
	base, err := filepath.Abs(js.Source())
	if err != nil {
		return nil, err
	}
	r.docs[base] = copied
	return r.resolve(copied, base, map[string]bool{})
}

type refResolver struct {
	docs map[string]any // parsed documents by absolute path
}

func (r *refResolver) resolve(node any, doc string, active map[string]bool) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		if ref, ok := n["$ref"].(string); ok && len(n) == 1 {
			return r.deref(ref, doc, active)
		}
		out := make(map[string]any, len(n))
		for k, v := range n {
			rv, err := r.resolve(v, doc, active)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			rv, err := r.resolve(v, doc, active)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return node, nil
	}
}

func (r *refResolver) deref(ref, doc string, active map[string]bool) (any, error) {
	path, fragment, _ := strings.Cut(ref, "#")
	target := doc
	if path != "" {
		target = filepath.Join(filepath.Dir(doc), filepath.FromSlash(path))
	}

	key := target + "#" + fragment
	if active[key] {
		// Leave cyclic references in place rather than inlining forever.
		return map[string]any{"$ref": ref}, nil
	}
	active[key] = true
	defer delete(active, key)

	root, ok := r.docs[target]
	if !ok {
		loaded, err := fs.LoadFile(target)
		if err != nil {
			return nil, fmt.Errorf("cannot resolve $ref %q: %w", ref, err)
		}
		r.docs[target] = loaded
		root = loaded
	}

	node, err := jsonPointer(root, fragment)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve $ref %q: %w", ref, err)
	}
	return r.resolve(node, target, active)
}

// jsonPointer walks a JSON pointer fragment such as /definitions/hostname.
func jsonPointer(root any, fragment string) (any, error) {
	if fragment == "" || fragment == "/" {
		return root, nil
	}
	node := root
	for _, token := range strings.Split(strings.TrimPrefix(fragment, "/"), "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		m, ok := node.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("pointer %s traverses a non-object", fragment)
		}
		node, ok = m[token]
		if !ok {
			return nil, fmt.Errorf("pointer %s not found", fragment)
		}
	}
	return node, nil
}
