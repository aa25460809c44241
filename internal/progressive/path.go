package progressive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jacoelho/resultshape/internal/number"
)

// ShieldToken stands in for a literal dot inside a step.
const ShieldToken = "$#@#"

const joinMarker = ":join."

// Shield replaces every dot in s with ShieldToken so that s survives being
// embedded as a single step.
func Shield(s string) string {
	return strings.ReplaceAll(s, ".", ShieldToken)
}

// Unshield reverses Shield.
func Unshield(s string) string {
	return strings.ReplaceAll(s, ShieldToken, ".")
}

// Parse compiles a path expression. The empty expression addresses the root.
func Parse(expr string) (Path, error) {
	if expr == "" {
		return Path{}, nil
	}

	raw := strings.Split(expr, ".")
	path := make(Path, 0, len(raw))
	for i, segment := range raw {
		step, err := parseStep(segment)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d of %q: %v", ErrSyntax, i+1, expr, err)
		}
		path = append(path, step)
	}

	return path, nil
}

func parseStep(segment string) (Step, error) {
	if segment == "" {
		return Step{}, fmt.Errorf("empty step")
	}

	if strings.HasPrefix(segment, "[") {
		if !strings.HasSuffix(segment, "]") {
			return Step{}, fmt.Errorf("unterminated bracket in %q", segment)
		}
		return parseBracket(segment[1 : len(segment)-1])
	}

	if segment[0] == ':' && len(segment) > 1 {
		return Step{Kind: StepWildcard, Name: Unshield(segment[1:])}, nil
	}

	return Step{Kind: StepKey, Name: Unshield(segment)}, nil
}

func parseBracket(inner string) (Step, error) {
	if inner == "" {
		return Step{Kind: StepAppend}, nil
	}

	if inner[0] == '@' {
		field, value, ok := strings.Cut(inner[1:], "=")
		if !ok || field == "" {
			return Step{}, fmt.Errorf("predicate %q must be [@field=value]", inner)
		}
		return Step{Kind: StepPredicate, Name: Unshield(field), Value: Unshield(value)}, nil
	}

	index, err := strconv.Atoi(inner)
	if err != nil || index < 0 {
		return Step{}, fmt.Errorf("invalid index %q", inner)
	}

	return Step{Kind: StepIndex, Index: index}, nil
}

// ReplaceVars substitutes every `:name` token whose name is present in vars
// with the shielded string form of its value. Unknown tokens are left intact.
func ReplaceVars(template string, vars map[string]any) string {
	if len(vars) == 0 || !strings.Contains(template, ":") {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		if template[i] != ':' {
			b.WriteByte(template[i])
			i++
			continue
		}

		end := i + 1
		for end < len(template) && isNameByte(template[end]) {
			end++
		}

		value, ok := vars[template[i+1:end]]
		if end == i+1 || !ok {
			b.WriteString(template[i:end])
			i = end
			continue
		}

		b.WriteString(Shield(number.Format(value)))
		i = end
	}

	return b.String()
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// StripJoinMarkers removes `:join.` tokens left over after templating.
func StripJoinMarkers(path string) string {
	return strings.ReplaceAll(path, joinMarker, "")
}

// Parent drops the last step of expr.
func Parent(expr string) string {
	index := strings.LastIndexByte(expr, '.')
	if index < 0 {
		return ""
	}
	return expr[:index]
}

// Last returns the unshielded last step of expr.
func Last(expr string) string {
	index := strings.LastIndexByte(expr, '.')
	return Unshield(expr[index+1:])
}

// Child appends key to expr as a single shielded step.
func Child(expr, key string) string {
	if expr == "" {
		return Shield(key)
	}
	return expr + "." + Shield(key)
}
