package prompts

import "strings"

// Render substitutes {{name}} placeholders in a template. Unknown
// placeholders are left in place so a missing variable is visible in the
// rendered output rather than silently blank.
func Render(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
