package preview

import (
	"context"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/stagehand-hq/stagehand/pkg/domain/interfaces"
)

// TemplateRenderer renders previews from per-operation text templates. It
// covers deployments that do not configure an LLM; an operation without a
// template is an error and the caller falls back to a plain description.
type TemplateRenderer struct {
	templates map[string]*template.Template
}

var _ interfaces.PreviewRenderer = &TemplateRenderer{}

// templateData is what each template executes against
type templateData struct {
	Operation string
	Args      map[string]any
}

// NewTemplate compiles per-operation templates keyed by operation ID
func NewTemplate(templates map[string]string) (*TemplateRenderer, error) {
	compiled := make(map[string]*template.Template, len(templates))
	for operation, text := range templates {
		tmpl, err := template.New(operation).Option("missingkey=zero").Parse(text)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to parse preview template",
				goerr.V("operation", operation))
		}
		compiled[operation] = tmpl
	}
	return &TemplateRenderer{templates: compiled}, nil
}

func (x *TemplateRenderer) Render(ctx context.Context, operation string, args map[string]any) (string, error) {
	tmpl, ok := x.templates[operation]
	if !ok {
		return "", goerr.New("no preview template for operation",
			goerr.V("operation", operation))
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, templateData{Operation: operation, Args: args}); err != nil {
		return "", goerr.Wrap(err, "failed to render preview template",
			goerr.V("operation", operation))
	}

	return strings.TrimSpace(sb.String()), nil
}
