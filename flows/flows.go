package flows

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"text/template"

	"creme-store/apperrors"
	"creme-store/validators"

	"github.com/google/generative-ai-go/genai"
)

const brandVoice = `You write for Creme Collections, a Pakistani fashion and lifestyle store.
Keep a warm, polished tone. Prices are in PKR. Never invent order details that were not given.`

// Runner executes the storefront's prompt flows. A Runner without a model reports
// every flow as unavailable.
type Runner struct {
	model Model
}

func NewRunner(model Model) *Runner {
	return &Runner{model: model}
}

type checkable[T any] interface {
	Validate() validators.Result[T]
}

func check[T any](v T) validators.Result[T] {
	if violations := validators.Struct(v); violations != nil {
		return validators.Fail[T](violations)
	}
	return validators.Ok(v)
}

type flowDef struct {
	name   string
	system string
	prompt *template.Template
	schema *genai.Schema
}

func run[In checkable[In], Out checkable[Out]](ctx context.Context, r *Runner, flow flowDef, in In) (Out, error) {
	var out Out

	if res := in.Validate(); !res.OK() {
		return out, res.Err()
	}
	if r == nil || r.model == nil {
		return out, fmt.Errorf("%w: %s flow needs a configured generative model", apperrors.ErrFailedPrecondition, flow.name)
	}

	var prompt strings.Builder
	if err := flow.prompt.Execute(&prompt, in); err != nil {
		return out, fmt.Errorf("%w: render %s prompt: %v", apperrors.ErrInternal, flow.name, err)
	}

	raw, err := r.model.GenerateJSON(ctx, brandVoice+"\n\n"+flow.system, prompt.String(), flow.schema)
	if err != nil {
		log.Printf("Flow %s failed: %v", flow.name, err)
		return out, fmt.Errorf("%w: %s flow failed", apperrors.ErrInternal, flow.name)
	}

	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Printf("Flow %s returned malformed JSON: %v", flow.name, err)
		return out, fmt.Errorf("%w: %s flow returned malformed output", apperrors.ErrInternal, flow.name)
	}
	if res := out.Validate(); !res.OK() {
		log.Printf("Flow %s output rejected: %v", flow.name, res.Err())
		return out, fmt.Errorf("%w: %s flow returned incomplete output", apperrors.ErrInternal, flow.name)
	}
	return out, nil
}

func stringSchema(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

func objectSchema(properties map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: properties, Required: required}
}
