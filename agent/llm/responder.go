package llm

import (
	"context"
	"errors"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "callflow/agent/contract"
)

// ModelResponder adapts an eino chat model to the Responder capability the
// orchestration core consumes.
type ModelResponder struct {
	model einomodel.BaseChatModel
}

func NewResponder(model einomodel.BaseChatModel) (*ModelResponder, error) {
	if model == nil {
		return nil, errors.New("llm: chat model is required")
	}
	return &ModelResponder{model: model}, nil
}

func (r *ModelResponder) Respond(ctx context.Context, conversation []contractx.Message) (string, error) {
	msgs := make([]*schema.Message, 0, len(conversation))
	for _, m := range conversation {
		switch m.Role {
		case contractx.RoleSystem:
			msgs = append(msgs, schema.SystemMessage(m.Content))
		case contractx.RoleAgent:
			msgs = append(msgs, schema.AssistantMessage(m.Content, nil))
		default:
			msgs = append(msgs, schema.UserMessage(m.Content))
		}
	}

	out, err := r.model.Generate(ctx, msgs)
	if err != nil {
		return "", err
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", errors.New("llm: model returned an empty reply")
	}
	return out.Content, nil
}
