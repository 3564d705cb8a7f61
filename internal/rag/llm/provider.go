package llm

import (
	"context"

	"github.com/proview/proview-api/internal/domain/coachModel"
)

// Provider produces the raw structured payload for one coaching turn. The
// caller owns validation and repair of the output.
type Provider interface {
	Generate(ctx context.Context, userInput string, contextBlock string, history []coachModel.Turn) (string, error)
}
