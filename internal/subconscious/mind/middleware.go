package mind

import "context"

// ChatFunc is any existing chat function a caller already has: takes a
// prompt, returns a reply.
type ChatFunc func(ctx context.Context, prompt string) (string, error)

// Middleware wraps a ChatFunc with cognitive augmentation, without
// requiring the caller to touch Think/Learn/Dream directly. Every tenth
// call triggers one synchronous dream cycle.
type Middleware struct {
	mind  *Mind
	chat  ChatFunc
	calls int
}

// NewMiddleware wraps chat with the given Mind.
func NewMiddleware(m *Mind, chat ChatFunc) *Middleware {
	return &Middleware{mind: m, chat: chat}
}

// Handle runs one augmented exchange: Think recalls memories and spreads
// activation, an enriched prompt is assembled from the message, those
// recalled memories and activated concepts, the wrapped chat function
// produces the actual reply from that prompt, and the reply is learned
// back into memory under domain "conversation". Every 10th call also runs
// one synchronous dream cycle.
func (mw *Middleware) Handle(ctx context.Context, message string) (string, error) {
	result := mw.mind.Think(ctx, message, false, 0)
	prompt := mw.mind.buildContext(message, result.RecalledMemories, result.ActivatedConcepts)

	reply, err := mw.chat(ctx, prompt)
	if err != nil {
		return "", err
	}

	if _, err := mw.mind.Learn(ctx, reply, "conversation", 0.5, nil); err != nil {
		_ = err // learning failures degrade silently, matching Think's store errors
	}

	mw.calls++
	if mw.calls%10 == 0 {
		mw.mind.Dream(ctx)
	}

	return reply, nil
}
