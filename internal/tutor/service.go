package tutor

import (
	"context"
	"fmt"

	"mathmend-backend/internal/llm"
	"mathmend-backend/internal/results"
	"mathmend-backend/internal/shared/telemetry"
)

const systemPersona = "You are a helpful math tutor. Explain your answers clearly and step by step."

// MsgTutorUnavailable replaces the answer when the model call fails.
// A tutoring miss is not a request failure.
const MsgTutorUnavailable = "There was a problem generating a response from the AI tutor."

const contextNote = "\n\nNote: Using context from your document."

// Service answers free-form math questions, optionally grounded in a
// document's corrected text.
type Service struct {
	LLM     llm.Client
	Results results.Repo
}

// Answer is the outcome of a question.
type Answer struct {
	Question string
	Answer   string
	MathType string
}

// Ask builds a system+user exchange and returns the model's reply.
// When documentID is set, the stored corrected text is prepended as
// context; a failed lookup silently omits the context rather than
// failing the question.
func (s *Service) Ask(ctx context.Context, question, mathType, documentID string) (Answer, error) {
	if question == "" {
		return Answer{}, fmt.Errorf("question is required")
	}

	docContext := s.lookupContext(ctx, documentID)

	userMessage := question
	if docContext != "" {
		userMessage = docContext + "\n\n" + question
	}

	reply, err := s.LLM.Chat(ctx, systemPersona, userMessage)
	if err != nil {
		telemetry.Warn("tutor.llm_degraded", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
		reply = MsgTutorUnavailable
	}

	if docContext != "" {
		reply += contextNote
	}

	return Answer{
		Question: question,
		Answer:   reply,
		MathType: mathType,
	}, nil
}

// lookupContext is best effort: any miss or repo failure yields no
// context, never an error.
func (s *Service) lookupContext(ctx context.Context, documentID string) string {
	if documentID == "" || s.Results == nil {
		return ""
	}
	res, err := s.Results.GetByDocumentID(ctx, documentID)
	if err != nil {
		telemetry.Warn("tutor.context_best_effort", map[string]any{
			"document_id": documentID,
			"error":       err.Error(),
		})
		return ""
	}
	return "Here's the context from the document: " + res.CorrectedText
}
