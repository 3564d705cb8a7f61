package coachModel

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one conversation entry. It is never persisted server-side; the
// client replays the bounded history on every request.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Clients sometimes echo the whole assistant reply object back as the turn
// content. Accept either a plain string or an object and collapse the
// object to its interviewer_chat text.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var plain struct {
		Role    Role            `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &plain); err != nil {
		return err
	}
	t.Role = plain.Role

	var s string
	if err := json.Unmarshal(plain.Content, &s); err == nil {
		t.Content = s
		return nil
	}

	var obj struct {
		InterviewerChat string `json:"interviewer_chat"`
	}
	if err := json.Unmarshal(plain.Content, &obj); err == nil && obj.InterviewerChat != "" {
		t.Content = obj.InterviewerChat
		return nil
	}
	t.Content = string(plain.Content)
	return nil
}

// CoachReply is the structured output of one coaching turn.
type CoachReply struct {
	InterviewerChat    string   `json:"interviewer_chat"`
	IsCorrect          *bool    `json:"is_correct,omitempty"`
	Score              *string  `json:"score,omitempty"`
	RefinedExplanation *string  `json:"refined_explanation,omitempty"`
	SuggestedReplies   []string `json:"suggested_replies"`
}

// Outcome of normalizing a raw model reply. Repair is a first-class result,
// not an exception path.
type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeRepaired
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeRepaired:
		return "repaired"
	default:
		return "rejected"
	}
}

const (
	emptyChatFallback = "I'm here to help you prepare for your interview. What would you like to work on?"
	// worded for the user, never a raw error
	upstreamFailureChat = "I apologize, but I encountered an issue. Let's try again. What would you like help with?"
)

var fallbackSuggestions = []string{
	"Start interview practice",
	"Upload my resume",
	"Get feedback on my answer",
}

var scorePattern = regexp.MustCompile(`^(\d{1,2})/10$`)

// ParseReply decodes the model's JSON payload and normalizes it into a
// CoachReply that honors the schema invariants. A payload that cannot be
// decoded at all is Rejected and replaced by the failure fallback.
func ParseReply(raw string) (CoachReply, Outcome) {
	var reply CoachReply
	if err := json.Unmarshal([]byte(extractJSON(raw)), &reply); err != nil {
		return FailureReply(), OutcomeRejected
	}
	return Normalize(reply)
}

// Normalize repairs schema violations in place of failing the turn: an empty
// interviewer_chat gets the fixed fallback plus suggestions, a malformed or
// out-of-range score is dropped.
func Normalize(reply CoachReply) (CoachReply, Outcome) {
	outcome := OutcomeValid

	reply.InterviewerChat = strings.TrimSpace(reply.InterviewerChat)
	if reply.InterviewerChat == "" {
		reply.InterviewerChat = emptyChatFallback
		if len(reply.SuggestedReplies) == 0 {
			reply.SuggestedReplies = append([]string(nil), fallbackSuggestions...)
		}
		outcome = OutcomeRepaired
	}

	if reply.Score != nil {
		if err := validateScore(*reply.Score); err != nil {
			reply.Score = nil
			outcome = OutcomeRepaired
		}
	}

	if reply.SuggestedReplies == nil {
		reply.SuggestedReplies = []string{}
	}
	return reply, outcome
}

// FailureReply is returned for any upstream model failure. The turn must
// stay conversational.
func FailureReply() CoachReply {
	return CoachReply{
		InterviewerChat:  upstreamFailureChat,
		SuggestedReplies: append([]string(nil), fallbackSuggestions...),
	}
}

// EmptyInputReply answers a blank user message without an upstream call.
func EmptyInputReply() CoachReply {
	return CoachReply{
		InterviewerChat:  "I didn't receive your message. Could you please try again?",
		SuggestedReplies: []string{"Tell me about yourself", "I need help preparing for an interview"},
	}
}

func validateScore(score string) error {
	m := scorePattern.FindStringSubmatch(score)
	if m == nil {
		return errors.New("score must be in X/10 format")
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 10 {
		return errors.New("score must be between 0 and 10")
	}
	return nil
}

// extractJSON trims junk around the outermost object. Models occasionally
// wrap the JSON in markdown fences or prose.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}
