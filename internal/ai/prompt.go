package ai

import (
	"fmt"
	"strconv"
	"strings"

	"neuromentor/internal/model"
)

const (
	fallbackName  = "User"
	fallbackField = "not specified"

	systemPromptTemplate = "You are NeuroMentor, an AI psychologist. " +
		"You are talking to %s. " +
		"Gender: %s, age: %s. " +
		"Be warm and supportive and take these details into account."
)

// Profile is the slice of a user record the persona needs.
type Profile struct {
	Name   string
	Gender *string
	Age    *int
}

func ProfileFromUser(user *model.User) Profile {
	if user == nil {
		return Profile{}
	}
	return Profile{
		Name:   user.FirstName,
		Gender: user.Gender,
		Age:    user.Age,
	}
}

func SystemPrompt(p Profile) string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = fallbackName
	}
	gender := fallbackField
	if p.Gender != nil && strings.TrimSpace(*p.Gender) != "" {
		gender = strings.TrimSpace(*p.Gender)
	}
	age := fallbackField
	if p.Age != nil {
		age = strconv.Itoa(*p.Age)
	}
	return fmt.Sprintf(systemPromptTemplate, name, gender, age)
}

// BuildMessages assembles the completion request: system prompt, at most
// maxContext trailing history entries, then the new user message.
func BuildMessages(p Profile, history []model.HistoryEntry, message string, maxContext int) []model.HistoryEntry {
	if maxContext <= 0 {
		maxContext = DefaultMaxContext
	}
	if len(history) > maxContext {
		history = history[len(history)-maxContext:]
	}

	messages := make([]model.HistoryEntry, 0, len(history)+2)
	messages = append(messages, model.HistoryEntry{Role: model.RoleSystem, Content: SystemPrompt(p)})
	messages = append(messages, history...)
	messages = append(messages, model.HistoryEntry{Role: model.RoleUser, Content: message})
	return messages
}
