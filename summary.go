package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aquilax/debateboard/argument"
	"github.com/aquilax/debateboard/database"
	"github.com/gorilla/mux"
	"github.com/sashabaranov/go-openai"
)

const summarySystemPrompt = "You summarize debates. Give the strongest points in favor, " +
	"the strongest points against and where the discussion stands, in the language of the debate."

var errNoChoices = errors.New("completion returned no choices")

// Summarizer asks an OpenAI compatible chat completion API for a summary of
// a debate tree.
type Summarizer struct {
	client *openai.Client
	model  string
}

// NewSummarizer returns nil when no API key is configured.
func NewSummarizer(c OpenAIConfig) *Summarizer {
	if c.APIKey == "" {
		return nil
	}
	oc := openai.DefaultConfig(c.APIKey)
	if c.BaseURL != "" {
		oc.BaseURL = c.BaseURL
	}
	return &Summarizer{
		client: openai.NewClientWithConfig(oc),
		model:  c.Model,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// summaryPrompt lays the tree out one argument per line, indented by depth
// and tagged with its stance and score.
func summaryPrompt(t *argument.Topic, tree *Tree) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic: %s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", plainText(t.Description))
	}
	sb.WriteString("Arguments:\n")
	for _, root := range tree.Data {
		root.Walk(func(depth int, n *argument.Node) {
			fmt.Fprintf(&sb, "%s- [%s %+d] %s\n",
				strings.Repeat("  ", depth), n.Type, n.VotesCount, plainText(n.Content))
		})
	}
	return sb.String()
}

func (d *DebateBoard) summaryHandler(w http.ResponseWriter, r *http.Request) error {
	s := d.session(r)
	if _, err := requireUser(s); err != nil {
		return err
	}
	if d.summarizer == nil {
		return newHTTPError(http.StatusServiceUnavailable, s.Lang("Summaries are not available."), nil)
	}
	topicID := argument.TopicID(mux.Vars(r)["topicID"])
	t, err := d.m.getTopic(r.Context(), topicID)
	if err == nil {
		var tree *Tree
		if tree, err = d.m.getTree(r.Context(), topicID, 1, d.config.MaxPageSize); err == nil {
			summary, err := d.summarizer.Summarize(r.Context(), summaryPrompt(t, tree))
			if err != nil {
				d.log.Warn("summary failed", "topic", topicID, "err", err)
				return newHTTPError(http.StatusBadGateway, s.Lang("Summary provider failed."), err)
			}
			return s.render(w, http.StatusOK, Response{"summary": summary})
		}
	}
	if errors.Is(err, database.ErrNotFound) {
		return notFound(s.Lang("Topic not found."), err)
	}
	return err
}
