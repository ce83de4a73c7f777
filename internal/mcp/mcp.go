// Package mcp implements the Model Context Protocol server for BrainLocker.
//
// It exposes the study-notes store over MCP stdio so an assistant can file
// questions, bulk-import pasted notes and quiz from the saved answers.
//
// Tool profiles select what gets registered:
//
//	brainlocker mcp                     → every tool (default)
//	brainlocker mcp --tools=study       → adding, importing and reading notes
//	brainlocker mcp --tools=admin       → deletes, profile writes, stats
//	brainlocker mcp --tools=study,admin → combine profiles
//	brainlocker mcp --tools=bl_stats    → individual tool names
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dipak-sahani/brainlocker/internal/bulk"
	"github.com/Dipak-sahani/brainlocker/internal/forms"
	"github.com/Dipak-sahani/brainlocker/internal/logger"
	"github.com/Dipak-sahani/brainlocker/internal/store"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ─── Tool Profiles ───────────────────────────────────────────────────────────
//
// "study" — day to day note taking and review
// "admin" — destructive or account-level operations
//
// "all" (default) — every tool registered.

var ProfileStudy = map[string]bool{
	"bl_add_question":   true,
	"bl_bulk_import":    true,
	"bl_parse_preview":  true,
	"bl_list_questions": true,
	"bl_get_question":   true,
	"bl_topics":         true,
	"bl_get_profile":    true,
}

var ProfileAdmin = map[string]bool{
	"bl_delete_question": true,
	"bl_save_profile":    true,
	"bl_stats":           true,
}

// Profiles maps profile names to their tool sets.
var Profiles = map[string]map[string]bool{
	"study": ProfileStudy,
	"admin": ProfileAdmin,
}

// ResolveTools turns a comma-separated list of profile and tool names into
// the set to register. nil means everything.
func ResolveTools(input string) map[string]bool {
	input = strings.TrimSpace(input)
	if input == "" || input == "all" {
		return nil
	}

	result := make(map[string]bool)
	for _, token := range strings.Split(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if token == "all" {
			return nil
		}
		if profile, ok := Profiles[token]; ok {
			for tool := range profile {
				result[tool] = true
			}
			continue
		}
		result[token] = true
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

const serverInstructions = `BrainLocker stores study notes as question and answer pairs grouped by ` +
	`topic. Use these tools to save a question, import a block of pasted notes ` +
	`written as "Q1: ... A1: ...", preview how such a block will be parsed, ` +
	`list or search saved questions for a quiz, and read the learner's profile. ` +
	`Key tools: bl_add_question, bl_bulk_import, bl_list_questions, bl_topics.`

// NewServer creates an MCP server with every tool registered.
func NewServer(s *store.Store) *server.MCPServer {
	return NewServerWithTools(s, nil, nil)
}

// NewServerWithTools registers only the tools in allowlist (nil = all).
// log may be nil.
func NewServerWithTools(s *store.Store, allowlist map[string]bool, log *logger.Logger) *server.MCPServer {
	if log == nil {
		log = logger.Nop()
	}
	srv := server.NewMCPServer(
		"brainlocker",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)

	registerTools(srv, s, allowlist, log.With("component", "mcp"))
	return srv
}

func shouldRegister(name string, allowlist map[string]bool) bool {
	if allowlist == nil {
		return true
	}
	return allowlist[name]
}

func registerTools(srv *server.MCPServer, s *store.Store, allowlist map[string]bool, log *logger.Logger) {
	// ─── bl_add_question (profile: study) ──────────────────────────────
	if shouldRegister("bl_add_question", allowlist) {
		srv.AddTool(
			mcp.NewTool("bl_add_question",
				mcp.WithDescription("Save one question and its answer under a topic. The topic does not need to exist yet."),
				mcp.WithTitleAnnotation("Add Question"),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(false),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("topic",
					mcp.Required(),
					mcp.Description("Topic name, e.g. 'JavaScript' or 'React Native'"),
				),
				mcp.WithString("question",
					mcp.Required(),
					mcp.Description("Question text"),
				),
				mcp.WithString("answer",
					mcp.Required(),
					mcp.Description("Answer text"),
				),
			),
			handleAddQuestion(s, log),
		)
	}

	// ─── bl_bulk_import (profile: study) ───────────────────────────────
	if shouldRegister("bl_bulk_import", allowlist) {
		srv.AddTool(
			mcp.NewTool("bl_bulk_import",
				mcp.WithTitleAnnotation("Bulk Import"),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(false),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithDescription(`Parse a block of notes into question/answer pairs and save every complete pair under one topic.

Recognised markers (case-insensitive, digits optional):
  Q1: / Question1: / "1. "   start a question
  A1: / Answer1:             start its answer
Lines without a marker continue the current question or answer.
Questions without an answer are skipped and reported.`),
				mcp.WithString("topic",
					mcp.Required(),
					mcp.Description("Topic every imported question is filed under"),
				),
				mcp.WithString("text",
					mcp.Required(),
					mcp.Description("Raw notes, e.g. \"Q1: What is JSX?\\nA1: A syntax extension...\""),
				),
			),
			handleBulkImport(s, log),
		)
	}

	// ─── bl_parse_preview (profile: study) ─────────────────────────────
	if shouldRegister("bl_parse_preview", allowlist) {
		srv.AddTool(
			mcp.NewTool("bl_parse_preview",
				mcp.WithDescription("Show how a block of notes would be split into questions and answers without saving anything."),
				mcp.WithTitleAnnotation("Preview Parse"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("text",
					mcp.Required(),
					mcp.Description("Raw notes to parse"),
				),
			),
			handleParsePreview(),
		)
	}

	// ─── bl_list_questions (profile: study) ────────────────────────────
	if shouldRegister("bl_list_questions", allowlist) {
		srv.AddTool(
			mcp.NewTool("bl_list_questions",
				mcp.WithDescription("List saved questions, newest first. Filter by topic and search question and answer text."),
				mcp.WithTitleAnnotation("List Questions"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("topic",
					mcp.Description("Only questions in this topic"),
				),
				mcp.WithString("query",
					mcp.Description("Case-insensitive text to look for in questions and answers"),
				),
				mcp.WithBoolean("oldest",
					mcp.Description("Oldest first instead of newest first"),
				),
				mcp.WithBoolean("answers",
					mcp.Description("Include full answers (default: short preview)"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Max results (default: 20, max: 100)"),
				),
			),
			handleListQuestions(s, log),
		)
	}

	// ─── bl_get_question (profile: study) ──────────────────────────────
	if shouldRegister("bl_get_question", allowlist) {
		srv.AddTool(
			mcp.NewTool("bl_get_question",
				mcp.WithDescription("Get one saved question with its full answer."),
				mcp.WithTitleAnnotation("Get Question"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithNumber("id",
					mcp.Required(),
					mcp.Description("Question ID"),
				),
			),
			handleGetQuestion(s, log),
		)
	}

	// ─── bl_topics (profile: study) ────────────────────────────────────
	if shouldRegister("bl_topics", allowlist) {
		srv.AddTool(
			mcp.NewTool("bl_topics",
				mcp.WithDescription("List topics with how many questions each one holds, including suggested topics that are still empty."),
				mcp.WithTitleAnnotation("List Topics"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
			),
			handleTopics(s, log),
		)
	}

	// ─── bl_delete_question (profile: admin) ───────────────────────────
	if shouldRegister("bl_delete_question", allowlist) {
		srv.AddTool(
			mcp.NewTool("bl_delete_question",
				mcp.WithDescription("Permanently delete a question by ID."),
				mcp.WithTitleAnnotation("Delete Question"),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(true),
				mcp.WithIdempotentHintAnnotation(false),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithNumber("id",
					mcp.Required(),
					mcp.Description("Question ID to delete"),
				),
			),
			handleDeleteQuestion(s, log),
		)
	}

	// ─── bl_get_profile (profile: study) ───────────────────────────────
	if shouldRegister("bl_get_profile", allowlist) {
		srv.AddTool(
			mcp.NewTool("bl_get_profile",
				mcp.WithDescription("Read the learner's profile (name, age, class, email)."),
				mcp.WithTitleAnnotation("Get Profile"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
			),
			handleGetProfile(s, log),
		)
	}

	// ─── bl_save_profile (profile: admin) ──────────────────────────────
	if shouldRegister("bl_save_profile", allowlist) {
		srv.AddTool(
			mcp.NewTool("bl_save_profile",
				mcp.WithDescription("Create or replace the learner's profile. There is only ever one profile."),
				mcp.WithTitleAnnotation("Save Profile"),
				mcp.WithReadOnlyHintAnnotation(false),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
				mcp.WithString("name",
					mcp.Required(),
					mcp.Description("Learner name"),
				),
				mcp.WithString("email",
					mcp.Required(),
					mcp.Description("Contact email"),
				),
				mcp.WithNumber("age",
					mcp.Description("Age in years (0 or omitted = not given)"),
				),
				mcp.WithString("className",
					mcp.Description("Class or course"),
				),
			),
			handleSaveProfile(s, log),
		)
	}

	// ─── bl_stats (profile: admin) ─────────────────────────────────────
	if shouldRegister("bl_stats", allowlist) {
		srv.AddTool(
			mcp.NewTool("bl_stats",
				mcp.WithDescription("Show how many questions and topics are stored."),
				mcp.WithTitleAnnotation("Stats"),
				mcp.WithReadOnlyHintAnnotation(true),
				mcp.WithDestructiveHintAnnotation(false),
				mcp.WithIdempotentHintAnnotation(true),
				mcp.WithOpenWorldHintAnnotation(false),
			),
			handleStats(s, log),
		)
	}
}

// ─── Tool Handlers ───────────────────────────────────────────────────────────

// Storage failures reach the client only as these texts; the cause is logged.
const (
	msgSaveFailed   = "Failed to save question"
	msgImportFailed = "Failed to import questions"
	msgListFailed   = "Failed to load questions"
	msgGetFailed    = "Failed to load question"
	msgTopicsFailed = "Failed to load topics"
	msgDeleteFailed = "Failed to delete question"
	msgProfileLoad  = "Failed to load user profile"
	msgProfileSave  = "Failed to save profile"
	msgStatsFailed  = "Failed to get stats"
)

func storageFailure(log *logger.Logger, msg, op string, err error) *mcp.CallToolResult {
	log.Error("tool failed", "op", op, "error", err)
	return mcp.NewToolResultError(msg)
}

func handleAddQuestion(s *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		form := forms.Question{
			Topic:    stringArg(req, "topic"),
			Question: stringArg(req, "question"),
			Answer:   stringArg(req, "answer"),
		}
		if err := forms.ValidateQuestion(&form); err != nil {
			return mcp.NewToolResultError(forms.Message(err, err.Error())), nil
		}

		id, err := s.AddQuestion(store.AddQuestionParams{
			TopicName: form.Topic,
			Question:  form.Question,
			Answer:    form.Answer,
		})
		if err != nil {
			return storageFailure(log, msgSaveFailed, "add_question", err), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("Question #%d saved under %q: %s", id, form.Topic, truncate(form.Question, 80))), nil
	}
}

func handleBulkImport(s *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		form := forms.BulkImport{
			Topic: stringArg(req, "topic"),
			Text:  stringArg(req, "text"),
		}
		if err := forms.ValidateBulkImport(&form); err != nil {
			return mcp.NewToolResultError(forms.Message(err, err.Error())), nil
		}

		items := bulk.Parse(form.Text)
		if len(items) == 0 {
			return mcp.NewToolResultError("Could not detect any questions in the provided text. Check the Q1:/A1: markers."), nil
		}

		res, err := bulk.Import(s, form.Topic, items, log)
		if errors.Is(err, bulk.ErrNoValidItems) {
			return mcp.NewToolResultError(fmt.Sprintf("No valid questions to import (%d detected, all missing answers)", len(items))), nil
		}
		if err != nil {
			return storageFailure(log, msgImportFailed, "bulk_import", err), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Imported into %q: success=%d failed=%d skipped=%d",
			form.Topic, res.Success, res.Failed, res.Skipped,
		)), nil
	}
}

func handleParsePreview() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text := stringArg(req, "text")
		if strings.TrimSpace(text) == "" {
			return mcp.NewToolResultError("text is required"), nil
		}

		items := bulk.Parse(text)
		if len(items) == 0 {
			return mcp.NewToolResultText("No questions detected."), nil
		}

		valid, invalid := bulk.Summary(items)
		var b strings.Builder
		fmt.Fprintf(&b, "Detected %d questions: %d valid, %d invalid\n\n", len(items), valid, invalid)
		for i, it := range items {
			mark := "✓"
			if !it.Valid {
				mark = "✗"
			}
			fmt.Fprintf(&b, "%d. [%s] Q: %s\n", i+1, mark, truncate(it.Question, 120))
			if it.Valid {
				fmt.Fprintf(&b, "   A: %s\n", truncate(it.Answer, 200))
			} else {
				fmt.Fprintf(&b, "   (%s)\n", it.Error)
			}
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleListQuestions(s *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := intArg(req, "limit", 20)
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}
		opts := store.ListOptions{
			Topic:  strings.TrimSpace(stringArg(req, "topic")),
			Query:  strings.TrimSpace(stringArg(req, "query")),
			Oldest: boolArg(req, "oldest", false),
			Limit:  limit,
		}
		full := boolArg(req, "answers", false)

		questions, err := s.ListQuestions(opts)
		if err != nil {
			return storageFailure(log, msgListFailed, "list_questions", err), nil
		}
		if len(questions) == 0 {
			return mcp.NewToolResultText("No questions found."), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Found %d questions:\n\n", len(questions))
		for _, q := range questions {
			fmt.Fprintf(&b, "#%d [%s] %s (%s)\n", q.ID, q.TopicName, q.Question, store.FormatDate(q.CreatedAt))
			answer := q.Answer
			if !full {
				answer = truncate(answer, 120)
			}
			fmt.Fprintf(&b, "    %s\n", answer)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleGetQuestion(s *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(intArg(req, "id", 0))
		if id <= 0 {
			return mcp.NewToolResultError("id is required"), nil
		}

		q, err := s.GetQuestion(id)
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Question #%d not found", id)), nil
		}
		if err != nil {
			return storageFailure(log, msgGetFailed, "get_question", err), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"#%d [%s]\nAdded: %s\n\nQ: %s\n\nA: %s",
			q.ID, q.TopicName, store.FormatDate(q.CreatedAt), q.Question, q.Answer,
		)), nil
	}
}

func handleTopics(s *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := s.TopicStats()
		if err != nil {
			return storageFailure(log, msgTopicsFailed, "topic_stats", err), nil
		}
		choices, err := s.TopicChoices()
		if err != nil {
			return storageFailure(log, msgTopicsFailed, "topic_choices", err), nil
		}

		counts := make(map[string]int, len(stats))
		for _, ts := range stats {
			counts[ts.Name] = ts.Total
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Topics (%d):\n", len(choices))
		for _, name := range choices {
			fmt.Fprintf(&b, "  %s (%d)\n", name, counts[name])
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleDeleteQuestion(s *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(intArg(req, "id", 0))
		if id <= 0 {
			return mcp.NewToolResultError("id is required"), nil
		}

		err := s.DeleteQuestion(id)
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Question #%d not found", id)), nil
		}
		if err != nil {
			return storageFailure(log, msgDeleteFailed, "delete_question", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Question #%d deleted", id)), nil
	}
}

func handleGetProfile(s *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		u, err := s.GetUser()
		if errors.Is(err, store.ErrNotFound) {
			return mcp.NewToolResultText("No profile saved yet."), nil
		}
		if err != nil {
			return storageFailure(log, msgProfileLoad, "get_profile", err), nil
		}
		return mcp.NewToolResultText(formatProfile(u)), nil
	}
}

func handleSaveProfile(s *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		form := forms.Profile{
			Name:      stringArg(req, "name"),
			Age:       intArg(req, "age", 0),
			ClassName: stringArg(req, "className"),
			Email:     stringArg(req, "email"),
		}
		if err := forms.ValidateProfile(&form); err != nil {
			return mcp.NewToolResultError(forms.Message(err, err.Error())), nil
		}

		u, err := s.SaveUser(store.SaveUserParams{
			Name:      form.Name,
			Age:       form.Age,
			ClassName: form.ClassName,
			Email:     form.Email,
		})
		if err != nil {
			return storageFailure(log, msgProfileSave, "save_profile", err), nil
		}
		return mcp.NewToolResultText("Profile saved\n" + formatProfile(u)), nil
	}
}

func handleStats(s *store.Store, log *logger.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := s.Stats()
		if err != nil {
			return storageFailure(log, msgStatsFailed, "stats", err), nil
		}

		topics := "none yet"
		if len(stats.Topics) > 0 {
			topics = strings.Join(stats.Topics, ", ")
		}
		profile := "no"
		if stats.HasProfile {
			profile = "yes"
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"BrainLocker stats:\n- Questions: %d\n- Topics in use: %d\n- Catalog topics: %d\n- Profile: %s\n- Topics: %s",
			stats.TotalQuestions, stats.TotalTopics, stats.CatalogTopics, profile, topics,
		)), nil
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func formatProfile(u *store.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", u.Name)
	if u.Age > 0 {
		fmt.Fprintf(&b, "Age: %d\n", u.Age)
	}
	if u.ClassName != "" {
		fmt.Fprintf(&b, "Class: %s\n", u.ClassName)
	}
	if u.Email != nil {
		fmt.Fprintf(&b, "Email: %s\n", *u.Email)
	}
	fmt.Fprintf(&b, "Updated: %s", store.FormatDate(u.UpdatedAt))
	return b.String()
}

func stringArg(req mcp.CallToolRequest, key string) string {
	v, _ := req.GetArguments()[key].(string)
	return v
}

func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// truncate cuts on rune boundaries.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
