// BrainLocker: study notes as questions and answers.
//
// Usage:
//
//	brainlocker tui                 Launch the terminal UI
//	brainlocker serve               Start the local HTTP API
//	brainlocker mcp                 Start the MCP server (stdio)
//	brainlocker import <topic> <f>  Bulk import Q1:/A1: notes
//	brainlocker list                List saved questions
//	brainlocker export              Back up or print a study sheet
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Dipak-sahani/brainlocker/internal/bulk"
	"github.com/Dipak-sahani/brainlocker/internal/forms"
	"github.com/Dipak-sahani/brainlocker/internal/logger"
	"github.com/Dipak-sahani/brainlocker/internal/mcp"
	"github.com/Dipak-sahani/brainlocker/internal/server"
	"github.com/Dipak-sahani/brainlocker/internal/store"
	"github.com/Dipak-sahani/brainlocker/internal/theme"
	"github.com/Dipak-sahani/brainlocker/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

const (
	version     = "0.1.0"
	defaultPort = 7438
)

// env is everything read from the environment (and .env) at startup.
type env struct {
	Store   store.Config
	Port    int
	Theme   string
	LogMode string
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	e := loadEnv()

	switch os.Args[1] {
	case "tui":
		cmdTUI(e)
	case "serve":
		cmdServe(e)
	case "mcp":
		cmdMCP(e)
	case "add":
		cmdAdd(e)
	case "import":
		cmdImport(e)
	case "list":
		cmdList(e)
	case "topics":
		cmdTopics(e)
	case "delete":
		cmdDelete(e)
	case "profile":
		cmdProfile(e)
	case "stats":
		cmdStats(e)
	case "export":
		cmdExport(e)
	case "restore":
		cmdRestore(e)
	case "version", "--version", "-v":
		fmt.Printf("brainlocker %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// loadEnv reads .env from the working directory when present, then the
// BRAINLOCKER_* variables.
func loadEnv() env {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "brainlocker: .env: %s\n", err)
	}
	return envFrom(os.Getenv)
}

func envFrom(getenv func(string) string) env {
	e := env{
		Store:   store.DefaultConfig(),
		Port:    defaultPort,
		Theme:   getenv("BRAINLOCKER_THEME"),
		LogMode: getenv("BRAINLOCKER_LOG"),
	}
	if dir := getenv("BRAINLOCKER_DATA_DIR"); dir != "" {
		e.Store.DataDir = dir
	}
	if p := getenv("BRAINLOCKER_PORT"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			e.Port = n
		}
	}
	if e.LogMode == "" {
		e.LogMode = "prod"
	}
	return e
}

func openStore(e env) *store.Store {
	s, err := store.New(e.Store)
	if err != nil {
		fatal(err)
	}
	return s
}

func newLogger(e env, outputPaths ...string) *logger.Logger {
	log, err := logger.New(e.LogMode, outputPaths...)
	if err != nil {
		fatal(fmt.Errorf("logger: %w", err))
	}
	return log
}

// ─── Commands ────────────────────────────────────────────────────────────────

func cmdTUI(e env) {
	s := openStore(e)
	defer s.Close()

	// The screen owns stdout and stderr, so logs go to a file.
	log := newLogger(e, filepath.Join(s.DataDir(), "brainlocker.log"))
	defer log.Sync()

	mode, err := theme.ParseMode(e.Theme)
	if err != nil {
		log.Warn("ignoring theme setting", "error", err)
	}
	th := theme.New(mode, theme.DetectHostDark())

	model := tui.New(s, th, log, version)
	p := tea.NewProgram(model, tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		fatal(err)
	}
}

func cmdServe(e env) {
	port := e.Port
	// Allow: brainlocker serve 8080
	if len(os.Args) > 2 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil {
			port = n
		}
	}

	s := openStore(e)
	defer s.Close()
	log := newLogger(e)
	defer log.Sync()

	if err := s.Init(); err != nil {
		fatal(err)
	}

	srv := server.New(s, port, log).WithVersion(version)
	if err := srv.Start(); err != nil {
		fatal(err)
	}
}

func cmdMCP(e env) {
	tools := ""
	for i := 2; i < len(os.Args); i++ {
		arg := os.Args[i]
		switch {
		case strings.HasPrefix(arg, "--tools="):
			tools = strings.TrimPrefix(arg, "--tools=")
		case arg == "--tools" && i+1 < len(os.Args):
			tools = os.Args[i+1]
			i++
		}
	}

	s := openStore(e)
	defer s.Close()
	// stdout carries the protocol; logs stay on stderr.
	log := newLogger(e, "stderr")
	defer log.Sync()

	mcpSrv := mcp.NewServerWithTools(s, mcp.ResolveTools(tools), log)
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		fatal(err)
	}
}

func cmdAdd(e env) {
	if len(os.Args) < 5 {
		fmt.Fprintln(os.Stderr, "usage: brainlocker add <topic> <question> <answer>")
		os.Exit(1)
	}

	form := forms.Question{Topic: os.Args[2], Question: os.Args[3], Answer: os.Args[4]}
	if err := forms.ValidateQuestion(&form); err != nil {
		fatal(err)
	}

	s := openStore(e)
	defer s.Close()

	id, err := s.AddQuestion(store.AddQuestionParams{
		TopicName: form.Topic,
		Question:  form.Question,
		Answer:    form.Answer,
	})
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Question #%d saved under %q\n", id, form.Topic)
}

func cmdImport(e env) {
	var args []string
	dryRun := false
	for _, arg := range os.Args[2:] {
		if arg == "--dry-run" {
			dryRun = true
			continue
		}
		args = append(args, arg)
	}
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: brainlocker import <topic> <file|-> [--dry-run]")
		os.Exit(1)
	}

	text, err := readInput(args[1])
	if err != nil {
		fatal(err)
	}

	form := forms.BulkImport{Topic: args[0], Text: text}
	if err := forms.ValidateBulkImport(&form); err != nil {
		fatal(err)
	}

	items := bulk.Parse(form.Text)
	if len(items) == 0 {
		fatal(errors.New("could not detect any questions in the provided text"))
	}

	valid, invalid := bulk.Summary(items)
	fmt.Printf("Detected %d questions: %d valid, %d invalid\n", len(items), valid, invalid)
	for i, it := range items {
		if !it.Valid {
			fmt.Printf("  %d. %s (%s)\n", i+1, truncate(it.Question, 60), it.Error)
		}
	}
	if dryRun {
		return
	}

	s := openStore(e)
	defer s.Close()
	log := newLogger(e)
	defer log.Sync()

	res, err := bulk.Import(s, form.Topic, items, log)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Imported into %q\n", form.Topic)
	fmt.Printf("  Success: %d\n", res.Success)
	fmt.Printf("  Failed:  %d\n", res.Failed)
	fmt.Printf("  Skipped: %d\n", res.Skipped)
}

func cmdList(e env) {
	opts, err := parseListArgs(os.Args[2:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		fmt.Fprintln(os.Stderr, "usage: brainlocker list [--topic T] [--search Q] [--oldest] [--limit N]")
		os.Exit(1)
	}

	s := openStore(e)
	defer s.Close()

	questions, err := s.ListQuestions(opts)
	if err != nil {
		fatal(err)
	}
	if len(questions) == 0 {
		fmt.Println("No questions found.")
		return
	}

	fmt.Printf("Found %d questions:\n\n", len(questions))
	for _, q := range questions {
		fmt.Printf("#%d [%s] %s\n    %s\n    %s\n\n",
			q.ID, q.TopicName, q.Question,
			truncate(q.Answer, 300),
			store.FormatDate(q.CreatedAt))
	}
}

// parseListArgs reads the flags of the list command.
func parseListArgs(args []string) (store.ListOptions, error) {
	var opts store.ListOptions
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--topic", "--search", "--limit":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s needs a value", args[i])
			}
			val := args[i+1]
			switch args[i] {
			case "--topic":
				opts.Topic = val
			case "--search":
				opts.Query = val
			case "--limit":
				n, err := strconv.Atoi(val)
				if err != nil || n < 0 {
					return opts, fmt.Errorf("invalid --limit %q", val)
				}
				opts.Limit = n
			}
			i++
		case "--oldest":
			opts.Oldest = true
		default:
			return opts, fmt.Errorf("unknown flag %q", args[i])
		}
	}
	return opts, nil
}

func cmdTopics(e env) {
	s := openStore(e)
	defer s.Close()

	// brainlocker topics add <name>
	if len(os.Args) > 2 && os.Args[2] == "add" {
		if len(os.Args) < 4 || strings.TrimSpace(os.Args[3]) == "" {
			fmt.Fprintln(os.Stderr, "usage: brainlocker topics add <name>")
			os.Exit(1)
		}
		if _, err := s.AddTopic(os.Args[3]); err != nil {
			fatal(err)
		}
		fmt.Printf("Topic %q added\n", strings.TrimSpace(os.Args[3]))
		return
	}

	stats, err := s.TopicStats()
	if err != nil {
		fatal(err)
	}
	if len(stats) == 0 {
		fmt.Println("No topics yet. Add a question to create one.")
		return
	}
	for _, ts := range stats {
		fmt.Printf("  %-24s %d\n", ts.Name, ts.Total)
	}
}

func cmdDelete(e env) {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: brainlocker delete <id>")
		os.Exit(1)
	}
	id, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		fatal(fmt.Errorf("invalid id %q", os.Args[2]))
	}

	s := openStore(e)
	defer s.Close()

	if err := s.DeleteQuestion(id); err != nil {
		fatal(err)
	}
	fmt.Printf("Question #%d deleted\n", id)
}

func cmdProfile(e env) {
	sub := "show"
	if len(os.Args) > 2 {
		sub = os.Args[2]
	}

	s := openStore(e)
	defer s.Close()

	switch sub {
	case "show":
		u, err := s.GetUser()
		if errors.Is(err, store.ErrNotFound) {
			fmt.Println("No profile yet. Run: brainlocker profile set --name N --email E")
			return
		}
		if err != nil {
			fatal(err)
		}
		printProfile(u)
	case "set":
		form, err := parseProfileArgs(os.Args[3:])
		if err != nil {
			fatal(err)
		}
		if err := forms.ValidateProfile(&form); err != nil {
			fatal(err)
		}
		u, err := s.SaveUser(store.SaveUserParams{
			Name:      form.Name,
			Age:       form.Age,
			ClassName: form.ClassName,
			Email:     form.Email,
		})
		if err != nil {
			fatal(err)
		}
		fmt.Println("Profile updated successfully!")
		printProfile(u)
	case "delete":
		if err := s.DeleteUser(); err != nil {
			fatal(err)
		}
		fmt.Println("Profile deleted successfully")
	default:
		fmt.Fprintln(os.Stderr, "usage: brainlocker profile [show|set|delete]")
		os.Exit(1)
	}
}

// parseProfileArgs reads --name, --age, --class and --email.
func parseProfileArgs(args []string) (forms.Profile, error) {
	var p forms.Profile
	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			return p, fmt.Errorf("%s needs a value", args[i])
		}
		val := args[i+1]
		switch args[i] {
		case "--name":
			p.Name = val
		case "--class":
			p.ClassName = val
		case "--email":
			p.Email = val
		case "--age":
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return p, &forms.Error{Field: "age", Message: "Please enter a valid age"}
			}
			p.Age = n
		default:
			return p, fmt.Errorf("unknown flag %q", args[i])
		}
		i++
	}
	return p, nil
}

func printProfile(u *store.User) {
	fmt.Printf("  Name:    %s\n", u.Name)
	if u.Age > 0 {
		fmt.Printf("  Age:     %d\n", u.Age)
	}
	if u.ClassName != "" {
		fmt.Printf("  Class:   %s\n", u.ClassName)
	}
	if u.Email != nil {
		fmt.Printf("  Email:   %s\n", *u.Email)
	}
	fmt.Printf("  Updated: %s\n", store.FormatDate(u.UpdatedAt))
}

func cmdStats(e env) {
	s := openStore(e)
	defer s.Close()

	stats, err := s.Stats()
	if err != nil {
		fatal(err)
	}

	topics := "none yet"
	if len(stats.Topics) > 0 {
		topics = strings.Join(stats.Topics, ", ")
	}

	fmt.Printf("BrainLocker Stats\n")
	fmt.Printf("  Questions:      %d\n", stats.TotalQuestions)
	fmt.Printf("  Topics in use:  %d\n", stats.TotalTopics)
	fmt.Printf("  Catalog topics: %d\n", stats.CatalogTopics)
	fmt.Printf("  Profile:        %t\n", stats.HasProfile)
	fmt.Printf("  Topics:         %s\n", topics)
	fmt.Printf("  Database:       %s\n", s.Path())
}

func cmdExport(e env) {
	outFile := ""
	format := ""
	topic := ""
	for i := 2; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--format":
			if i+1 < len(os.Args) {
				format = os.Args[i+1]
				i++
			}
		case "--topic":
			if i+1 < len(os.Args) {
				topic = os.Args[i+1]
				i++
			}
		default:
			outFile = os.Args[i]
		}
	}
	if format == "" {
		format = formatFromExt(outFile)
	}

	s := openStore(e)
	defer s.Close()

	var out []byte
	summary := ""
	switch format {
	case "text":
		questions, err := s.ListQuestions(store.ListOptions{Topic: topic})
		if err != nil {
			fatal(err)
		}
		out = []byte(store.FormatStudySheet(questions, topic, time.Now()))
	case "json", "yaml":
		data, err := s.Export()
		if err != nil {
			fatal(err)
		}
		out, err = encodeExport(data, format)
		if err != nil {
			fatal(err)
		}
		summary = fmt.Sprintf("  Topics: %d  Questions: %d  Profile: %t\n",
			len(data.Topics), len(data.Questions), data.User != nil)
	default:
		fatal(fmt.Errorf("unknown format %q (want json, yaml or text)", format))
	}

	if outFile == "" || outFile == "-" {
		_, _ = os.Stdout.Write(out)
		return
	}
	if err := os.WriteFile(outFile, out, 0644); err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "Exported to %s\n%s", outFile, summary)
}

func cmdRestore(e env) {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: brainlocker restore <file.json|file.yaml>")
		os.Exit(1)
	}

	inFile := os.Args[2]
	raw, err := os.ReadFile(inFile)
	if err != nil {
		fatal(fmt.Errorf("read %s: %w", inFile, err))
	}

	data, err := decodeExport(raw, formatFromExt(inFile))
	if err != nil {
		fatal(fmt.Errorf("parse %s: %w", inFile, err))
	}

	s := openStore(e)
	defer s.Close()

	result, err := s.Import(data)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Restored from %s\n", inFile)
	fmt.Printf("  Profile:   %t\n", result.ProfileImported)
	fmt.Printf("  Topics:    %d\n", result.TopicsImported)
	fmt.Printf("  Questions: %d\n", result.QuestionsImported)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// formatFromExt picks yaml for .yaml/.yml, text for .txt, json otherwise.
func formatFromExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".txt":
		return "text"
	default:
		return "json"
	}
}

func encodeExport(data *store.ExportData, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(data)
	}
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func decodeExport(raw []byte, format string) (*store.ExportData, error) {
	var data store.ExportData
	var err error
	if format == "yaml" {
		err = yaml.Unmarshal(raw, &data)
	} else {
		err = json.Unmarshal(raw, &data)
	}
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// readInput reads a file, or stdin for "-".
func readInput(name string) (string, error) {
	if name == "-" {
		raw, err := io.ReadAll(os.Stdin)
		return string(raw), err
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(raw), nil
}

func printUsage() {
	fmt.Printf(`brainlocker v%s - study notes as questions and answers

Usage:
  brainlocker <command> [arguments]

Commands:
  tui                        Launch the terminal UI
  serve [port]               Start the local HTTP API (default: %d)
  mcp [--tools=PROFILES]     Start the MCP server on stdio (profiles: study, admin, all)
  add <topic> <q> <a>        Save one question
  import <topic> <file|->    Bulk import Q1:/A1: notes [--dry-run]
  list                       List questions [--topic T] [--search Q] [--oldest] [--limit N]
  topics [add <name>]        List topics with counts, or add a catalog topic
  delete <id>                Delete a question
  profile [show|set|delete]  Manage the profile (set: --name --age --class --email)
  stats                      Show counts
  export [file]              Back up everything [--format json|yaml|text] [--topic T]
  restore <file>             Restore a json or yaml backup
  version                    Print version
  help                       Show this help

Environment (also read from ./.env):
  BRAINLOCKER_DATA_DIR   Data directory (default: ~/.brainlocker)
  BRAINLOCKER_PORT       HTTP port (default: %d)
  BRAINLOCKER_THEME      light, dark or auto (default: auto)
  BRAINLOCKER_LOG        prod or dev (default: prod)
`, version, defaultPort, defaultPort)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "brainlocker: %s\n", err)
	os.Exit(1)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
