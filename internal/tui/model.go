// Package tui implements the Bubbletea terminal UI for BrainLocker.
//
// Layout follows the usual Bubbletea shape:
// - Screen constants as iota, grouped under four tabs
// - Single Model struct holds ALL state
// - Update() with type switch
// - Per-screen key handlers returning (tea.Model, tea.Cmd)
// - Vim keys (j/k) for navigation, esc to go back
// - Every store call runs as a tea.Cmd and reports back with a *Msg
package tui

import (
	"errors"
	"path/filepath"

	"github.com/Dipak-sahani/brainlocker/internal/bulk"
	"github.com/Dipak-sahani/brainlocker/internal/logger"
	"github.com/Dipak-sahani/brainlocker/internal/store"
	"github.com/Dipak-sahani/brainlocker/internal/theme"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ─── Screens ─────────────────────────────────────────────────────────────────

type Screen int

const (
	ScreenHome Screen = iota
	ScreenAddQuestion
	ScreenBulkImport
	ScreenBulkPreview
	ScreenImportResult
	ScreenTopics
	ScreenTopicQuestions
	ScreenProfile
	ScreenProfileEdit
)

type Tab int

const (
	TabHome Tab = iota
	TabAdd
	TabBrowse
	TabProfile
)

var tabNames = []string{"Home", "Add", "Browse", "Profile"}

// Tab reports which tab a screen belongs to.
func (s Screen) Tab() Tab {
	switch s {
	case ScreenAddQuestion, ScreenBulkImport, ScreenBulkPreview, ScreenImportResult:
		return TabAdd
	case ScreenTopics, ScreenTopicQuestions:
		return TabBrowse
	case ScreenProfile, ScreenProfileEdit:
		return TabProfile
	default:
		return TabHome
	}
}

// ─── Alerts ──────────────────────────────────────────────────────────────────

// User-facing failure texts. Details go to the log.
const (
	msgSaveFailed      = "Failed to save question"
	msgLoadFailed      = "Failed to load questions"
	msgDeleteFailed    = "Failed to delete question"
	msgImportFailed    = "Failed to import questions"
	msgNoValid         = "No valid questions to import"
	msgNoneDetected    = "Could not detect any questions in the provided text. Please check the format."
	msgProfileLoad     = "Failed to load user profile"
	msgProfileSave     = "Failed to save profile"
	msgProfileDelete   = "Failed to delete profile"
	msgExportFailed    = "Failed to export questions"
	msgInvalidAge      = "Please enter a valid age"
	msgQuestionSaved   = "Question saved successfully!"
	msgProfileSaved    = "Profile updated successfully!"
	msgProfileDeleted  = "Profile deleted successfully"
	msgQuestionDeleted = "Question deleted successfully"
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDeleteQuestion
	confirmDeleteProfile
)

// ─── Custom Messages ─────────────────────────────────────────────────────────

type homeLoadedMsg struct {
	stats   *store.Stats
	profile *store.User
	recent  []store.Question
	err     error
}

type topicChoicesMsg struct {
	choices []string
	err     error
}

type questionSavedMsg struct {
	id  int64
	err error
}

type importDoneMsg struct {
	result bulk.Result
	err    error
}

type topicStatsMsg struct {
	stats []store.TopicStat
	err   error
}

type topicQuestionsMsg struct {
	topic     string
	questions []store.Question
	err       error
}

type questionDeletedMsg struct {
	id  int64
	err error
}

type profileLoadedMsg struct {
	profile *store.User
	err     error
}

type profileSavedMsg struct {
	profile *store.User
	err     error
}

type profileDeletedMsg struct {
	err error
}

type sheetExportedMsg struct {
	path string
	err  error
}

type hostThemeMsg struct {
	dark bool
}

// ─── Model ───────────────────────────────────────────────────────────────────

// Profile edit fields, in tab order.
const (
	profileName = iota
	profileAge
	profileClass
	profileEmail
	profileFieldCount
)

// Add question fields, in tab order.
const (
	addTopic = iota
	addQuestion
	addAnswer
	addFieldCount
)

type Model struct {
	store      *store.Store
	log        *logger.Logger
	theme      *theme.State
	styles     styles
	detectDark func() bool
	Version    string

	Screen     Screen
	PrevScreen Screen
	Width      int
	Height     int
	Cursor     int
	Scroll     int

	// Alerts
	ErrorMsg string
	InfoMsg  string

	// Pending yes/no confirmation
	Confirm   confirmKind
	ConfirmID int64

	// Home
	Stats   *store.Stats
	Profile *store.User
	Recent  []store.Question

	// Topic picker shared by the add and bulk forms
	TopicChoices []string
	TopicIdx     int

	// Add question
	AddTopic    textinput.Model
	AddQuestion textarea.Model
	AddAnswer   textarea.Model
	AddFocus    int

	// Bulk import
	BulkTopic     textinput.Model
	BulkText      textarea.Model
	BulkFocus     int // 0 topic, 1 text
	Parsed        []bulk.Item
	ParsedTopic   string
	Importing     bool
	ImportResult  *bulk.Result
	ImportSpinner spinner.Model

	// Browse
	TopicStats     []store.TopicStat
	TopicSearch    textinput.Model
	SelectedTopic  string
	Questions      []store.Question
	QuestionSearch textinput.Model
	Oldest         bool
	Expanded       map[int64]bool

	// Profile edit
	ProfileInputs [profileFieldCount]textinput.Model
	ProfileFocus  int
}

// New creates a TUI model connected to the given store. log may be nil.
func New(s *store.Store, th *theme.State, log *logger.Logger, version string) Model {
	if log == nil {
		log = logger.Nop()
	}
	if th == nil {
		th = theme.New(theme.Default, false)
	}

	m := Model{
		store:      s,
		log:        log.With("component", "tui"),
		theme:      th,
		styles:     newStyles(th.Palette()),
		detectDark: theme.DetectHostDark,
		Version:    version,
		Screen:     ScreenHome,
		Expanded:   make(map[int64]bool),
	}

	m.AddTopic = newInput("Topic (ctrl+t to pick)", 64, 40)
	m.AddQuestion = newTextarea("Enter your question...", 1000, 3)
	m.AddAnswer = newTextarea("Enter the answer...", 4000, 5)

	m.BulkTopic = newInput("Topic (ctrl+t to pick)", 64, 40)
	m.BulkText = newTextarea("Paste your questions and answers here...\n\nQ1: What is JavaScript?\nA1: JavaScript is a programming language...", 0, 12)

	m.TopicSearch = newInput("Search topics...", 128, 40)
	m.QuestionSearch = newInput("Search questions and answers...", 256, 60)

	m.ProfileInputs[profileName] = newInput("Your name", 64, 40)
	m.ProfileInputs[profileAge] = newInput("Age", 3, 10)
	m.ProfileInputs[profileClass] = newInput("Class / course", 64, 40)
	m.ProfileInputs[profileEmail] = newInput("you@example.com", 128, 40)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(th.Palette().Primary)
	m.ImportSpinner = sp

	return m
}

func newInput(placeholder string, limit, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = width
	return ti
}

func newTextarea(placeholder string, limit, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.CharLimit = limit
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(70)
	ta.SetHeight(height)
	return ta
}

// Init makes sure the schema exists and loads the home screen.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		initStore(m.store),
		tea.EnterAltScreen,
	)
}

// ─── Commands (data loading) ─────────────────────────────────────────────────

func initStore(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		if err := s.Init(); err != nil {
			return homeLoadedMsg{err: err}
		}
		return loadHome(s)()
	}
}

func loadHome(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		stats, err := s.Stats()
		if err != nil {
			return homeLoadedMsg{err: err}
		}
		profile, err := s.GetUser()
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return homeLoadedMsg{err: err}
		}
		recent, err := s.ListQuestions(store.ListOptions{Limit: 5})
		return homeLoadedMsg{stats: stats, profile: profile, recent: recent, err: err}
	}
}

func loadTopicChoices(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		choices, err := s.TopicChoices()
		return topicChoicesMsg{choices: choices, err: err}
	}
}

func saveQuestion(s *store.Store, p store.AddQuestionParams) tea.Cmd {
	return func() tea.Msg {
		id, err := s.AddQuestion(p)
		return questionSavedMsg{id: id, err: err}
	}
}

func importQuestions(s *store.Store, topic string, items []bulk.Item, log *logger.Logger) tea.Cmd {
	return func() tea.Msg {
		res, err := bulk.Import(s, topic, items, log)
		return importDoneMsg{result: res, err: err}
	}
}

func loadTopicStats(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		stats, err := s.TopicStats()
		return topicStatsMsg{stats: stats, err: err}
	}
}

func loadTopicQuestions(s *store.Store, topic, query string, oldest bool) tea.Cmd {
	return func() tea.Msg {
		qs, err := s.ListQuestions(store.ListOptions{Topic: topic, Query: query, Oldest: oldest})
		return topicQuestionsMsg{topic: topic, questions: qs, err: err}
	}
}

func deleteQuestion(s *store.Store, id int64) tea.Cmd {
	return func() tea.Msg {
		return questionDeletedMsg{id: id, err: s.DeleteQuestion(id)}
	}
}

func loadProfile(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		u, err := s.GetUser()
		if errors.Is(err, store.ErrNotFound) {
			return profileLoadedMsg{}
		}
		return profileLoadedMsg{profile: u, err: err}
	}
}

func saveProfile(s *store.Store, p store.SaveUserParams) tea.Cmd {
	return func() tea.Msg {
		u, err := s.SaveUser(p)
		return profileSavedMsg{profile: u, err: err}
	}
}

func deleteProfile(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		return profileDeletedMsg{err: s.DeleteUser()}
	}
}

// detectHostTheme re-reads the terminal background, for auto mode.
func detectHostTheme(detect func() bool) tea.Cmd {
	return func() tea.Msg {
		return hostThemeMsg{dark: detect()}
	}
}

func exportSheet(s *store.Store, topic string) tea.Cmd {
	return func() tea.Msg {
		path, err := s.WriteStudySheet(topic, filepath.Join(s.DataDir(), "exports"))
		return sheetExportedMsg{path: path, err: err}
	}
}
