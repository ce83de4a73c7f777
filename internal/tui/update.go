package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Dipak-sahani/brainlocker/internal/bulk"
	"github.com/Dipak-sahani/brainlocker/internal/forms"
	"github.com/Dipak-sahani/brainlocker/internal/store"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ─── Update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit — always works
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.Confirm != confirmNone {
			return m.handleConfirmKeys(msg.String())
		}
		if m.Importing {
			return m, nil
		}
		if m.inputFocused() {
			return m.handleInputKeys(msg)
		}
		return m.handleKeyPress(msg.String())

	// ─── Data loaded messages ────────────────────────────────────────────
	case homeLoadedMsg:
		if msg.err != nil {
			return m.fail(msgLoadFailed, "load home", msg.err), nil
		}
		m.Stats = msg.stats
		m.Profile = msg.profile
		m.Recent = msg.recent
		return m, nil

	case topicChoicesMsg:
		if msg.err != nil {
			return m.fail(msgLoadFailed, "load topic choices", msg.err), nil
		}
		m.TopicChoices = msg.choices
		if m.TopicIdx >= len(m.TopicChoices) {
			m.TopicIdx = 0
		}
		return m, nil

	case questionSavedMsg:
		if msg.err != nil {
			return m.fail(msgSaveFailed, "save question", msg.err), nil
		}
		m.log.Info("question saved", "id", msg.id, "topic", m.AddTopic.Value())
		m.InfoMsg = msgQuestionSaved
		m.AddTopic.SetValue("")
		m.AddQuestion.Reset()
		m.AddAnswer.Reset()
		m = m.focusAddField(addTopic)
		return m, loadTopicChoices(m.store)

	case importDoneMsg:
		m.Importing = false
		if msg.err != nil {
			if errors.Is(msg.err, bulk.ErrNoValidItems) {
				m.ErrorMsg = msgNoValid
				return m, nil
			}
			return m.fail(msgImportFailed, "bulk import", msg.err), nil
		}
		res := msg.result
		m.ImportResult = &res
		m.Screen = ScreenImportResult
		if res.Success > 0 {
			m.BulkTopic.SetValue("")
			m.BulkText.Reset()
			m.Parsed = nil
			m.ParsedTopic = ""
		}
		return m, nil

	case topicStatsMsg:
		if msg.err != nil {
			return m.fail(msgLoadFailed, "load topics", msg.err), nil
		}
		m.TopicStats = msg.stats
		if n := len(m.visibleTopics()); m.Screen == ScreenTopics && m.Cursor >= n {
			m.Cursor = max(n-1, 0)
		}
		return m, nil

	case topicQuestionsMsg:
		if msg.err != nil {
			return m.fail(msgLoadFailed, "load questions", msg.err), nil
		}
		m.SelectedTopic = msg.topic
		m.Questions = msg.questions
		m.Screen = ScreenTopicQuestions
		if m.Cursor >= len(m.Questions) {
			m.Cursor = max(len(m.Questions)-1, 0)
		}
		return m, nil

	case questionDeletedMsg:
		if msg.err != nil {
			return m.fail(msgDeleteFailed, "delete question", msg.err), nil
		}
		m.log.Info("question deleted", "id", msg.id)
		delete(m.Expanded, msg.id)
		m.InfoMsg = msgQuestionDeleted
		return m, tea.Batch(
			loadTopicQuestions(m.store, m.SelectedTopic, m.QuestionSearch.Value(), m.Oldest),
			loadTopicStats(m.store),
		)

	case profileLoadedMsg:
		if msg.err != nil {
			return m.fail(msgProfileLoad, "load profile", msg.err), nil
		}
		m.Profile = msg.profile
		return m, nil

	case profileSavedMsg:
		if msg.err != nil {
			return m.fail(msgProfileSave, "save profile", msg.err), nil
		}
		m.log.Info("profile saved", "name", msg.profile.Name)
		m.Profile = msg.profile
		m.Screen = ScreenProfile
		m.blurProfileInputs()
		m.InfoMsg = msgProfileSaved
		return m, nil

	case profileDeletedMsg:
		if msg.err != nil {
			return m.fail(msgProfileDelete, "delete profile", msg.err), nil
		}
		m.log.Info("profile deleted")
		m.Profile = nil
		m.InfoMsg = msgProfileDeleted
		return m, nil

	case sheetExportedMsg:
		if msg.err != nil {
			return m.fail(msgExportFailed, "export study sheet", msg.err), nil
		}
		m.log.Info("study sheet exported", "path", msg.path)
		m.InfoMsg = "Exported " + msg.path
		return m, nil

	case tea.FocusMsg:
		// The host may have switched color scheme while we were in the background.
		return m, detectHostTheme(m.detectDark)

	case hostThemeMsg:
		m.theme.SetHostDark(msg.dark)
		return m.restyle(), nil

	case spinner.TickMsg:
		// Only forward spinner ticks while an import is running
		if m.Importing {
			var cmd tea.Cmd
			m.ImportSpinner, cmd = m.ImportSpinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// fail logs err and shows alert. Store errors never reach the screen as-is.
func (m Model) fail(alert, op string, err error) Model {
	m.log.Error(op+" failed", "error", err)
	m.ErrorMsg = alert
	return m
}

// ─── Key Press Router ────────────────────────────────────────────────────────

func (m Model) handleKeyPress(key string) (tea.Model, tea.Cmd) {
	// Clear alerts on any keypress
	m.ErrorMsg = ""
	m.InfoMsg = ""

	switch key {
	case "1":
		return m.switchTab(TabHome)
	case "2":
		return m.switchTab(TabAdd)
	case "3":
		return m.switchTab(TabBrowse)
	case "4":
		return m.switchTab(TabProfile)
	case "T":
		return m.toggleTheme(), nil
	}

	switch m.Screen {
	case ScreenHome:
		return m.handleHomeKeys(key)
	case ScreenAddQuestion:
		return m.handleAddKeys(key)
	case ScreenBulkImport:
		return m.handleBulkKeys(key)
	case ScreenBulkPreview:
		return m.handleBulkPreviewKeys(key)
	case ScreenImportResult:
		return m.handleImportResultKeys(key)
	case ScreenTopics:
		return m.handleTopicsKeys(key)
	case ScreenTopicQuestions:
		return m.handleTopicQuestionsKeys(key)
	case ScreenProfile:
		return m.handleProfileKeys(key)
	case ScreenProfileEdit:
		return m.handleProfileEditKeys(key)
	}
	return m, nil
}

// inputFocused reports whether keystrokes belong to a text field.
func (m Model) inputFocused() bool {
	switch m.Screen {
	case ScreenAddQuestion:
		return m.AddTopic.Focused() || m.AddQuestion.Focused() || m.AddAnswer.Focused()
	case ScreenBulkImport:
		return m.BulkTopic.Focused() || m.BulkText.Focused()
	case ScreenTopics:
		return m.TopicSearch.Focused()
	case ScreenTopicQuestions:
		return m.QuestionSearch.Focused()
	case ScreenProfileEdit:
		for _, in := range m.ProfileInputs {
			if in.Focused() {
				return true
			}
		}
	}
	return false
}

func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.ErrorMsg = ""
	m.InfoMsg = ""

	switch m.Screen {
	case ScreenAddQuestion:
		return m.handleAddInputKeys(msg)
	case ScreenBulkImport:
		return m.handleBulkInputKeys(msg)
	case ScreenTopics:
		return m.handleTopicSearchInputKeys(msg)
	case ScreenTopicQuestions:
		return m.handleQuestionSearchInputKeys(msg)
	case ScreenProfileEdit:
		return m.handleProfileInputKeys(msg)
	}
	return m, nil
}

func (m Model) switchTab(t Tab) (tea.Model, tea.Cmd) {
	m.Cursor = 0
	m.Scroll = 0
	m.Confirm = confirmNone

	switch t {
	case TabAdd:
		m.Screen = ScreenAddQuestion
		m = m.focusAddField(m.AddFocus)
		return m, loadTopicChoices(m.store)
	case TabBrowse:
		m.Screen = ScreenTopics
		m.SelectedTopic = ""
		return m, loadTopicStats(m.store)
	case TabProfile:
		m.Screen = ScreenProfile
		return m, loadProfile(m.store)
	default:
		m.Screen = ScreenHome
		return m, loadHome(m.store)
	}
}

func (m Model) toggleTheme() Model {
	mode := m.theme.Toggle()
	m.log.Info("theme changed", "mode", string(mode), "dark", m.theme.IsDark())
	return m.restyle()
}

// restyle rebuilds every style from the current palette.
func (m Model) restyle() Model {
	m.styles = newStyles(m.theme.Palette())
	m.ImportSpinner.Style = m.ImportSpinner.Style.Foreground(m.theme.Palette().Primary)
	return m
}

// ─── Confirmation ────────────────────────────────────────────────────────────

func (m Model) handleConfirmKeys(key string) (tea.Model, tea.Cmd) {
	kind, id := m.Confirm, m.ConfirmID
	m.Confirm = confirmNone
	m.ConfirmID = 0

	switch key {
	case "y", "Y", "enter":
		switch kind {
		case confirmDeleteQuestion:
			return m, deleteQuestion(m.store, id)
		case confirmDeleteProfile:
			return m, deleteProfile(m.store)
		}
	case "n", "N", "esc", "q":
		return m, nil
	default:
		// Anything else keeps the prompt open
		m.Confirm, m.ConfirmID = kind, id
	}
	return m, nil
}

// ─── Home ────────────────────────────────────────────────────────────────────

var homeMenuItems = []string{
	"Add a question",
	"Bulk import",
	"Browse topics",
	"Profile",
	"Quit",
}

func (m Model) handleHomeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(homeMenuItems)-1 {
			m.Cursor++
		}
	case "enter", " ":
		return m.handleHomeSelection()
	case "a":
		return m.switchTab(TabAdd)
	case "b":
		return m.openBulk()
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleHomeSelection() (tea.Model, tea.Cmd) {
	switch m.Cursor {
	case 0:
		return m.switchTab(TabAdd)
	case 1:
		return m.openBulk()
	case 2:
		return m.switchTab(TabBrowse)
	case 3:
		return m.switchTab(TabProfile)
	case 4:
		return m, tea.Quit
	}
	return m, nil
}

// ─── Topic picker ────────────────────────────────────────────────────────────

// nextTopic cycles through the picker choices and returns the new name.
func (m Model) nextTopic() (Model, string) {
	if len(m.TopicChoices) == 0 {
		return m, ""
	}
	name := m.TopicChoices[m.TopicIdx%len(m.TopicChoices)]
	m.TopicIdx = (m.TopicIdx + 1) % len(m.TopicChoices)
	return m, name
}

// ─── Add Question ────────────────────────────────────────────────────────────

func (m Model) focusAddField(field int) Model {
	m.AddFocus = field
	m.AddTopic.Blur()
	m.AddQuestion.Blur()
	m.AddAnswer.Blur()
	switch field {
	case addTopic:
		m.AddTopic.Focus()
	case addQuestion:
		m.AddQuestion.Focus()
	case addAnswer:
		m.AddAnswer.Focus()
	}
	return m
}

func (m Model) blurAddFields() Model {
	m.AddTopic.Blur()
	m.AddQuestion.Blur()
	m.AddAnswer.Blur()
	return m
}

func (m Model) handleAddInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.blurAddFields(), nil
	case "tab":
		return m.focusAddField((m.AddFocus + 1) % addFieldCount), nil
	case "shift+tab":
		return m.focusAddField((m.AddFocus + addFieldCount - 1) % addFieldCount), nil
	case "ctrl+t":
		var name string
		m, name = m.nextTopic()
		if name != "" {
			m.AddTopic.SetValue(name)
			m.AddTopic.CursorEnd()
		}
		return m, nil
	case "ctrl+s":
		return m.submitQuestion()
	case "ctrl+b":
		return m.openBulk()
	case "enter":
		if m.AddFocus == addTopic {
			return m.focusAddField(addQuestion), nil
		}
	}

	var cmd tea.Cmd
	switch m.AddFocus {
	case addTopic:
		m.AddTopic, cmd = m.AddTopic.Update(msg)
	case addQuestion:
		m.AddQuestion, cmd = m.AddQuestion.Update(msg)
	case addAnswer:
		m.AddAnswer, cmd = m.AddAnswer.Update(msg)
	}
	return m, cmd
}

func (m Model) handleAddKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "i", "enter":
		return m.focusAddField(m.AddFocus), nil
	case "tab":
		return m.focusAddField((m.AddFocus + 1) % addFieldCount), nil
	case "ctrl+s":
		return m.submitQuestion()
	case "b", "ctrl+b":
		return m.openBulk()
	case "esc", "q":
		return m.switchTab(TabHome)
	}
	return m, nil
}

func (m Model) submitQuestion() (tea.Model, tea.Cmd) {
	form := forms.Question{
		Topic:    m.AddTopic.Value(),
		Question: m.AddQuestion.Value(),
		Answer:   m.AddAnswer.Value(),
	}
	if err := forms.ValidateQuestion(&form); err != nil {
		m.ErrorMsg = forms.Message(err, msgSaveFailed)
		return m, nil
	}
	return m, saveQuestion(m.store, store.AddQuestionParams{
		TopicName: form.Topic,
		Question:  form.Question,
		Answer:    form.Answer,
	})
}

// ─── Bulk Import ─────────────────────────────────────────────────────────────

func (m Model) openBulk() (tea.Model, tea.Cmd) {
	m.Screen = ScreenBulkImport
	m.Cursor = 0
	m.Scroll = 0
	m = m.blurAddFields()
	m = m.focusBulkField(m.BulkFocus)
	return m, loadTopicChoices(m.store)
}

func (m Model) focusBulkField(field int) Model {
	m.BulkFocus = field
	m.BulkTopic.Blur()
	m.BulkText.Blur()
	if field == 0 {
		m.BulkTopic.Focus()
	} else {
		m.BulkText.Focus()
	}
	return m
}

func (m Model) handleBulkInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.BulkTopic.Blur()
		m.BulkText.Blur()
		return m, nil
	case "tab", "shift+tab":
		return m.focusBulkField(1 - m.BulkFocus), nil
	case "ctrl+t":
		var name string
		m, name = m.nextTopic()
		if name != "" {
			m.BulkTopic.SetValue(name)
			m.BulkTopic.CursorEnd()
		}
		return m, nil
	case "ctrl+l":
		m.BulkText.SetValue(bulk.SampleText)
		return m, nil
	case "ctrl+p":
		return m.previewBulk()
	case "ctrl+b":
		m.BulkTopic.Blur()
		m.BulkText.Blur()
		m.Screen = ScreenAddQuestion
		return m.focusAddField(m.AddFocus), nil
	case "enter":
		if m.BulkFocus == 0 {
			return m.focusBulkField(1), nil
		}
	}

	var cmd tea.Cmd
	if m.BulkFocus == 0 {
		m.BulkTopic, cmd = m.BulkTopic.Update(msg)
	} else {
		m.BulkText, cmd = m.BulkText.Update(msg)
	}
	return m, cmd
}

func (m Model) handleBulkKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "i", "enter":
		return m.focusBulkField(m.BulkFocus), nil
	case "tab":
		return m.focusBulkField(1 - m.BulkFocus), nil
	case "l", "ctrl+l":
		m.BulkText.SetValue(bulk.SampleText)
		return m, nil
	case "p", "ctrl+p":
		return m.previewBulk()
	case "s", "ctrl+b":
		m.Screen = ScreenAddQuestion
		return m.focusAddField(m.AddFocus), nil
	case "esc", "q":
		return m.switchTab(TabHome)
	}
	return m, nil
}

func (m Model) previewBulk() (tea.Model, tea.Cmd) {
	form := forms.BulkImport{Topic: m.BulkTopic.Value(), Text: m.BulkText.Value()}
	if err := forms.ValidateBulkImport(&form); err != nil {
		m.ErrorMsg = forms.Message(err, msgImportFailed)
		return m, nil
	}

	items := bulk.Parse(form.Text)
	if len(items) == 0 {
		m.ErrorMsg = msgNoneDetected
		return m, nil
	}

	valid, invalid := bulk.Summary(items)
	m.log.Debug("bulk preview", "topic", form.Topic, "valid", valid, "invalid", invalid)

	m.Parsed = items
	m.ParsedTopic = form.Topic
	m.BulkTopic.Blur()
	m.BulkText.Blur()
	m.Screen = ScreenBulkPreview
	m.Cursor = 0
	m.Scroll = 0
	return m, nil
}

func (m Model) handleBulkPreviewKeys(key string) (tea.Model, tea.Cmd) {
	visibleItems := (m.Height - 12) / 3 // 3 lines per parsed item
	if visibleItems < 3 {
		visibleItems = 3
	}

	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			if m.Cursor < m.Scroll {
				m.Scroll = m.Cursor
			}
		}
	case "down", "j":
		if m.Cursor < len(m.Parsed)-1 {
			m.Cursor++
			if m.Cursor >= m.Scroll+visibleItems {
				m.Scroll = m.Cursor - visibleItems + 1
			}
		}
	case "enter", "i":
		form := forms.BulkImport{Topic: m.ParsedTopic, Text: m.BulkText.Value()}
		if err := forms.ValidateBulkImport(&form); err != nil {
			m.ErrorMsg = forms.Message(err, msgImportFailed)
			return m, nil
		}
		if valid, _ := bulk.Summary(m.Parsed); valid == 0 {
			m.ErrorMsg = msgNoValid
			return m, nil
		}
		m.Importing = true
		return m, tea.Batch(
			m.ImportSpinner.Tick,
			importQuestions(m.store, form.Topic, m.Parsed, m.log),
		)
	case "esc", "q":
		m.Screen = ScreenBulkImport
		m.Cursor = 0
		m.Scroll = 0
		return m.focusBulkField(1), nil
	}
	return m, nil
}

func (m Model) handleImportResultKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "enter", "v":
		if m.ImportResult != nil && m.ImportResult.Success > 0 {
			m.ImportResult = nil
			return m.switchTab(TabBrowse)
		}
		m.ImportResult = nil
		return m.openBulk()
	case "esc", "q":
		m.ImportResult = nil
		return m.openBulk()
	}
	return m, nil
}

// ─── Browse: Topics ──────────────────────────────────────────────────────────

// visibleTopics applies the topic search box to the loaded topic stats.
func (m Model) visibleTopics() []store.TopicStat {
	q := strings.ToLower(strings.TrimSpace(m.TopicSearch.Value()))
	if q == "" {
		return m.TopicStats
	}
	var out []store.TopicStat
	for _, ts := range m.TopicStats {
		if strings.Contains(strings.ToLower(ts.Name), q) {
			out = append(out, ts)
		}
	}
	return out
}

func (m Model) handleTopicSearchInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.TopicSearch.Blur()
		m.Cursor = 0
		m.Scroll = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.TopicSearch, cmd = m.TopicSearch.Update(msg)
	m.Cursor = 0
	m.Scroll = 0
	return m, cmd
}

func (m Model) handleTopicsKeys(key string) (tea.Model, tea.Cmd) {
	topics := m.visibleTopics()
	visibleItems := m.Height - 10
	if visibleItems < 5 {
		visibleItems = 5
	}

	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			if m.Cursor < m.Scroll {
				m.Scroll = m.Cursor
			}
		}
	case "down", "j":
		if m.Cursor < len(topics)-1 {
			m.Cursor++
			if m.Cursor >= m.Scroll+visibleItems {
				m.Scroll = m.Cursor - visibleItems + 1
			}
		}
	case "/", "s":
		m.TopicSearch.Focus()
		return m, nil
	case "x":
		m.TopicSearch.SetValue("")
		m.Cursor = 0
		m.Scroll = 0
	case "r":
		return m, loadTopicStats(m.store)
	case "e":
		return m, exportSheet(m.store, "")
	case "enter":
		if len(topics) > 0 && m.Cursor < len(topics) {
			topic := topics[m.Cursor].Name
			m.PrevScreen = ScreenTopics
			m.QuestionSearch.SetValue("")
			m.Expanded = make(map[int64]bool)
			m.Cursor = 0
			m.Scroll = 0
			return m, loadTopicQuestions(m.store, topic, "", m.Oldest)
		}
	case "esc", "q":
		return m.switchTab(TabHome)
	}
	return m, nil
}

// ─── Browse: Topic Questions ─────────────────────────────────────────────────

func (m Model) handleQuestionSearchInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.QuestionSearch.Blur()
		m.Cursor = 0
		m.Scroll = 0
		return m, loadTopicQuestions(m.store, m.SelectedTopic, m.QuestionSearch.Value(), m.Oldest)
	case "esc":
		m.QuestionSearch.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.QuestionSearch, cmd = m.QuestionSearch.Update(msg)
	return m, cmd
}

func (m Model) handleTopicQuestionsKeys(key string) (tea.Model, tea.Cmd) {
	visibleItems := (m.Height - 12) / 2 // 2 lines per question
	if visibleItems < 3 {
		visibleItems = 3
	}

	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			if m.Cursor < m.Scroll {
				m.Scroll = m.Cursor
			}
		}
	case "down", "j":
		if m.Cursor < len(m.Questions)-1 {
			m.Cursor++
			if m.Cursor >= m.Scroll+visibleItems {
				m.Scroll = m.Cursor - visibleItems + 1
			}
		}
	case "enter", " ":
		if q, ok := m.selectedQuestion(); ok {
			m.Expanded[q.ID] = !m.Expanded[q.ID]
		}
	case "/", "s":
		m.QuestionSearch.Focus()
		return m, nil
	case "x":
		m.QuestionSearch.SetValue("")
		m.Cursor = 0
		m.Scroll = 0
		return m, loadTopicQuestions(m.store, m.SelectedTopic, "", m.Oldest)
	case "o":
		m.Oldest = !m.Oldest
		m.Cursor = 0
		m.Scroll = 0
		return m, loadTopicQuestions(m.store, m.SelectedTopic, m.QuestionSearch.Value(), m.Oldest)
	case "d":
		if q, ok := m.selectedQuestion(); ok {
			m.Confirm = confirmDeleteQuestion
			m.ConfirmID = q.ID
		}
	case "e":
		return m, exportSheet(m.store, m.SelectedTopic)
	case "esc", "q":
		m.Screen = ScreenTopics
		m.SelectedTopic = ""
		m.Questions = nil
		m.QuestionSearch.SetValue("")
		m.Cursor = 0
		m.Scroll = 0
		return m, loadTopicStats(m.store)
	}
	return m, nil
}

func (m Model) selectedQuestion() (store.Question, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Questions) {
		return store.Question{}, false
	}
	return m.Questions[m.Cursor], true
}

// ─── Profile ─────────────────────────────────────────────────────────────────

func (m Model) handleProfileKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "e", "enter":
		return m.editProfile(), nil
	case "d":
		if m.Profile != nil {
			m.Confirm = confirmDeleteProfile
		}
	case "r":
		return m, loadProfile(m.store)
	case "esc", "q":
		return m.switchTab(TabHome)
	}
	return m, nil
}

func (m Model) editProfile() Model {
	var name, age, class, email string
	if p := m.Profile; p != nil {
		name = p.Name
		if p.Age > 0 {
			age = strconv.Itoa(p.Age)
		}
		class = p.ClassName
		if p.Email != nil {
			email = *p.Email
		}
	}
	m.ProfileInputs[profileName].SetValue(name)
	m.ProfileInputs[profileAge].SetValue(age)
	m.ProfileInputs[profileClass].SetValue(class)
	m.ProfileInputs[profileEmail].SetValue(email)
	for i := range m.ProfileInputs {
		m.ProfileInputs[i].CursorEnd()
	}

	m.Screen = ScreenProfileEdit
	return m.focusProfileField(profileName)
}

func (m Model) focusProfileField(field int) Model {
	m.ProfileFocus = field
	for i := range m.ProfileInputs {
		if i == field {
			m.ProfileInputs[i].Focus()
		} else {
			m.ProfileInputs[i].Blur()
		}
	}
	return m
}

func (m *Model) blurProfileInputs() {
	for i := range m.ProfileInputs {
		m.ProfileInputs[i].Blur()
	}
}

func (m Model) handleProfileInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.blurProfileInputs()
		return m, nil
	case "tab", "down":
		return m.focusProfileField((m.ProfileFocus + 1) % profileFieldCount), nil
	case "shift+tab", "up":
		return m.focusProfileField((m.ProfileFocus + profileFieldCount - 1) % profileFieldCount), nil
	case "ctrl+s":
		return m.submitProfile()
	case "enter":
		if m.ProfileFocus == profileFieldCount-1 {
			return m.submitProfile()
		}
		return m.focusProfileField(m.ProfileFocus + 1), nil
	}

	var cmd tea.Cmd
	m.ProfileInputs[m.ProfileFocus], cmd = m.ProfileInputs[m.ProfileFocus].Update(msg)
	return m, cmd
}

func (m Model) handleProfileEditKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "i", "enter":
		return m.focusProfileField(m.ProfileFocus), nil
	case "ctrl+s":
		return m.submitProfile()
	case "esc", "q":
		m.Screen = ScreenProfile
		return m, loadProfile(m.store)
	}
	return m, nil
}

func (m Model) submitProfile() (tea.Model, tea.Cmd) {
	form := forms.Profile{
		Name:      m.ProfileInputs[profileName].Value(),
		ClassName: m.ProfileInputs[profileClass].Value(),
		Email:     m.ProfileInputs[profileEmail].Value(),
	}
	if raw := strings.TrimSpace(m.ProfileInputs[profileAge].Value()); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			m.ErrorMsg = msgInvalidAge
			return m, nil
		}
		form.Age = age
	}
	if err := forms.ValidateProfile(&form); err != nil {
		m.ErrorMsg = forms.Message(err, msgProfileSave)
		return m, nil
	}
	return m, saveProfile(m.store, store.SaveUserParams{
		Name:      form.Name,
		Age:       form.Age,
		ClassName: form.ClassName,
		Email:     form.Email,
	})
}
