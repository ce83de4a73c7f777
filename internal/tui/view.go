package tui

import (
	"fmt"
	"strings"

	"github.com/Dipak-sahani/brainlocker/internal/bulk"
	"github.com/Dipak-sahani/brainlocker/internal/store"

	"github.com/charmbracelet/lipgloss"
)

// ─── Logo ────────────────────────────────────────────────────────────────────

func (m Model) renderLogo() string {
	logoText := []string{
		` ___          _      _              _           `,
		`| _ )_ _ __ _(_)_ _ | |   ___  __ _| |_____ _ _ `,
		`| _ \ '_/ _' | | ' \| |__/ _ \/ _| / / -_) '_|`,
		`|___/_| \__,_|_|_||_|____\___/\__|_\_\___|_|  `,
	}

	p := m.theme.Palette()
	frameStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1).
		MarginBottom(1)

	textStyle := lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	taglineStyle := lipgloss.NewStyle().Foreground(p.TextMuted).Italic(true)

	var b strings.Builder
	for _, line := range logoText {
		b.WriteString(textStyle.Render(line) + "\n")
	}
	b.WriteString(taglineStyle.Render(" Lock it in. Your questions, your answers."))

	return frameStyle.Render(b.String()) + "\n"
}

// ─── View (main router) ─────────────────────────────────────────────────────

func (m Model) View() string {
	var content string

	switch m.Screen {
	case ScreenHome:
		content = m.viewHome()
	case ScreenAddQuestion:
		content = m.viewAddQuestion()
	case ScreenBulkImport:
		content = m.viewBulkImport()
	case ScreenBulkPreview:
		content = m.viewBulkPreview()
	case ScreenImportResult:
		content = m.viewImportResult()
	case ScreenTopics:
		content = m.viewTopics()
	case ScreenTopicQuestions:
		content = m.viewTopicQuestions()
	case ScreenProfile:
		content = m.viewProfile()
	case ScreenProfileEdit:
		content = m.viewProfileEdit()
	default:
		content = "Unknown screen"
	}

	if m.Confirm != confirmNone {
		content += "\n" + m.viewConfirm()
	}
	if m.ErrorMsg != "" {
		content += "\n" + m.styles.errorMsg.Render("Error: "+m.ErrorMsg)
	}
	if m.InfoMsg != "" {
		content += "\n" + m.styles.success.Render("✓ "+m.InfoMsg)
	}

	return m.styles.app.Render(m.renderTabBar() + "\n\n" + content)
}

func (m Model) renderTabBar() string {
	active := m.Screen.Tab()

	parts := []string{m.styles.brand.Render("BrainLocker")}
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == active {
			parts = append(parts, m.styles.tabActive.Render(label))
		} else {
			parts = append(parts, m.styles.tab.Render(label))
		}
	}

	icon := "☀"
	if m.theme.IsDark() {
		icon = "☾"
	}
	parts = append(parts, m.styles.themeTag.Render(icon+" "+m.theme.Mode().Label()))

	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m Model) viewConfirm() string {
	var prompt string
	switch m.Confirm {
	case confirmDeleteQuestion:
		prompt = "Delete Question\nAre you sure you want to delete this question?"
	case confirmDeleteProfile:
		prompt = "Delete Profile\nAre you sure you want to delete your profile? This cannot be undone."
	}
	return m.styles.confirm.Render(prompt + "\n\n" + "y delete • n cancel")
}

// ─── Home ────────────────────────────────────────────────────────────────────

func (m Model) viewHome() string {
	var b strings.Builder

	b.WriteString(m.renderLogo())

	greeting := "Welcome!"
	if m.Profile != nil && m.Profile.Name != "" {
		greeting = fmt.Sprintf("Welcome back, %s!", m.Profile.Name)
	}
	b.WriteString(m.styles.title.Render("  " + greeting))
	b.WriteString("\n")

	if m.Stats != nil {
		statsContent := fmt.Sprintf(
			"%s %s\n%s %s",
			m.styles.statNumber.Render(fmt.Sprintf("%d", m.Stats.TotalQuestions)),
			m.styles.statLabel.Render("questions"),
			m.styles.statNumber.Render(fmt.Sprintf("%d", m.Stats.TotalTopics)),
			m.styles.statLabel.Render("topics"),
		)
		b.WriteString(m.styles.statCard.Render(statsContent))
		b.WriteString("\n")
	} else {
		b.WriteString(m.styles.statCard.Render("Loading stats..."))
		b.WriteString("\n")
	}

	if len(m.Recent) > 0 {
		b.WriteString(m.styles.title.Render("  Recent questions"))
		b.WriteString("\n")
		for _, q := range m.Recent {
			b.WriteString(fmt.Sprintf("  %s %s  %s\n",
				m.styles.topicBadge.Render("["+q.TopicName+"]"),
				m.styles.listItem.UnsetPaddingLeft().Render(truncateStr(q.Question, 60)),
				m.styles.timestamp.Render(store.FormatDate(q.CreatedAt))))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.styles.title.Render("  Quick actions"))
	b.WriteString("\n")
	for i, item := range homeMenuItems {
		if i == m.Cursor {
			b.WriteString(m.styles.menuSelected.Render("▸ " + item))
		} else {
			b.WriteString(m.styles.menuItem.Render("  " + item))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.styles.help.Render("\n  j/k navigate • enter select • a add • b bulk • 1-4 tabs • T theme • q quit"))

	return b.String()
}

// ─── Add Question ────────────────────────────────────────────────────────────

func (m Model) viewAddQuestion() string {
	var b strings.Builder

	b.WriteString(m.styles.header.Render("  Add Question  ·  single"))
	b.WriteString("\n")

	b.WriteString(m.renderField("Topic", m.AddTopic.View(), m.AddTopic.Focused()))
	b.WriteString(m.renderField("Question", m.AddQuestion.View(), m.AddQuestion.Focused()))
	b.WriteString(m.renderField("Answer", m.AddAnswer.View(), m.AddAnswer.Focused()))

	if len(m.TopicChoices) > 0 {
		b.WriteString(m.styles.timestamp.Render("  topics: " + truncateStr(strings.Join(m.TopicChoices, ", "), 90)))
		b.WriteString("\n")
	}

	if m.inputFocused() {
		b.WriteString(m.styles.help.Render("\n  tab next field • ctrl+t pick topic • ctrl+s save • ctrl+b bulk import • esc leave form"))
	} else {
		b.WriteString(m.styles.help.Render("\n  i edit • ctrl+s save • b bulk import • 1-4 tabs • T theme • esc home"))
	}

	return b.String()
}

func (m Model) renderField(label, view string, focused bool) string {
	style := m.styles.input
	if focused {
		style = m.styles.inputFocused
	}
	return m.styles.label.Render(label+":") + "\n" + style.Render(view) + "\n"
}

// ─── Bulk Import ─────────────────────────────────────────────────────────────

func (m Model) viewBulkImport() string {
	var b strings.Builder

	b.WriteString(m.styles.header.Render("  Add Question  ·  bulk import"))
	b.WriteString("\n")

	b.WriteString(m.renderField("Topic", m.BulkTopic.View(), m.BulkTopic.Focused()))
	b.WriteString(m.renderField("Q&A text", m.BulkText.View(), m.BulkText.Focused()))

	b.WriteString(m.styles.timestamp.Render(fmt.Sprintf("  %d characters", len([]rune(m.BulkText.Value())))))
	b.WriteString("\n")

	b.WriteString(m.styles.noResults.Render("Format: Q1: question / A1: answer. \"Question:\", \"Answer:\" and \"1. \" also work."))
	b.WriteString("\n")

	if m.inputFocused() {
		b.WriteString(m.styles.help.Render("\n  tab switch field • ctrl+t pick topic • ctrl+l sample • ctrl+p preview • ctrl+b single • esc leave form"))
	} else {
		b.WriteString(m.styles.help.Render("\n  i edit • l sample • p preview • s single • 1-4 tabs • T theme • esc home"))
	}

	return b.String()
}

func (m Model) viewBulkPreview() string {
	var b strings.Builder

	valid, invalid := bulk.Summary(m.Parsed)
	header := fmt.Sprintf("  Preview · %s — %d valid, %d invalid", m.ParsedTopic, valid, invalid)
	b.WriteString(m.styles.header.Render(header))
	b.WriteString("\n")

	if m.Importing {
		b.WriteString(fmt.Sprintf("  %s Importing %d questions...\n", m.ImportSpinner.View(), valid))
		return b.String()
	}

	visibleItems := (m.Height - 12) / 3
	if visibleItems < 3 {
		visibleItems = 3
	}
	end := m.Scroll + visibleItems
	if end > len(m.Parsed) {
		end = len(m.Parsed)
	}

	for i := m.Scroll; i < end; i++ {
		b.WriteString(m.renderParsedItem(i, m.Parsed[i]))
	}

	if len(m.Parsed) > visibleItems {
		b.WriteString(fmt.Sprintf("\n  %s",
			m.styles.timestamp.Render(fmt.Sprintf("showing %d-%d of %d", m.Scroll+1, end, len(m.Parsed)))))
	}

	b.WriteString(m.styles.help.Render(fmt.Sprintf("\n  j/k navigate • enter import %d valid • esc edit", valid)))

	return b.String()
}

func (m Model) renderParsedItem(index int, it bulk.Item) string {
	cursor := "  "
	style := m.styles.listItem
	if index == m.Cursor {
		cursor = "▸ "
		style = m.styles.listSelected
	}

	mark := m.styles.valid.Render("✓")
	if !it.Valid {
		mark = m.styles.invalid.Render("✗")
	}

	line := fmt.Sprintf("%s%s %s\n", cursor, mark, style.Render(fmt.Sprintf("Q%d: %s", index+1, truncateStr(it.Question, 70))))
	if it.Valid {
		line += m.styles.preview.Render("A: "+truncateStr(it.Answer, 80)) + "\n"
	} else {
		line += m.styles.preview.Render(m.styles.invalid.Render(it.Error)) + "\n"
	}
	return line
}

func (m Model) viewImportResult() string {
	var b strings.Builder

	b.WriteString(m.styles.header.Render("  Import Complete"))
	b.WriteString("\n")

	if m.ImportResult == nil {
		b.WriteString(m.styles.noResults.Render("Nothing imported."))
		return b.String()
	}

	res := m.ImportResult
	content := fmt.Sprintf("%s %s",
		m.styles.statNumber.Foreground(m.theme.Palette().Success).Render(fmt.Sprintf("%d", res.Success)),
		m.styles.statLabel.Render("Successfully imported"))
	if res.Failed > 0 {
		content += fmt.Sprintf("\n%s %s",
			m.styles.statNumber.Foreground(m.theme.Palette().Error).Render(fmt.Sprintf("%d", res.Failed)),
			m.styles.statLabel.Render("Failed to import"))
	}
	if res.Skipped > 0 {
		content += fmt.Sprintf("\n%s %s",
			m.styles.statNumber.Foreground(m.theme.Palette().TextMuted).Render(fmt.Sprintf("%d", res.Skipped)),
			m.styles.statLabel.Render("Skipped (invalid)"))
	}
	b.WriteString(m.styles.statCard.Render(content))
	b.WriteString("\n")

	if res.Success > 0 {
		b.WriteString(m.styles.help.Render("\n  enter view questions • esc import more"))
	} else {
		b.WriteString(m.styles.help.Render("\n  enter/esc back to the form"))
	}
	return b.String()
}

// ─── Browse ──────────────────────────────────────────────────────────────────

func (m Model) viewTopics() string {
	var b strings.Builder

	topics := m.visibleTopics()
	total := 0
	for _, ts := range m.TopicStats {
		total += ts.Total
	}
	header := fmt.Sprintf("  Browse — %d topics, %d questions", len(m.TopicStats), total)
	b.WriteString(m.styles.header.Render(header))
	b.WriteString("\n")

	if m.TopicSearch.Focused() || m.TopicSearch.Value() != "" {
		b.WriteString(m.renderField("Search", m.TopicSearch.View(), m.TopicSearch.Focused()))
		b.WriteString("\n")
	}

	if len(topics) == 0 {
		if len(m.TopicStats) == 0 {
			b.WriteString(m.styles.noResults.Render("No questions yet. Add some from the Add tab."))
		} else {
			b.WriteString(m.styles.noResults.Render("No topics match your search."))
		}
		b.WriteString("\n\n")
		b.WriteString(m.styles.help.Render("  / search • x clear • esc home"))
		return b.String()
	}

	visibleItems := m.Height - 10
	if visibleItems < 5 {
		visibleItems = 5
	}
	end := m.Scroll + visibleItems
	if end > len(topics) {
		end = len(topics)
	}

	for i := m.Scroll; i < end; i++ {
		ts := topics[i]
		cursor := "  "
		style := m.styles.listItem
		if i == m.Cursor {
			cursor = "▸ "
			style = m.styles.listSelected
		}
		noun := "questions"
		if ts.Total == 1 {
			noun = "question"
		}
		b.WriteString(fmt.Sprintf("%s%s  %s\n",
			cursor,
			style.Render(fmt.Sprintf("%-24s", ts.Name)),
			m.styles.timestamp.Render(fmt.Sprintf("%d %s", ts.Total, noun))))
	}

	if len(topics) > visibleItems {
		b.WriteString(fmt.Sprintf("\n  %s",
			m.styles.timestamp.Render(fmt.Sprintf("showing %d-%d of %d", m.Scroll+1, end, len(topics)))))
	}

	b.WriteString(m.styles.help.Render("\n  j/k navigate • enter open • / search • e export all • r refresh • esc home"))

	return b.String()
}

func (m Model) viewTopicQuestions() string {
	var b strings.Builder

	order := "newest first"
	if m.Oldest {
		order = "oldest first"
	}
	header := fmt.Sprintf("  %s — %d questions · %s", m.SelectedTopic, len(m.Questions), order)
	b.WriteString(m.styles.header.Render(header))
	b.WriteString("\n")

	if m.QuestionSearch.Focused() || m.QuestionSearch.Value() != "" {
		b.WriteString(m.renderField("Search", m.QuestionSearch.View(), m.QuestionSearch.Focused()))
		b.WriteString("\n")
	}

	if len(m.Questions) == 0 {
		if m.QuestionSearch.Value() != "" {
			b.WriteString(m.styles.noResults.Render("No questions match your search."))
		} else {
			b.WriteString(m.styles.noResults.Render("No questions in this topic."))
		}
		b.WriteString("\n\n")
		b.WriteString(m.styles.help.Render("  / search • x clear • esc back"))
		return b.String()
	}

	visibleItems := (m.Height - 12) / 2
	if visibleItems < 3 {
		visibleItems = 3
	}
	end := m.Scroll + visibleItems
	if end > len(m.Questions) {
		end = len(m.Questions)
	}

	for i := m.Scroll; i < end; i++ {
		b.WriteString(m.renderQuestionItem(i, m.Questions[i]))
	}

	if len(m.Questions) > visibleItems {
		b.WriteString(fmt.Sprintf("\n  %s",
			m.styles.timestamp.Render(fmt.Sprintf("showing %d-%d of %d", m.Scroll+1, end, len(m.Questions)))))
	}

	b.WriteString(m.styles.help.Render("\n  j/k navigate • enter show answer • / search • o sort • d delete • e export • esc back"))

	return b.String()
}

func (m Model) renderQuestionItem(index int, q store.Question) string {
	cursor := "  "
	style := m.styles.listItem
	if index == m.Cursor {
		cursor = "▸ "
		style = m.styles.listSelected
	}

	line := fmt.Sprintf("%s%s %s  %s\n",
		cursor,
		m.styles.id.Render(fmt.Sprintf("#%-4d", q.ID)),
		style.Render(truncateStr(q.Question, 70)),
		m.styles.timestamp.Render(store.FormatDate(q.CreatedAt)))

	if m.Expanded[q.ID] {
		line += m.styles.answer.Render(q.Answer) + "\n"
	} else {
		line += m.styles.preview.Render("press enter to reveal the answer") + "\n"
	}
	return line
}

// ─── Profile ─────────────────────────────────────────────────────────────────

func (m Model) viewProfile() string {
	var b strings.Builder

	b.WriteString(m.styles.header.Render("  Profile"))
	b.WriteString("\n")

	if m.Profile == nil {
		b.WriteString(m.styles.noResults.Render("No profile yet. Press e to create one."))
		b.WriteString("\n")
		b.WriteString(m.styles.help.Render("\n  e create • 1-4 tabs • T theme • esc home"))
		return b.String()
	}

	p := m.Profile
	age := "-"
	if p.Age > 0 {
		age = fmt.Sprintf("%d", p.Age)
	}
	email := "-"
	if p.Email != nil {
		email = *p.Email
	}
	class := p.ClassName
	if class == "" {
		class = "-"
	}

	rows := [][2]string{
		{"Name:", p.Name},
		{"Email:", email},
		{"Age:", age},
		{"Class:", class},
		{"Member since:", store.FormatDate(p.CreatedAt)},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%s %s\n", m.styles.label.Render(r[0]), m.styles.value.Render(r[1])))
	}

	b.WriteString(m.styles.help.Render("\n  e edit • d delete • r refresh • 1-4 tabs • T theme • esc home"))

	return b.String()
}

var profileLabels = [profileFieldCount]string{"Name", "Age", "Class", "Email"}

func (m Model) viewProfileEdit() string {
	var b strings.Builder

	title := "  Edit Profile"
	if m.Profile == nil {
		title = "  Create Profile"
	}
	b.WriteString(m.styles.header.Render(title))
	b.WriteString("\n")

	for i, in := range m.ProfileInputs {
		b.WriteString(m.renderField(profileLabels[i], in.View(), in.Focused()))
	}

	if m.inputFocused() {
		b.WriteString(m.styles.help.Render("\n  tab next field • enter on email or ctrl+s save • esc leave form"))
	} else {
		b.WriteString(m.styles.help.Render("\n  i edit • ctrl+s save • esc cancel"))
	}

	return b.String()
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func truncateStr(s string, max int) string {
	// Remove newlines for single-line display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
