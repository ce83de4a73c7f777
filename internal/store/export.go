package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const exportVersion = "1"

// ExportData is the full serializable dump of the BrainLocker database.
type ExportData struct {
	Version    string     `json:"version" yaml:"version"`
	ExportedAt string     `json:"exported_at" yaml:"exported_at"`
	User       *User      `json:"user,omitempty" yaml:"user,omitempty"`
	Topics     []Topic    `json:"topics" yaml:"topics"`
	Questions  []Question `json:"questions" yaml:"questions"`
}

type ImportResult struct {
	ProfileImported   bool `json:"profile_imported"`
	TopicsImported    int  `json:"topics_imported"`
	QuestionsImported int  `json:"questions_imported"`
}

func (s *Store) Export() (*ExportData, error) {
	data := &ExportData{
		Version:    exportVersion,
		ExportedAt: s.stamp(),
	}

	user, err := s.GetUser()
	switch {
	case err == nil:
		data.User = user
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("export user: %w", err)
	}

	if data.Topics, err = s.AllTopics(); err != nil {
		return nil, fmt.Errorf("export topics: %w", err)
	}

	if data.Questions, err = s.queryQuestions(`SELECT ` + questionColumns + ` FROM questions ORDER BY id`); err != nil {
		return nil, fmt.Errorf("export questions: %w", err)
	}

	return data, nil
}

// Import restores an export. Catalog topics that already exist are skipped,
// questions get new ids, and the profile replaces the current one.
func (s *Store) Import(data *ExportData) (*ImportResult, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("import: begin tx: %w", err)
	}
	defer tx.Rollback()

	result := &ImportResult{}

	if u := data.User; u != nil {
		if _, err := tx.Exec(
			`INSERT INTO users (id, name, age, className, email, createdAt, updatedAt)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
			     name      = excluded.name,
			     age       = excluded.age,
			     className = excluded.className,
			     email     = excluded.email,
			     createdAt = excluded.createdAt,
			     updatedAt = excluded.updatedAt`,
			profileID, u.Name, u.Age, u.ClassName, u.Email, u.CreatedAt, u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("import user: %w", err)
		}
		result.ProfileImported = true
	}

	for _, t := range data.Topics {
		res, err := tx.Exec(`INSERT OR IGNORE INTO topics (name) VALUES (?)`, t.Name)
		if err != nil {
			return nil, fmt.Errorf("import topic %q: %w", t.Name, err)
		}
		n, _ := res.RowsAffected()
		result.TopicsImported += int(n)
	}

	for _, q := range data.Questions {
		if _, err := tx.Exec(
			`INSERT INTO questions (topic_name, question, answer, createdAt) VALUES (?, ?, ?, ?)`,
			q.TopicName, q.Question, q.Answer, q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("import question %d: %w", q.ID, err)
		}
		result.QuestionsImported++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("import: commit: %w", err)
	}
	return result, nil
}

// FormatStudySheet renders questions as a plain-text study sheet. topic is
// printed in the header when non-empty.
func FormatStudySheet(questions []Question, topic string, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("BrainLocker - Q&A Export\n")
	fmt.Fprintf(&b, "Generated on: %s\n\n", generatedAt.Format("Jan 2, 2006 15:04"))
	if topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n\n", topic)
	}

	for i, q := range questions {
		fmt.Fprintf(&b, "Question %d:\n", i+1)
		fmt.Fprintf(&b, "Topic: %s\n", q.TopicName)
		fmt.Fprintf(&b, "Question: %s\n", q.Question)
		fmt.Fprintf(&b, "Answer: %s\n", q.Answer)
		fmt.Fprintf(&b, "Created: %s\n", FormatDate(q.CreatedAt))
		b.WriteString(strings.Repeat("─", 50) + "\n\n")
	}

	return b.String()
}

// FormatDate renders a stored timestamp as "Jan 2, 2006". Legacy rows
// without one render as "unknown".
func FormatDate(ts *string) string {
	if ts == nil || *ts == "" {
		return "unknown"
	}
	t, err := time.Parse(TimeLayout, *ts)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, *ts); err != nil {
			return *ts
		}
	}
	return t.Format("Jan 2, 2006")
}

// WriteStudySheet renders the questions of topic (all topics when empty) to
// a text file under dir and returns its path.
func (s *Store) WriteStudySheet(topic, dir string) (string, error) {
	questions, err := s.ListQuestions(ListOptions{Topic: topic})
	if err != nil {
		return "", fmt.Errorf("study sheet: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("study sheet: create dir: %w", err)
	}

	now := s.now()
	name := "all-topics"
	if topic != "" {
		name = slug(topic)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.txt", name, now.UTC().Format("20060102-150405")))
	if err := os.WriteFile(path, []byte(FormatStudySheet(questions, topic, now)), 0644); err != nil {
		return "", fmt.Errorf("study sheet: %w", err)
	}
	return path, nil
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "topic"
	}
	return out
}
